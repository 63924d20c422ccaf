package matcher

import "fmt"

// matching stages an engine fault can originate from
const (
	StageArityDerivation  = "arity derivation"
	StageAddressJoin      = "address-qualified join"
	StagePartition        = "matched/unmatched partition"
	StageCatalogReduction = "catalog reduction"
	StageFallbackJoin     = "frequency-fallback join"
	StageRecombination    = "recombination"
)

// MatchError wraps a table engine fault raised during a matching call.
// A failing stage aborts the whole call, no partial output is returned.
type MatchError struct {
	Stage string
	Err   error
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("matching failed during %v: %v", e.Stage, e.Err)
}

func (e *MatchError) Unwrap() error {
	return e.Err
}
