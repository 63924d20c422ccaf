package matcher

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/abimatch/tables"
	"github.com/ethpandaops/abimatch/types"
	"github.com/ethpandaops/abimatch/utils"
)

var logger = logrus.StandardLogger().WithField("module", "matcher")

// column names of the ABI catalog relation
const (
	AbiHashColumn          = "hash"
	AbiAddressColumn       = "address"
	AbiFullSignatureColumn = "full_signature"
	AbiNameColumn          = "name"
	AbiAnonymousColumn     = "anonymous"

	// NumIndexedArgsColumn holds the indexed-argument count, both in the catalog
	// and as the derived column added to log relations during matching
	NumIndexedArgsColumn = "num_indexed_args"

	// fixed names of the optional indexed-topic columns of the log relation
	Topic1Column = "topic1"
	Topic2Column = "topic2"
	Topic3Column = "topic3"

	signatureCountColumn = "signature_count"
)

// Matcher resolves log and trace relations against an ABI signature catalog.
// A matcher holds no state besides the engine, it is safe for concurrent use
// as long as each call operates on its own input relations.
type Matcher struct {
	engine *tables.Engine
}

// NewMatcher creates a matcher executing on the given table engine
func NewMatcher(engine *tables.Engine) *Matcher {
	return &Matcher{
		engine: engine,
	}
}

// schema aliases are looked up once per call
func (m *Matcher) logAlias() types.LogAliasConfig {
	return utils.Config.LogDecoder.LogAlias
}

func (m *Matcher) traceAlias() types.TraceAliasConfig {
	return utils.Config.TraceDecoder.TraceAlias
}

// extendIndexedArity adds the num_indexed_args column to a log relation.
// topic0 is always present, so the count is 1 plus the populated optional topics.
// An already present num_indexed_args column is recomputed.
func (m *Matcher) extendIndexedArity(ctx context.Context, logs *tables.Relation) (*tables.Relation, error) {
	colNames := logs.ColumnNames()
	for _, name := range colNames {
		if name != NumIndexedArgsColumn {
			continue
		}
		keptCols := make([]string, 0, len(colNames)-1)
		for _, keptName := range colNames {
			if keptName != NumIndexedArgsColumn {
				keptCols = append(keptCols, keptName)
			}
		}
		projected, err := logs.Project(ctx, keptCols...)
		if err != nil {
			return nil, err
		}
		logs = projected
		break
	}

	return logs.Extend(ctx, NumIndexedArgsColumn, tables.Sum(
		tables.Lit(1),
		tables.NotNullFlag(Topic1Column),
		tables.NotNullFlag(Topic2Column),
		tables.NotNullFlag(Topic3Column),
	))
}

// MatchLogsByTopic0Address matches logs against the ABI catalog requiring topic0,
// contract address and indexed-argument count to all agree. Every input log row is
// preserved, unmatched rows carry null catalog columns.
func (m *Matcher) MatchLogsByTopic0Address(ctx context.Context, logs *tables.Relation, abis *tables.Relation) (*tables.Relation, error) {
	logAlias := m.logAlias()

	logsWithArity, err := m.extendIndexedArity(ctx, logs)
	if err != nil {
		return nil, &MatchError{Stage: StageArityDerivation, Err: err}
	}

	matched, err := logsWithArity.LeftJoin(ctx, abis, []tables.JoinKey{
		{Left: logAlias.Topic0, Right: AbiHashColumn},
		{Left: logAlias.Address, Right: AbiAddressColumn},
		{Left: NumIndexedArgsColumn, Right: NumIndexedArgsColumn},
	})
	if err != nil {
		return nil, &MatchError{Stage: StageAddressJoin, Err: err}
	}
	return matched, nil
}

// MatchLogsByTopic0 matches logs against the ABI catalog in two phases. Logs are
// first matched by topic0, address and indexed-argument count. Logs left unmatched
// fall back to a match by topic0 and indexed-argument count alone, resolved to the
// signature declared by the most contract addresses for that hash and arity.
func (m *Matcher) MatchLogsByTopic0(ctx context.Context, logs *tables.Relation, abis *tables.Relation) (*tables.Relation, error) {
	logAlias := m.logAlias()

	addressMatched, err := m.MatchLogsByTopic0Address(ctx, logs, abis)
	if err != nil {
		return nil, err
	}

	matched, err := addressMatched.Filter(ctx, AbiFullSignatureColumn, tables.IsNotNull)
	if err != nil {
		return nil, &MatchError{Stage: StagePartition, Err: err}
	}
	unmatched, err := addressMatched.Filter(ctx, AbiFullSignatureColumn, tables.IsNull)
	if err != nil {
		return nil, &MatchError{Stage: StagePartition, Err: err}
	}

	// drop the join leftovers, back to the original log schema
	unmatched, err = unmatched.Project(ctx, logs.ColumnNames()...)
	if err != nil {
		return nil, &MatchError{Stage: StagePartition, Err: err}
	}

	reducedAbis, err := m.reduceLogCatalog(ctx, abis)
	if err != nil {
		return nil, err
	}

	unmatchedWithArity, err := m.extendIndexedArity(ctx, unmatched)
	if err != nil {
		return nil, &MatchError{Stage: StageArityDerivation, Err: err}
	}

	fallbackMatched, err := unmatchedWithArity.LeftJoin(ctx, reducedAbis, []tables.JoinKey{
		{Left: logAlias.Topic0, Right: AbiHashColumn},
		{Left: NumIndexedArgsColumn, Right: NumIndexedArgsColumn},
	})
	if err != nil {
		return nil, &MatchError{Stage: StageFallbackJoin, Err: err}
	}

	result, err := matched.Concat(ctx, fallbackMatched)
	if err != nil {
		return nil, &MatchError{Stage: StageRecombination, Err: err}
	}

	logger.WithFields(logrus.Fields{
		"topic0": logAlias.Topic0,
	}).Debug("matched log relation")
	return result, nil
}

// reduceLogCatalog reduces the ABI catalog to the most frequent signature per
// (hash, num_indexed_args). The frequency counts how many distinct catalog rows
// (one per declaring address) carry that exact signature. Count ties resolve to
// the lexicographically smallest full signature.
func (m *Matcher) reduceLogCatalog(ctx context.Context, abis *tables.Relation) (*tables.Relation, error) {
	grouped, err := abis.GroupCount(ctx,
		[]string{AbiHashColumn, AbiFullSignatureColumn, AbiNameColumn, AbiAnonymousColumn, NumIndexedArgsColumn},
		nil, signatureCountColumn)
	if err != nil {
		return nil, &MatchError{Stage: StageCatalogReduction, Err: err}
	}

	top, err := grouped.TopPerGroup(ctx,
		[]string{AbiHashColumn, NumIndexedArgsColumn},
		[]tables.SortColumn{
			{Column: signatureCountColumn, Desc: true},
			{Column: AbiFullSignatureColumn},
		})
	if err != nil {
		return nil, &MatchError{Stage: StageCatalogReduction, Err: err}
	}

	reduced, err := top.Project(ctx,
		AbiHashColumn, AbiFullSignatureColumn, AbiNameColumn, AbiAnonymousColumn, NumIndexedArgsColumn)
	if err != nil {
		return nil, &MatchError{Stage: StageCatalogReduction, Err: err}
	}
	return reduced, nil
}

// MatchTracesBySelectorAddress matches call traces against the ABI catalog requiring
// function selector and called contract address to agree. Every input trace row is
// preserved, unmatched rows carry null catalog columns.
func (m *Matcher) MatchTracesBySelectorAddress(ctx context.Context, traces *tables.Relation, abis *tables.Relation) (*tables.Relation, error) {
	traceAlias := m.traceAlias()

	matched, err := traces.LeftJoin(ctx, abis, []tables.JoinKey{
		{Left: traceAlias.Selector, Right: AbiHashColumn},
		{Left: traceAlias.ActionTo, Right: AbiAddressColumn},
	})
	if err != nil {
		return nil, &MatchError{Stage: StageAddressJoin, Err: err}
	}
	return matched, nil
}

// MatchTracesBySelector matches call traces against the ABI catalog in two phases.
// Traces are first matched by selector and called address. Traces left unmatched
// fall back to a match by selector alone, resolved to the signature declared by
// the most contract addresses for that selector.
func (m *Matcher) MatchTracesBySelector(ctx context.Context, traces *tables.Relation, abis *tables.Relation) (*tables.Relation, error) {
	traceAlias := m.traceAlias()

	addressMatched, err := m.MatchTracesBySelectorAddress(ctx, traces, abis)
	if err != nil {
		return nil, err
	}

	matched, err := addressMatched.Filter(ctx, AbiFullSignatureColumn, tables.IsNotNull)
	if err != nil {
		return nil, &MatchError{Stage: StagePartition, Err: err}
	}
	unmatched, err := addressMatched.Filter(ctx, AbiFullSignatureColumn, tables.IsNull)
	if err != nil {
		return nil, &MatchError{Stage: StagePartition, Err: err}
	}

	unmatched, err = unmatched.Project(ctx, traces.ColumnNames()...)
	if err != nil {
		return nil, &MatchError{Stage: StagePartition, Err: err}
	}

	reducedAbis, err := m.reduceTraceCatalog(ctx, abis)
	if err != nil {
		return nil, err
	}

	fallbackMatched, err := unmatched.LeftJoin(ctx, reducedAbis, []tables.JoinKey{
		{Left: traceAlias.Selector, Right: AbiHashColumn},
	})
	if err != nil {
		return nil, &MatchError{Stage: StageFallbackJoin, Err: err}
	}

	result, err := matched.Concat(ctx, fallbackMatched)
	if err != nil {
		return nil, &MatchError{Stage: StageRecombination, Err: err}
	}

	logger.WithFields(logrus.Fields{
		"selector": traceAlias.Selector,
	}).Debug("matched trace relation")
	return result, nil
}

// reduceTraceCatalog reduces the ABI catalog to the most frequent signature per hash.
// Function selectors have no arity dimension, the event-only columns are carried
// along so the fallback output schema matches the address-qualified one.
func (m *Matcher) reduceTraceCatalog(ctx context.Context, abis *tables.Relation) (*tables.Relation, error) {
	grouped, err := abis.GroupCount(ctx,
		[]string{AbiHashColumn, AbiFullSignatureColumn, AbiNameColumn},
		[]string{AbiAnonymousColumn, NumIndexedArgsColumn},
		signatureCountColumn)
	if err != nil {
		return nil, &MatchError{Stage: StageCatalogReduction, Err: err}
	}

	top, err := grouped.TopPerGroup(ctx,
		[]string{AbiHashColumn},
		[]tables.SortColumn{
			{Column: signatureCountColumn, Desc: true},
			{Column: AbiFullSignatureColumn},
		})
	if err != nil {
		return nil, &MatchError{Stage: StageCatalogReduction, Err: err}
	}

	reduced, err := top.Project(ctx,
		AbiHashColumn, AbiFullSignatureColumn, AbiNameColumn, AbiAnonymousColumn, NumIndexedArgsColumn)
	if err != nil {
		return nil, &MatchError{Stage: StageCatalogReduction, Err: err}
	}
	return reduced, nil
}
