package tables

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// DecodeRows maps relation rows into a slice of db-tagged structs.
// Decoding is weakly typed to smooth over driver value differences
// (sqlite hands out int64 where pgsql hands out int32 etc).
func DecodeRows(rows []map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "db",
		WeaklyTypedInput: true,
		ZeroFields:       true,
		Result:           target,
	})
	if err != nil {
		return fmt.Errorf("error creating row decoder: %w", err)
	}

	err = decoder.Decode(rows)
	if err != nil {
		return fmt.Errorf("error decoding relation rows: %w", err)
	}
	return nil
}
