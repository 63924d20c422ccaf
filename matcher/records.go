package matcher

import (
	"context"

	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/ethpandaops/abimatch/dbtypes"
	"github.com/ethpandaops/abimatch/tables"
)

// NewLogRelation materializes log records as a relation using the configured
// alias names for the topic0 and address columns
func (m *Matcher) NewLogRelation(ctx context.Context, logs []*dbtypes.LogRecord) (*tables.Relation, error) {
	logAlias := m.logAlias()

	columns := []tables.Column{
		{Name: "block_number", Type: tables.TypeInteger},
		{Name: "transaction_hash", Type: tables.TypeBytes},
		{Name: "log_index", Type: tables.TypeInteger},
		{Name: logAlias.Address, Type: tables.TypeBytes},
		{Name: logAlias.Topic0, Type: tables.TypeBytes},
		{Name: Topic1Column, Type: tables.TypeBytes},
		{Name: Topic2Column, Type: tables.TypeBytes},
		{Name: Topic3Column, Type: tables.TypeBytes},
		{Name: "data", Type: tables.TypeBytes},
	}

	rows := make([][]any, len(logs))
	for i, log := range logs {
		rows[i] = []any{
			log.BlockNumber,
			log.TransactionHash,
			log.LogIndex,
			log.Address,
			log.Topic0,
			nullableBytes(log.Topic1),
			nullableBytes(log.Topic2),
			nullableBytes(log.Topic3),
			log.Data,
		}
	}

	return m.engine.NewRelation(ctx, columns, rows)
}

// NewTraceRelation materializes trace records as a relation using the configured
// alias names for the selector and action_to columns
func (m *Matcher) NewTraceRelation(ctx context.Context, traces []*dbtypes.TraceRecord) (*tables.Relation, error) {
	traceAlias := m.traceAlias()

	columns := []tables.Column{
		{Name: "block_number", Type: tables.TypeInteger},
		{Name: "transaction_hash", Type: tables.TypeBytes},
		{Name: traceAlias.ActionTo, Type: tables.TypeBytes},
		{Name: traceAlias.Selector, Type: tables.TypeBytes},
		{Name: "input", Type: tables.TypeBytes},
	}

	rows := make([][]any, len(traces))
	for i, trace := range traces {
		rows[i] = []any{
			trace.BlockNumber,
			trace.TransactionHash,
			trace.ActionTo,
			trace.Selector,
			trace.Input,
		}
	}

	return m.engine.NewRelation(ctx, columns, rows)
}

// NewAbiRelation materializes ABI catalog entries as a relation with the fixed catalog schema
func (m *Matcher) NewAbiRelation(ctx context.Context, entries []*dbtypes.AbiEntry) (*tables.Relation, error) {
	columns := []tables.Column{
		{Name: AbiHashColumn, Type: tables.TypeBytes},
		{Name: AbiAddressColumn, Type: tables.TypeBytes},
		{Name: AbiFullSignatureColumn, Type: tables.TypeText},
		{Name: AbiNameColumn, Type: tables.TypeText},
		{Name: AbiAnonymousColumn, Type: tables.TypeBool},
		{Name: NumIndexedArgsColumn, Type: tables.TypeInteger},
	}

	rows := make([][]any, len(entries))
	for i, entry := range entries {
		rows[i] = []any{
			entry.Hash,
			entry.Address,
			entry.FullSignature,
			entry.Name,
			entry.Anonymous,
			entry.NumIndexedArgs,
		}
	}

	return m.engine.NewRelation(ctx, columns, rows)
}

// LogRecordFromEthLog converts a go-ethereum log to a matchable log record
func LogRecordFromEthLog(log *ethtypes.Log) *dbtypes.LogRecord {
	record := &dbtypes.LogRecord{
		BlockNumber:     log.BlockNumber,
		TransactionHash: log.TxHash.Bytes(),
		LogIndex:        log.Index,
		Address:         log.Address.Bytes(),
		Data:            log.Data,
	}

	topics := [][]byte{nil, nil, nil, nil}
	for i, topic := range log.Topics {
		if i > 3 {
			break
		}
		topics[i] = topic.Bytes()
	}
	record.Topic0 = topics[0]
	record.Topic1 = topics[1]
	record.Topic2 = topics[2]
	record.Topic3 = topics[3]

	return record
}

// TraceRecordFromCall converts a contract call to a matchable trace record.
// The selector is the first 4 bytes of the call input, calls with shorter
// input get a nil selector and can only yield a null match.
func TraceRecordFromCall(blockNumber uint64, txHash []byte, actionTo []byte, input []byte) *dbtypes.TraceRecord {
	record := &dbtypes.TraceRecord{
		BlockNumber:     blockNumber,
		TransactionHash: txHash,
		ActionTo:        actionTo,
		Input:           input,
	}
	if len(input) >= 4 {
		record.Selector = input[:4]
	}
	return record
}

func nullableBytes(value []byte) any {
	if len(value) == 0 {
		return nil
	}
	return value
}
