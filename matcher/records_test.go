package matcher

import (
	"bytes"
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/ethpandaops/abimatch/dbtypes"
)

func TestLogRecordFromEthLog(t *testing.T) {
	ethLog := &ethtypes.Log{
		Address:     common.BytesToAddress(addrAA),
		BlockNumber: 42,
		TxHash:      common.HexToHash("0x1111"),
		Index:       7,
		Data:        []byte{0x01, 0x02},
		Topics: []common.Hash{
			common.BytesToHash(transferTopic0),
			common.HexToHash("0x01"),
		},
	}

	record := LogRecordFromEthLog(ethLog)
	if record.BlockNumber != 42 || record.LogIndex != 7 {
		t.Errorf("unexpected record position: %+v", record)
	}
	if !bytes.Equal(record.Address, addrAA) {
		t.Errorf("unexpected record address: %x", record.Address)
	}
	if !bytes.Equal(record.Topic0, transferTopic0) {
		t.Errorf("unexpected topic0: %x", record.Topic0)
	}
	if record.Topic1 == nil || record.Topic2 != nil || record.Topic3 != nil {
		t.Errorf("unexpected optional topics: %+v", record)
	}
}

func TestLogRecordArityDerivation(t *testing.T) {
	m := newTestMatcher(t)
	ctx := context.Background()

	abis, err := m.NewAbiRelation(ctx, []*dbtypes.AbiEntry{})
	if err != nil {
		t.Fatalf("could not create abi relation: %v", err)
	}

	topic := bytes.Repeat([]byte{0x01}, 32)
	tests := []struct {
		name     string
		topics   [][]byte
		expected uint32
	}{
		{name: "topic0 only", topics: [][]byte{transferTopic0}, expected: 1},
		{name: "one indexed arg", topics: [][]byte{transferTopic0, topic}, expected: 2},
		{name: "two indexed args", topics: [][]byte{transferTopic0, topic, topic}, expected: 3},
		{name: "three indexed args", topics: [][]byte{transferTopic0, topic, topic, topic}, expected: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs, err := m.NewLogRelation(ctx, []*dbtypes.LogRecord{
				testLog(1, addrAA, tt.topics...),
			})
			if err != nil {
				t.Fatalf("could not create log relation: %v", err)
			}

			result, err := m.MatchLogsByTopic0Address(ctx, logs, abis)
			if err != nil {
				t.Fatalf("matching failed: %v", err)
			}

			matched := matchedLogsByIndex(t, result)
			if matched[1] == nil {
				t.Fatalf("missing result row")
			}
			if matched[1].NumIndexedArgs != tt.expected {
				t.Errorf("expected num_indexed_args %v, got %v", tt.expected, matched[1].NumIndexedArgs)
			}
		})
	}
}

func TestTraceRecordFromCall(t *testing.T) {
	txHash := bytes.Repeat([]byte{0x22}, 32)

	record := TraceRecordFromCall(5, txHash, addrAA, []byte{0x01, 0x02, 0x03, 0x04, 0x05})
	if !bytes.Equal(record.Selector, []byte{0x01, 0x02, 0x03, 0x04}) {
		t.Errorf("unexpected selector: %x", record.Selector)
	}
	if record.BlockNumber != 5 || !bytes.Equal(record.ActionTo, addrAA) {
		t.Errorf("unexpected record: %+v", record)
	}

	short := TraceRecordFromCall(5, txHash, addrAA, []byte{0x01, 0x02})
	if short.Selector != nil {
		t.Errorf("expected nil selector for short input, got %x", short.Selector)
	}
}
