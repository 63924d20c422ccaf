package dbtypes

// AbiEntry represents one row of the ABI signature catalog.
// Multiple entries may share the same Hash with different Address/FullSignature,
// this ambiguity is what the matcher resolves.
type AbiEntry struct {
	Hash          []byte `db:"hash"` // topic0 for events, 4-byte selector for functions
	Address       []byte `db:"address"`
	FullSignature string `db:"full_signature"`
	Name          string `db:"name"`

	// event-only columns, present but ignorable for function entries
	Anonymous      bool   `db:"anonymous"`
	NumIndexedArgs uint32 `db:"num_indexed_args"`
}

// LogRecord represents an event log entry to be matched against the catalog
type LogRecord struct {
	BlockNumber     uint64 `db:"block_number"`
	TransactionHash []byte `db:"transaction_hash"`
	LogIndex        uint   `db:"log_index"`

	Address []byte `db:"address"` // Contract that emitted the event
	Topic0  []byte `db:"topic0"`  // Event signature
	Topic1  []byte `db:"topic1"`
	Topic2  []byte `db:"topic2"`
	Topic3  []byte `db:"topic3"`
	Data    []byte `db:"data"`
}

// TraceRecord represents a contract call trace entry to be matched against the catalog
type TraceRecord struct {
	BlockNumber     uint64 `db:"block_number"`
	TransactionHash []byte `db:"transaction_hash"`

	ActionTo []byte `db:"action_to"` // Called contract
	Selector []byte `db:"selector"`  // 4-byte function selector
	Input    []byte `db:"input"`
}

// MatchedLog is a LogRecord with the resolved catalog columns appended.
// The catalog columns are nil when no match was found.
type MatchedLog struct {
	BlockNumber     uint64 `db:"block_number"`
	TransactionHash []byte `db:"transaction_hash"`
	LogIndex        uint   `db:"log_index"`

	Address []byte `db:"address"`
	Topic0  []byte `db:"topic0"`
	Topic1  []byte `db:"topic1"`
	Topic2  []byte `db:"topic2"`
	Topic3  []byte `db:"topic3"`
	Data    []byte `db:"data"`

	NumIndexedArgs uint32  `db:"num_indexed_args"`
	FullSignature  *string `db:"full_signature"`
	Name           *string `db:"name"`
	Anonymous      *bool   `db:"anonymous"`
}

// MatchedTrace is a TraceRecord with the resolved catalog columns appended.
// The catalog columns are nil when no match was found.
type MatchedTrace struct {
	BlockNumber     uint64 `db:"block_number"`
	TransactionHash []byte `db:"transaction_hash"`

	ActionTo []byte `db:"action_to"`
	Selector []byte `db:"selector"`
	Input    []byte `db:"input"`

	FullSignature  *string `db:"full_signature"`
	Name           *string `db:"name"`
	Anonymous      *bool   `db:"anonymous"`
	NumIndexedArgs *uint32 `db:"num_indexed_args"`
}
