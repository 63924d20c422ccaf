package types

// SignatureBytes is a 4-byte function selector as found in call traces
type SignatureBytes [4]byte
