package utils

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ethpandaops/abimatch/types"
)

// EventSignatureHash returns the topic0 hash of a canonical event signature
// like "Transfer(address,address,uint256)"
func EventSignatureHash(signature string) common.Hash {
	return crypto.Keccak256Hash([]byte(signature))
}

// FunctionSelector returns the 4-byte selector of a canonical function signature
// like "transfer(address,uint256)"
func FunctionSelector(signature string) types.SignatureBytes {
	hash := crypto.Keccak256([]byte(signature))

	var selector types.SignatureBytes
	copy(selector[:], hash[:4])
	return selector
}
