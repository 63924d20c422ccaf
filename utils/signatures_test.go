package utils

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ethpandaops/abimatch/types"
)

func TestEventSignatureHash(t *testing.T) {
	tests := []struct {
		signature string
		topic0    string
	}{
		{
			signature: "Transfer(address,address,uint256)",
			topic0:    "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef",
		},
		{
			signature: "Approval(address,address,uint256)",
			topic0:    "0x8c5be1e5ebec7d5bd14f71427d1e84f3dd0314c0f7b2291e5b200ac8c7c3b925",
		},
	}

	for _, tt := range tests {
		t.Run(tt.signature, func(t *testing.T) {
			hash := EventSignatureHash(tt.signature)
			if hash != common.HexToHash(tt.topic0) {
				t.Errorf("expected %v, got %v", tt.topic0, hash.Hex())
			}
		})
	}
}

func TestFunctionSelector(t *testing.T) {
	tests := []struct {
		signature string
		selector  types.SignatureBytes
	}{
		{signature: "transfer(address,uint256)", selector: types.SignatureBytes{0xa9, 0x05, 0x9c, 0xbb}},
		{signature: "balanceOf(address)", selector: types.SignatureBytes{0x70, 0xa0, 0x82, 0x31}},
	}

	for _, tt := range tests {
		t.Run(tt.signature, func(t *testing.T) {
			selector := FunctionSelector(tt.signature)
			if selector != tt.selector {
				t.Errorf("expected %x, got %x", tt.selector, selector)
			}
		})
	}
}
