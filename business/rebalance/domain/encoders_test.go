package domain

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

var (
	assetAddr  = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	walletAddr = common.HexToAddress("0x0000000000000000000000000000000000000123")
)

// Known 4-byte selectors for the wire-level contracts.
func TestEncoderSelectors(t *testing.T) {
	amount := big.NewInt(1_000_000)

	tests := []struct {
		name     string
		encode   func() ([]byte, error)
		selector string
	}{
		{"approve", func() ([]byte, error) {
			return EncodeApprove(walletAddr, amount)
		}, "095ea7b3"},
		{"aave supply", func() ([]byte, error) {
			return EncodeAaveSupply(assetAddr, amount, walletAddr)
		}, "617ba037"},
		{"aave withdraw", func() ([]byte, error) {
			return EncodeAaveWithdraw(assetAddr, amount, walletAddr)
		}, "69328dec"},
		{"compound supply", func() ([]byte, error) {
			return EncodeCompoundSupply(assetAddr, amount)
		}, "f2b9fdb8"},
		{"compound withdraw", func() ([]byte, error) {
			return EncodeCompoundWithdraw(assetAddr, amount)
		}, "f3fef3a3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.encode()
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if len(data) < 4 {
				t.Fatalf("calldata too short: %d bytes", len(data))
			}
			if got := hex.EncodeToString(data[:4]); got != tt.selector {
				t.Errorf("selector = %s, want %s", got, tt.selector)
			}
			// Everything after the selector is whole 32-byte words.
			if (len(data)-4)%32 != 0 {
				t.Errorf("argument section is %d bytes, not word-aligned", len(data)-4)
			}
		})
	}
}

func TestEncodeAaveSupplyReferralCodeIsZero(t *testing.T) {
	data, err := EncodeAaveSupply(assetAddr, big.NewInt(1), walletAddr)
	if err != nil {
		t.Fatal(err)
	}
	// 4 selector + 4 words; the referral code is the last word.
	if len(data) != 4+4*32 {
		t.Fatalf("calldata length = %d, want %d", len(data), 4+4*32)
	}
	lastWord := data[len(data)-32:]
	for i, b := range lastWord {
		if b != 0 {
			t.Fatalf("referral code word byte %d = %#x, want all zero", i, b)
		}
	}
}
