package asset_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/0xnicolas/safe-yield-bot/internal/asset"
)

var (
	usdc = asset.New(common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), "USDC", 6)
	weth = asset.New(common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"), "WETH", 18)
)

func TestAmount_Basic(t *testing.T) {
	// 1 USDC = 1e6 in the smallest unit
	one := asset.NewAmount(usdc, big.NewInt(1e6))

	if one.IsZero() {
		t.Error("expected non-zero amount")
	}

	d := one.ToDecimal()
	if !d.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected 1, got %s", d.String())
	}

	if one.String() != "1 USDC" {
		t.Errorf("expected '1 USDC', got '%s'", one.String())
	}
}

func TestAmount_RawIsACopy(t *testing.T) {
	raw := big.NewInt(1e6)
	a := asset.NewAmount(usdc, raw)

	raw.SetInt64(0)
	if a.IsZero() {
		t.Error("mutating the input must not affect the amount")
	}

	a.Raw().SetInt64(0)
	if a.IsZero() {
		t.Error("mutating the returned raw must not affect the amount")
	}
}

func TestAmount_Add(t *testing.T) {
	one := asset.NewAmount(usdc, big.NewInt(1e6))
	two := asset.NewAmount(usdc, big.NewInt(2e6))

	sum, err := one.Add(two)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !sum.ToDecimal().Equal(decimal.NewFromInt(3)) {
		t.Errorf("expected 3, got %s", sum.ToDecimal().String())
	}
}

func TestAmount_CannotAddDifferentAssets(t *testing.T) {
	one := asset.NewAmount(usdc, big.NewInt(1e6))
	eth := asset.NewAmount(weth, big.NewInt(1e18))

	if _, err := one.Add(eth); err == nil {
		t.Error("expected error when adding different assets")
	}
}

func TestAmount_Sub(t *testing.T) {
	three := asset.NewAmount(usdc, big.NewInt(3e6))
	one := asset.NewAmount(usdc, big.NewInt(1e6))

	diff, err := three.Sub(one)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !diff.ToDecimal().Equal(decimal.NewFromInt(2)) {
		t.Errorf("expected 2, got %s", diff.ToDecimal().String())
	}
}

func TestAmount_SubNegativeError(t *testing.T) {
	one := asset.NewAmount(usdc, big.NewInt(1e6))
	two := asset.NewAmount(usdc, big.NewInt(2e6))

	if _, err := one.Sub(two); err == nil {
		t.Error("expected error for negative result")
	}
}

func TestAmount_Cmp(t *testing.T) {
	one := asset.NewAmount(usdc, big.NewInt(1e6))
	two := asset.NewAmount(usdc, big.NewInt(2e6))

	c, err := one.Cmp(two)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != -1 {
		t.Errorf("expected -1, got %d", c)
	}

	if _, err := one.Cmp(asset.NewAmount(weth, big.NewInt(1))); err == nil {
		t.Error("expected error comparing different assets")
	}
}

func TestZero(t *testing.T) {
	z := asset.Zero(usdc)
	if !z.IsZero() {
		t.Error("expected zero amount")
	}
	if z.IsPositive() {
		t.Error("zero must not be positive")
	}
}

func TestNewAmount_PanicsOnNegative(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for negative raw value")
		}
	}()
	asset.NewAmount(usdc, big.NewInt(-1))
}

func TestAsset_Equals(t *testing.T) {
	sameAddr := asset.New(usdc.Address(), "USD Coin", 6)
	if !usdc.Equals(sameAddr) {
		t.Error("assets with the same address must be equal")
	}
	if usdc.Equals(weth) {
		t.Error("different addresses must not be equal")
	}
}
