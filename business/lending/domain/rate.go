package domain

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// SecondsPerYear annualizes per-second rates. 365.25 days keeps the
// two protocols' annualizations consistent across leap years.
const SecondsPerYear = 31_557_600 // 365.25 * 86400

var (
	ray  = new(big.Int).Exp(big.NewInt(10), big.NewInt(27), nil) // 1e27
	wad  = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil) // 1e18
	tenK = big.NewInt(10_000)
)

// RateQuote is an annualized supply rate in integer basis points.
// Basis points are the common unit both protocols' native encodings are
// normalized into; the rate is never negative and always floored.
type RateQuote struct {
	Protocol Protocol
	Bps      int64
	AsOf     time.Time
}

// APY returns the rate as a display percentage (230 bp -> 2.3).
// Boundary function: display only.
func (q RateQuote) APY() decimal.Decimal {
	return decimal.NewFromInt(q.Bps).Div(decimal.NewFromInt(100))
}

// BpsFromRay converts an Aave ray-scaled (1e27) annualized liquidity
// rate to basis points, rounding down.
func BpsFromRay(rate *big.Int) int64 {
	if rate == nil || rate.Sign() <= 0 {
		return 0
	}
	bps := new(big.Int).Mul(rate, tenK)
	bps.Div(bps, ray)
	return bps.Int64()
}

// BpsFromPerSecond converts a Comet wad-scaled (1e18) per-second supply
// rate to annualized basis points, rounding down.
func BpsFromPerSecond(rate *big.Int) int64 {
	if rate == nil || rate.Sign() <= 0 {
		return 0
	}
	bps := new(big.Int).Mul(rate, big.NewInt(SecondsPerYear))
	bps.Mul(bps, tenK)
	bps.Div(bps, wad)
	return bps.Int64()
}
