package app

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	lendingDomain "github.com/0xnicolas/safe-yield-bot/business/lending/domain"
	"github.com/0xnicolas/safe-yield-bot/business/rebalance/domain"
	"github.com/0xnicolas/safe-yield-bot/internal/asset"
)

var usdc = asset.New(
	common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"),
	"USDC", 6,
)

func snapshot(aaveBps, compoundBps int64, aaveSupplied, compoundSupplied int64) *lendingDomain.Snapshot {
	now := time.Now().UTC()
	return &lendingDomain.Snapshot{
		Wallet:       common.HexToAddress("0x0000000000000000000000000000000000000001"),
		Asset:        usdc,
		AaveRate:     lendingDomain.RateQuote{Protocol: lendingDomain.ProtocolAave, Bps: aaveBps, AsOf: now},
		CompoundRate: lendingDomain.RateQuote{Protocol: lendingDomain.ProtocolCompound, Bps: compoundBps, AsOf: now},
		AavePosition: lendingDomain.Position{
			Protocol: lendingDomain.ProtocolAave,
			Supplied: asset.NewAmount(usdc, big.NewInt(aaveSupplied)),
		},
		CompoundPosition: lendingDomain.Position{
			Protocol: lendingDomain.ProtocolCompound,
			Supplied: asset.NewAmount(usdc, big.NewInt(compoundSupplied)),
		},
		WalletBalance: asset.Zero(usdc),
		Timestamp:     now,
	}
}

func TestDecide(t *testing.T) {
	const million = 1_000_000_000_000 // 1M USDC in raw units

	tests := []struct {
		name        string
		thresholdBp int64
		aaveBps     int64
		compoundBps int64
		aaveFunds   int64
		compFunds   int64
		wantMove    bool
		wantBetter  domain.Venue
		wantCurrent domain.Venue
		wantDiff    int64
	}{
		{
			name:        "move when difference meets threshold",
			thresholdBp: 50, aaveBps: 230, compoundBps: 280,
			aaveFunds: million,
			wantMove:  true, wantBetter: domain.VenueCompound, wantCurrent: domain.VenueAave, wantDiff: 50,
		},
		{
			name:        "inclusive boundary holds one above",
			thresholdBp: 51, aaveBps: 230, compoundBps: 280,
			aaveFunds: million,
			wantMove:  false, wantBetter: domain.VenueCompound, wantCurrent: domain.VenueAave, wantDiff: 50,
		},
		{
			name:        "label swap is symmetric",
			thresholdBp: 50, aaveBps: 280, compoundBps: 230,
			compFunds: million,
			wantMove:  true, wantBetter: domain.VenueAave, wantCurrent: domain.VenueCompound, wantDiff: 50,
		},
		{
			name:        "equal rates never move",
			thresholdBp: 0, aaveBps: 250, compoundBps: 250,
			aaveFunds: million,
			wantMove:  false, wantBetter: domain.VenueEqual, wantCurrent: domain.VenueAave, wantDiff: 0,
		},
		{
			name:        "no position never moves",
			thresholdBp: 50, aaveBps: 100, compoundBps: 500,
			wantMove: false, wantBetter: domain.VenueCompound, wantCurrent: domain.VenueNone, wantDiff: 400,
		},
		{
			name:        "already in the best venue holds",
			thresholdBp: 50, aaveBps: 500, compoundBps: 100,
			aaveFunds: million,
			wantMove:  false, wantBetter: domain.VenueAave, wantCurrent: domain.VenueAave, wantDiff: 400,
		},
		{
			name:        "split position classifies as aave",
			thresholdBp: 50, aaveBps: 230, compoundBps: 280,
			aaveFunds: million, compFunds: million,
			wantMove: true, wantBetter: domain.VenueCompound, wantCurrent: domain.VenueAave, wantDiff: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecider(tt.thresholdBp)
			got := d.Decide(snapshot(tt.aaveBps, tt.compoundBps, tt.aaveFunds, tt.compFunds))

			if got.ShouldMove != tt.wantMove {
				t.Errorf("ShouldMove = %v, want %v", got.ShouldMove, tt.wantMove)
			}
			if got.Better != tt.wantBetter {
				t.Errorf("Better = %s, want %s", got.Better, tt.wantBetter)
			}
			if got.Current != tt.wantCurrent {
				t.Errorf("Current = %s, want %s", got.Current, tt.wantCurrent)
			}
			if got.DifferenceBp != tt.wantDiff {
				t.Errorf("DifferenceBp = %d, want %d", got.DifferenceBp, tt.wantDiff)
			}
			if got.DifferenceBp < 0 {
				t.Errorf("DifferenceBp = %d, must never be negative", got.DifferenceBp)
			}
		})
	}
}

func TestDecideAmountTracksCurrentVenue(t *testing.T) {
	d := NewDecider(50)

	got := d.Decide(snapshot(230, 280, 123, 456))
	if got.Amount.Raw().Cmp(big.NewInt(123)) != 0 {
		t.Errorf("Amount = %s, want the aave balance 123", got.Amount.Raw())
	}

	got = d.Decide(snapshot(280, 230, 0, 456))
	if got.Amount.Raw().Cmp(big.NewInt(456)) != 0 {
		t.Errorf("Amount = %s, want the compound balance 456", got.Amount.Raw())
	}
}

func TestDecideIsPure(t *testing.T) {
	d := NewDecider(50)
	snap := snapshot(230, 280, 1000, 0)

	a := d.Decide(snap)
	b := d.Decide(snap)

	if a.ShouldMove != b.ShouldMove || a.Better != b.Better ||
		a.Current != b.Current || a.DifferenceBp != b.DifferenceBp {
		t.Error("Decide must be deterministic for the same snapshot")
	}
}
