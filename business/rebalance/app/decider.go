// Package app contains the rebalance context's application services:
// the yield decider and the call-plan builder.
package app

import (
	"time"

	lendingDomain "github.com/0xnicolas/safe-yield-bot/business/lending/domain"
	"github.com/0xnicolas/safe-yield-bot/business/rebalance/domain"
	"github.com/0xnicolas/safe-yield-bot/internal/asset"
)

// Decider compares the two venues' supply rates against the wallet's
// current allocation. It is pure: same snapshot and threshold in, same
// decision out.
type Decider struct {
	thresholdBp int64
}

// NewDecider creates a Decider with the given trigger threshold in
// basis points. The boundary is inclusive: a difference exactly equal
// to the threshold triggers a move.
func NewDecider(thresholdBp int64) *Decider {
	return &Decider{thresholdBp: thresholdBp}
}

// Decide produces the yield decision for a snapshot.
func (d *Decider) Decide(snap *lendingDomain.Snapshot) domain.YieldDecision {
	aaveBps := snap.AaveRate.Bps
	compoundBps := snap.CompoundRate.Bps

	diff := aaveBps - compoundBps
	if diff < 0 {
		diff = -diff
	}

	better := domain.VenueEqual
	switch {
	case aaveBps > compoundBps:
		better = domain.VenueAave
	case compoundBps > aaveBps:
		better = domain.VenueCompound
	}

	// When funds sit on both venues the position is classified by the
	// first venue holding funds; Aave takes precedence.
	current := domain.VenueNone
	amount := asset.Zero(snap.Asset)
	switch {
	case snap.AavePosition.HasFunds():
		current = domain.VenueAave
		amount = snap.AavePosition.Supplied
	case snap.CompoundPosition.HasFunds():
		current = domain.VenueCompound
		amount = snap.CompoundPosition.Supplied
	}

	shouldMove := diff >= d.thresholdBp &&
		better != domain.VenueEqual &&
		current != domain.VenueNone &&
		current != better

	return domain.YieldDecision{
		AaveBps:      aaveBps,
		CompoundBps:  compoundBps,
		DifferenceBp: diff,
		Better:       better,
		Current:      current,
		ShouldMove:   shouldMove,
		Amount:       amount,
		Timestamp:    time.Now().UTC(),
	}
}
