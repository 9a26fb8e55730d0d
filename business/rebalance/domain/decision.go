// Package domain defines the rebalance context's core types: the yield
// decision, the call plan, and the calldata encoders for both venues.
package domain

import (
	"fmt"
	"time"

	"github.com/0xnicolas/safe-yield-bot/internal/asset"
)

// Venue identifies where funds sit or should sit.
type Venue string

const (
	VenueAave     Venue = "aave"
	VenueCompound Venue = "compound"

	// VenueEqual is only valid as a decision's Better field.
	VenueEqual Venue = "equal"
	// VenueNone is only valid as a decision's Current field.
	VenueNone Venue = "none"
)

func (v Venue) String() string {
	return string(v)
}

// YieldDecision is the outcome of comparing both venues' supply rates
// against the wallet's current allocation.
type YieldDecision struct {
	AaveBps      int64
	CompoundBps  int64
	DifferenceBp int64
	Better       Venue
	Current      Venue
	ShouldMove   bool
	Amount       asset.Amount
	Timestamp    time.Time
}

// Summary renders the decision in one line for logs and reports.
func (d YieldDecision) Summary() string {
	if !d.ShouldMove {
		return fmt.Sprintf("hold: aave=%dbp compound=%dbp diff=%dbp current=%s",
			d.AaveBps, d.CompoundBps, d.DifferenceBp, d.Current)
	}
	return fmt.Sprintf("move %s to %s: aave=%dbp compound=%dbp diff=%dbp",
		d.Amount, d.Better, d.AaveBps, d.CompoundBps, d.DifferenceBp)
}
