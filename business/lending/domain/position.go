package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/0xnicolas/safe-yield-bot/internal/asset"
)

// Position is a wallet's supplied balance in one protocol, in the
// asset's smallest denomination. Immutable snapshot; re-read on every
// decision cycle, never cached across cycles.
type Position struct {
	Protocol Protocol
	Supplied asset.Amount
}

// HasFunds reports whether the position is non-zero.
func (p Position) HasFunds() bool {
	return p.Supplied.IsPositive()
}

// Snapshot is the full per-cycle read of both protocols for one wallet
// and one asset. Nothing in a Snapshot outlives the cycle it was read in.
type Snapshot struct {
	Wallet           common.Address
	Asset            *asset.Asset
	AaveRate         RateQuote
	CompoundRate     RateQuote
	AavePosition     Position
	CompoundPosition Position

	// WalletBalance is the undeposited asset balance held directly by
	// the wallet. Display only; it never feeds the decision.
	WalletBalance asset.Amount

	Timestamp time.Time
}
