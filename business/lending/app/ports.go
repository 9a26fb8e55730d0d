// Package app contains application services and port definitions for the lending context.
package app

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/0xnicolas/safe-yield-bot/business/lending/domain"
	"github.com/0xnicolas/safe-yield-bot/internal/asset"
)

// RateProvider reads one protocol's current supply rate for the
// configured asset, normalized to basis points.
type RateProvider interface {
	// GetRate returns the annualized rate. An asset that is not listed
	// on the protocol yields a zero rate, not an error.
	GetRate(ctx context.Context) (domain.RateQuote, error)
}

// PositionReader reads a wallet's supplied balance in one protocol.
type PositionReader interface {
	// GetPosition returns the supplied amount. An unlisted asset yields
	// a zero position, not an error.
	GetPosition(ctx context.Context, wallet common.Address) (domain.Position, error)
}

// BalanceReader reads a wallet's undeposited ERC-20 balance (display only).
type BalanceReader interface {
	BalanceOf(ctx context.Context, wallet common.Address) (asset.Amount, error)
}
