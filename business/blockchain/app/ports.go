// Package app contains application services and port definitions for the blockchain context.
package app

import (
	"context"
	"math/big"

	"github.com/0xnicolas/safe-yield-bot/business/blockchain/domain"
)

// HeadSubscriber defines the interface for following new chain heads.
type HeadSubscriber interface {
	// Subscribe starts listening for new heads and returns the channel.
	Subscribe(ctx context.Context) (<-chan *domain.Head, error)

	// LatestHead retrieves the most recent head.
	LatestHead(ctx context.Context) (*domain.Head, error)

	// ChainID returns the connected node's chain id.
	ChainID(ctx context.Context) (*big.Int, error)

	// State returns the current connection state.
	State() domain.ConnectionState

	// Close shuts the subscriber down.
	Close() error
}
