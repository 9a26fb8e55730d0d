// Package di contains dependency injection tokens for the blockchain context.
package di

import (
	"github.com/0xnicolas/safe-yield-bot/business/blockchain/app"
	"github.com/0xnicolas/safe-yield-bot/internal/di"
)

// Public service tokens - exposed to other modules
var (
	BlockchainService = di.NewToken[*app.BlockchainService]("blockchain.BlockchainService")
)

// Private dependency tokens - internal to the blockchain module
var (
	HeadSubscriber = di.NewToken[app.HeadSubscriber]("blockchain:headSubscriber")
)

// Helper functions for type-safe access
func GetBlockchainService(c di.ServiceRegistry) *app.BlockchainService {
	return di.GetToken(c, BlockchainService)
}
