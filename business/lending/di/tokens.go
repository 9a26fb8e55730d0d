// Package di contains dependency injection tokens for the lending context.
package di

import (
	"github.com/0xnicolas/safe-yield-bot/business/lending/app"
	"github.com/0xnicolas/safe-yield-bot/internal/di"
)

// Public service tokens - exposed to other modules
var (
	LendingService = di.NewToken[*app.LendingService]("lending.LendingService")
)

// Private dependency tokens - internal to the lending module
var (
	AaveProvider     = di.NewToken[app.RateProvider]("lending:aaveProvider")
	CompoundProvider = di.NewToken[app.RateProvider]("lending:compoundProvider")
	AavePositions    = di.NewToken[app.PositionReader]("lending:aavePositions")
	CompoundPositions = di.NewToken[app.PositionReader]("lending:compoundPositions")
	WalletBalances   = di.NewToken[app.BalanceReader]("lending:walletBalances")
)

// Helper functions for type-safe access
func GetLendingService(c di.ServiceRegistry) *app.LendingService {
	return di.GetToken(c, LendingService)
}
