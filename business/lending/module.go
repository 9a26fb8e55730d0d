// Package lending implements the lending bounded context: rate adapters
// and position readers for the supported money-market protocols.
package lending

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/0xnicolas/safe-yield-bot/business/lending/app"
	lendingDI "github.com/0xnicolas/safe-yield-bot/business/lending/di"
	"github.com/0xnicolas/safe-yield-bot/business/lending/infra/aave"
	"github.com/0xnicolas/safe-yield-bot/business/lending/infra/compound"
	"github.com/0xnicolas/safe-yield-bot/business/lending/infra/erc20"
	"github.com/0xnicolas/safe-yield-bot/internal/asset"
	"github.com/0xnicolas/safe-yield-bot/internal/config"
	"github.com/0xnicolas/safe-yield-bot/internal/di"
	"github.com/0xnicolas/safe-yield-bot/internal/logger"
	"github.com/0xnicolas/safe-yield-bot/internal/monolith"
	"github.com/0xnicolas/safe-yield-bot/internal/ratelimit"
)

// Module implements the lending bounded context.
type Module struct{}

// RegisterServices registers all lending services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// One provider instance per protocol serves both the rate and the
	// position port.
	di.RegisterToken(c, lendingDI.AaveProvider, func(sr di.ServiceRegistry) app.RateProvider {
		return newAaveProvider(sr)
	})
	di.RegisterToken(c, lendingDI.AavePositions, func(sr di.ServiceRegistry) app.PositionReader {
		return di.GetToken(sr, lendingDI.AaveProvider).(*aave.Provider)
	})

	di.RegisterToken(c, lendingDI.CompoundProvider, func(sr di.ServiceRegistry) app.RateProvider {
		return newCompoundProvider(sr)
	})
	di.RegisterToken(c, lendingDI.CompoundPositions, func(sr di.ServiceRegistry) app.PositionReader {
		return di.GetToken(sr, lendingDI.CompoundProvider).(*compound.Provider)
	})

	di.RegisterToken(c, lendingDI.WalletBalances, func(sr di.ServiceRegistry) app.BalanceReader {
		client := sr.Get("ethClient").(*ethclient.Client)
		ast := sr.Get("asset").(*asset.Asset)
		limiter := sr.Get("rpcLimiter").(*ratelimit.Limiter)

		reader, err := erc20.NewReader(client, ast, limiter)
		if err != nil {
			panic("failed to create erc20 reader: " + err.Error())
		}
		return reader
	})

	di.RegisterToken(c, lendingDI.LendingService, func(sr di.ServiceRegistry) *app.LendingService {
		ast := sr.Get("asset").(*asset.Asset)
		log := sr.Get("logger").(logger.LoggerInterface)

		return app.NewLendingService(
			ast,
			di.GetToken(sr, lendingDI.AaveProvider),
			di.GetToken(sr, lendingDI.CompoundProvider),
			di.GetToken(sr, lendingDI.AavePositions),
			di.GetToken(sr, lendingDI.CompoundPositions),
			di.GetToken(sr, lendingDI.WalletBalances),
			log,
		)
	})

	return nil
}

func newAaveProvider(sr di.ServiceRegistry) *aave.Provider {
	cfg := sr.Get("config").(*config.Config)
	log := sr.Get("logger").(logger.LoggerInterface)
	client := sr.Get("ethClient").(*ethclient.Client)
	ast := sr.Get("asset").(*asset.Asset)
	limiter := sr.Get("rpcLimiter").(*ratelimit.Limiter)

	provider, err := aave.NewProvider(client, aave.Config{
		PoolAddress:         cfg.Aave.PoolAddressHex(),
		DataProviderAddress: cfg.Aave.DataProviderAddressHex(),
		Asset:               ast,
		Limiter:             limiter,
	}, log)
	if err != nil {
		panic("failed to create aave provider: " + err.Error())
	}
	return provider
}

func newCompoundProvider(sr di.ServiceRegistry) *compound.Provider {
	cfg := sr.Get("config").(*config.Config)
	log := sr.Get("logger").(logger.LoggerInterface)
	client := sr.Get("ethClient").(*ethclient.Client)
	ast := sr.Get("asset").(*asset.Asset)
	limiter := sr.Get("rpcLimiter").(*ratelimit.Limiter)

	provider, err := compound.NewProvider(client, compound.Config{
		CometAddress: cfg.Compound.CometAddressHex(),
		Asset:        ast,
		Limiter:      limiter,
	}, log)
	if err != nil {
		panic("failed to create compound provider: " + err.Error())
	}
	return provider
}

// Startup initializes the lending module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "lending module started",
		"asset", mono.Asset().Symbol(),
	)
	return nil
}
