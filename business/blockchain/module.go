// Package blockchain implements the blockchain bounded context: node
// connectivity and the new-heads feed driving watch mode.
package blockchain

import (
	"context"

	"github.com/0xnicolas/safe-yield-bot/business/blockchain/app"
	blockchainDI "github.com/0xnicolas/safe-yield-bot/business/blockchain/di"
	"github.com/0xnicolas/safe-yield-bot/business/blockchain/infra/ethereum"
	"github.com/0xnicolas/safe-yield-bot/internal/config"
	"github.com/0xnicolas/safe-yield-bot/internal/di"
	"github.com/0xnicolas/safe-yield-bot/internal/logger"
	"github.com/0xnicolas/safe-yield-bot/internal/monolith"
)

// Module implements the blockchain bounded context.
type Module struct{}

// RegisterServices registers all blockchain services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, blockchainDI.HeadSubscriber, func(sr di.ServiceRegistry) app.HeadSubscriber {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		subCfg := ethereum.DefaultSubscriberConfig(cfg.Ethereum.WebSocketURL, cfg.Ethereum.HTTPURL)
		if cfg.Rebalance.PollInterval > 0 {
			subCfg.PollInterval = cfg.Rebalance.PollInterval
		}

		sub, err := ethereum.NewSubscriber(subCfg, log)
		if err != nil {
			panic("failed to create head subscriber: " + err.Error())
		}
		return sub
	})

	di.RegisterToken(c, blockchainDI.BlockchainService, func(sr di.ServiceRegistry) *app.BlockchainService {
		cfg := sr.Get("config").(*config.Config)
		sub := di.GetToken(sr, blockchainDI.HeadSubscriber)
		return app.NewBlockchainService(sub, cfg.Ethereum.ChainID)
	})

	return nil
}

// Startup initializes the blockchain module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "blockchain module started",
		"chain_id", mono.Config().Ethereum.ChainID,
	)
	return nil
}
