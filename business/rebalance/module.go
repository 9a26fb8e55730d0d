// Package rebalance implements the rebalance bounded context: the
// yield comparison and the call-plan construction.
package rebalance

import (
	"context"

	executionDI "github.com/0xnicolas/safe-yield-bot/business/execution/di"
	lendingDI "github.com/0xnicolas/safe-yield-bot/business/lending/di"
	"github.com/0xnicolas/safe-yield-bot/business/rebalance/app"
	rebalanceDI "github.com/0xnicolas/safe-yield-bot/business/rebalance/di"
	"github.com/0xnicolas/safe-yield-bot/business/rebalance/infra"
	"github.com/0xnicolas/safe-yield-bot/internal/config"
	"github.com/0xnicolas/safe-yield-bot/internal/di"
	"github.com/0xnicolas/safe-yield-bot/internal/logger"
	"github.com/0xnicolas/safe-yield-bot/internal/monolith"
)

// Module implements the rebalance bounded context.
type Module struct{}

// RegisterServices registers all rebalance services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, rebalanceDI.Decider, func(sr di.ServiceRegistry) *app.Decider {
		cfg := sr.Get("config").(*config.Config)
		return app.NewDecider(cfg.Rebalance.ThresholdBp)
	})

	di.RegisterToken(c, rebalanceDI.Planner, func(sr di.ServiceRegistry) *app.Planner {
		cfg := sr.Get("config").(*config.Config)
		return app.NewPlanner(app.PlannerConfig{
			AavePool: cfg.Aave.PoolAddressHex(),
			Comet:    cfg.Compound.CometAddressHex(),
		})
	})

	// Console by default; watch mode swaps in the TUI bridge before
	// the first resolution.
	di.RegisterToken(c, rebalanceDI.Reporter, func(sr di.ServiceRegistry) app.Reporter {
		return infra.NewConsoleReporter()
	})

	di.RegisterToken(c, rebalanceDI.Orchestrator, func(sr di.ServiceRegistry) *app.Orchestrator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return app.NewOrchestrator(
			lendingDI.GetLendingService(sr),
			di.GetToken(sr, rebalanceDI.Decider),
			di.GetToken(sr, rebalanceDI.Planner),
			executionDI.GetExecutionService(sr),
			di.GetToken(sr, rebalanceDI.Reporter),
			app.OrchestratorConfig{
				Wallet: cfg.Safe.AddressHex(),
				Submit: cfg.Automation.BaseURL != "",
			},
			log,
		)
	})

	return nil
}

// Startup initializes the rebalance module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "rebalance module started",
		"threshold_bp", mono.Config().Rebalance.ThresholdBp,
	)
	return nil
}
