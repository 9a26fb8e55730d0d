// Package execution implements the execution bounded context: batch
// encoding and submission through the Safe execution module.
package execution

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/0xnicolas/safe-yield-bot/business/execution/app"
	executionDI "github.com/0xnicolas/safe-yield-bot/business/execution/di"
	"github.com/0xnicolas/safe-yield-bot/business/execution/infra/automation"
	"github.com/0xnicolas/safe-yield-bot/business/execution/infra/safemodule"
	"github.com/0xnicolas/safe-yield-bot/internal/config"
	"github.com/0xnicolas/safe-yield-bot/internal/di"
	"github.com/0xnicolas/safe-yield-bot/internal/httpclient"
	"github.com/0xnicolas/safe-yield-bot/internal/logger"
	"github.com/0xnicolas/safe-yield-bot/internal/monolith"
	"github.com/0xnicolas/safe-yield-bot/internal/ratelimit"
)

// Module implements the execution bounded context.
type Module struct{}

// RegisterServices registers all execution services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, executionDI.Gateway, func(sr di.ServiceRegistry) app.ModuleGateway {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		client := sr.Get("ethClient").(*ethclient.Client)
		limiter := sr.Get("rpcLimiter").(*ratelimit.Limiter)

		return safemodule.NewGateway(client, safemodule.Config{
			SafeAddress:      cfg.Safe.AddressHex(),
			ModuleAddress:    cfg.Safe.ModuleAddressHex(),
			MultiSendAddress: cfg.Safe.MultiSendAddressHex(),
			Limiter:          limiter,
		}, log)
	})

	di.RegisterToken(c, executionDI.Submitter, func(sr di.ServiceRegistry) app.Submitter {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		opts := []httpclient.Option{
			httpclient.WithProviderName("automation"),
			httpclient.WithTimeout(cfg.Automation.RequestTimeout),
		}
		if cfg.Automation.APIKey != "" {
			opts = append(opts, httpclient.WithHeader("Authorization", "Bearer "+cfg.Automation.APIKey))
		}

		client, err := httpclient.New(opts...)
		if err != nil {
			panic("failed to create automation http client: " + err.Error())
		}

		return automation.NewSubmitter(client, automation.Config{
			BaseURL:             cfg.Automation.BaseURL,
			SubmitNoopWhenEmpty: cfg.Automation.SubmitNoopWhenEmpty,
		}, log)
	})

	di.RegisterToken(c, executionDI.ExecutionService, func(sr di.ServiceRegistry) *app.ExecutionService {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewExecutionService(
			di.GetToken(sr, executionDI.Gateway),
			di.GetToken(sr, executionDI.Submitter),
			log,
		)
	})

	return nil
}

// Startup initializes the execution module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "execution module started",
		"safe", mono.Config().Safe.Address,
		"module", mono.Config().Safe.ModuleAddress,
	)
	return nil
}
