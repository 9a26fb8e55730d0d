// Package monolith provides the application container and module interface.
package monolith

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/0xnicolas/safe-yield-bot/internal/asset"
	"github.com/0xnicolas/safe-yield-bot/internal/config"
	"github.com/0xnicolas/safe-yield-bot/internal/di"
	"github.com/0xnicolas/safe-yield-bot/internal/logger"
	"github.com/0xnicolas/safe-yield-bot/internal/ratelimit"
)

// Monolith is the application container providing shared infrastructure
// to the bounded-context modules.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	EthClient() *ethclient.Client
	Asset() *asset.Asset
	RPCLimiter() *ratelimit.Limiter
	Services() di.ServiceRegistry
}

// Module is a bounded context that registers services and starts up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

type app struct {
	config     *config.Config
	logger     logger.LoggerInterface
	ethClient  *ethclient.Client
	ast        *asset.Asset
	rpcLimiter *ratelimit.Limiter
	container  di.Container
}

// New creates a Monolith: one shared Ethereum client, one shared RPC
// rate limiter, and the configured asset.
func New(cfg *config.Config, log logger.LoggerInterface) (*app, error) {
	ethClient, err := ethclient.Dial(cfg.Ethereum.HTTPURL)
	if err != nil {
		return nil, err
	}

	ast := asset.New(
		cfg.Rebalance.AssetAddressHex(),
		cfg.Rebalance.AssetSymbol,
		cfg.Rebalance.AssetDecimals,
	)

	limiter := ratelimit.New(cfg.Ethereum.RPCRateLimit, cfg.Ethereum.RPCBurst)

	container := di.NewContainer()
	container.Register("config", cfg)
	container.Register("logger", log)
	container.Register("ethClient", ethClient)
	container.Register("asset", ast)
	container.Register("rpcLimiter", limiter)

	return &app{
		config:     cfg,
		logger:     log,
		ethClient:  ethClient,
		ast:        ast,
		rpcLimiter: limiter,
		container:  container,
	}, nil
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *app) EthClient() *ethclient.Client {
	return a.ethClient
}

func (a *app) Asset() *asset.Asset {
	return a.ast
}

func (a *app) RPCLimiter() *ratelimit.Limiter {
	return a.rpcLimiter
}

func (a *app) Services() di.ServiceRegistry {
	return a.container
}

// Container returns the DI container for module registration.
func (a *app) Container() di.Container {
	return a.container
}

// RegisterModules registers all provided modules.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all resources.
func (a *app) Close() error {
	if a.ethClient != nil {
		a.ethClient.Close()
	}
	return nil
}
