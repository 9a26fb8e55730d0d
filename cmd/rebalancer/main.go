// Package main is the entry point for the Safe yield rebalancer.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/0xnicolas/safe-yield-bot/business/blockchain"
	blockchainDI "github.com/0xnicolas/safe-yield-bot/business/blockchain/di"
	blockchainDomain "github.com/0xnicolas/safe-yield-bot/business/blockchain/domain"
	"github.com/0xnicolas/safe-yield-bot/business/execution"
	executionDI "github.com/0xnicolas/safe-yield-bot/business/execution/di"
	"github.com/0xnicolas/safe-yield-bot/business/lending"
	lendingDI "github.com/0xnicolas/safe-yield-bot/business/lending/di"
	"github.com/0xnicolas/safe-yield-bot/business/rebalance"
	rebalanceApp "github.com/0xnicolas/safe-yield-bot/business/rebalance/app"
	rebalanceDI "github.com/0xnicolas/safe-yield-bot/business/rebalance/di"
	rebalanceInfra "github.com/0xnicolas/safe-yield-bot/business/rebalance/infra"
	"github.com/0xnicolas/safe-yield-bot/internal/apm"
	"github.com/0xnicolas/safe-yield-bot/internal/config"
	"github.com/0xnicolas/safe-yield-bot/internal/di"
	"github.com/0xnicolas/safe-yield-bot/internal/health"
	"github.com/0xnicolas/safe-yield-bot/internal/logger"
	"github.com/0xnicolas/safe-yield-bot/internal/metrics"
	"github.com/0xnicolas/safe-yield-bot/internal/monolith"
	"github.com/0xnicolas/safe-yield-bot/pkg/ui"
	"github.com/0xnicolas/safe-yield-bot/server"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	once := flag.Bool("once", false, "Run a single decision cycle and exit")
	watch := flag.Bool("watch", false, "Run a decision cycle per new block")
	serve := flag.Bool("serve", false, "Serve the JSON API")
	cliMode := flag.Bool("cli", false, "Watch with log output instead of the TUI")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("safe-yield-bot %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	mode := modeOnce
	switch {
	case *watch:
		mode = modeWatch
	case *serve:
		mode = modeServe
	case *once:
		mode = modeOnce
	}

	// TUI only applies to watch mode.
	tuiMode := mode == modeWatch && !*cliMode

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	if err := run(ctx, *configPath, mode, tuiMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type runMode int

const (
	modeOnce runMode = iota
	modeWatch
	modeServe
)

func run(ctx context.Context, configPath string, mode runMode, tuiMode bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.App.TUIMode = tuiMode

	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}

	var log *logger.Logger
	if tuiMode {
		// The TUI owns the terminal; discard log output.
		log = logger.New(io.Discard, logLevel, cfg.App.Name, nil)
	} else {
		log = logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
		log.Info(ctx, "starting safe yield rebalancer",
			"version", version,
			"environment", cfg.App.Environment,
		)
	}

	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.ZipkinProvider, log))
		log.Info(ctx, "tracing initialized", "endpoint", cfg.Telemetry.OTLPEndpoint)

		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		)

		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	healthServer := health.NewServer(8081, version)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	}
	defer healthServer.Stop(ctx)

	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	healthServer.RegisterCheck("ethereum_node", func(ctx context.Context) (bool, string) {
		chainID, err := mono.EthClient().ChainID(ctx)
		if err != nil {
			return false, err.Error()
		}
		return true, "chain " + chainID.String()
	})

	// Dependency order: lending and execution feed the rebalance
	// orchestrator; blockchain feeds watch mode.
	modules := []monolith.Module{
		&blockchain.Module{},
		&lending.Module{},
		&execution.Module{},
		&rebalance.Module{},
	}
	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	var program *tea.Program
	if tuiMode {
		model := ui.NewModel(cfg.Rebalance.AssetSymbol, cfg.Rebalance.ThresholdBp)
		program = tea.NewProgram(model, tea.WithAltScreen())

		// Swap the reporter before anything resolves it.
		di.RegisterToken(mono.Container(), rebalanceDI.Reporter, func(sr di.ServiceRegistry) rebalanceApp.Reporter {
			return rebalanceInfra.NewTUIReporter(program)
		})
	}

	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	switch mode {
	case modeServe:
		return runServe(ctx, cfg, mono.Services(), log)
	case modeWatch:
		if tuiMode {
			return runWatchTUI(ctx, mono.Services(), program)
		}
		return runWatchCLI(ctx, mono.Services())
	default:
		return runOnce(ctx, mono.Services(), log)
	}
}

func runOnce(ctx context.Context, sr di.ServiceRegistry, log logger.LoggerInterface) error {
	orchestrator := rebalanceDI.GetOrchestrator(sr)

	result, err := orchestrator.RunCycle(ctx)
	if err != nil {
		return err
	}

	log.Info(ctx, "cycle finished", "decision", result.Decision.Summary())
	return nil
}

func runWatchCLI(ctx context.Context, sr di.ServiceRegistry) error {
	chain := blockchainDI.GetBlockchainService(sr)
	defer chain.Close()

	if err := chain.VerifyChainID(ctx); err != nil {
		return err
	}

	heads, err := chain.SubscribeHeads(ctx)
	if err != nil {
		return err
	}

	orchestrator := rebalanceDI.GetOrchestrator(sr)
	return orchestrator.Watch(ctx, heads)
}

func runServe(ctx context.Context, cfg *config.Config, sr di.ServiceRegistry, log logger.LoggerInterface) error {
	srv := server.New(
		cfg,
		lendingDI.GetLendingService(sr),
		rebalanceDI.GetDecider(sr),
		rebalanceDI.GetPlanner(sr),
		executionDI.GetExecutionService(sr),
		log,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	}
}

func runWatchTUI(ctx context.Context, sr di.ServiceRegistry, program *tea.Program) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		chain := blockchainDI.GetBlockchainService(sr)
		defer chain.Close()

		if err := chain.VerifyChainID(ctx); err != nil {
			program.Send(ui.ErrorMsg{Error: err})
			errCh <- err
			return
		}

		heads, err := chain.SubscribeHeads(ctx)
		if err != nil {
			program.Send(ui.ErrorMsg{Error: err})
			errCh <- err
			return
		}

		// Tee heads so the dashboard sees block numbers while the
		// orchestrator consumes the cycle trigger.
		tee := make(chan *blockchainDomain.Head, 16)
		go func() {
			defer close(tee)
			for {
				select {
				case <-ctx.Done():
					return
				case head, ok := <-heads:
					if !ok {
						return
					}
					if head == nil {
						continue
					}
					program.Send(ui.BlockMsg{Number: head.Number, Timestamp: head.Timestamp})
					select {
					case tee <- head:
					case <-ctx.Done():
						return
					}
				}
			}
		}()

		orchestrator := rebalanceDI.GetOrchestrator(sr)
		errCh <- orchestrator.Watch(ctx, tee)
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	cancel()

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
