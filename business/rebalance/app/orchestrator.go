package app

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	blockchainDomain "github.com/0xnicolas/safe-yield-bot/business/blockchain/domain"
	lendingApp "github.com/0xnicolas/safe-yield-bot/business/lending/app"
	lendingDomain "github.com/0xnicolas/safe-yield-bot/business/lending/domain"
	"github.com/0xnicolas/safe-yield-bot/business/rebalance/domain"
	"github.com/0xnicolas/safe-yield-bot/internal/logger"
)

// Executor is the rebalance context's view of the execution layer.
type Executor interface {
	Execute(ctx context.Context, plan domain.RebalancePlan) error
}

// CycleResult is everything one decision cycle produced.
type CycleResult struct {
	Snapshot *lendingDomain.Snapshot
	Decision domain.YieldDecision
	Plan     domain.RebalancePlan
}

// OrchestratorConfig holds the pipeline settings.
type OrchestratorConfig struct {
	Wallet common.Address
	// Submit hands non-empty plans to the executor; off means
	// decide-and-report only.
	Submit bool
}

// Orchestrator runs the full pipeline: snapshot, decide, plan, and
// optionally execute. Each cycle starts from a fresh snapshot; nothing
// carries over between cycles.
type Orchestrator struct {
	lending  *lendingApp.LendingService
	decider  *Decider
	planner  *Planner
	executor Executor
	reporter Reporter
	config   OrchestratorConfig
	logger   logger.LoggerInterface
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(
	lending *lendingApp.LendingService,
	decider *Decider,
	planner *Planner,
	executor Executor,
	reporter Reporter,
	config OrchestratorConfig,
	log logger.LoggerInterface,
) *Orchestrator {
	return &Orchestrator{
		lending:  lending,
		decider:  decider,
		planner:  planner,
		executor: executor,
		reporter: reporter,
		config:   config,
		logger:   log,
	}
}

// RunCycle executes one decision cycle. A failed read fails the whole
// cycle; the caller retries on the next head.
func (o *Orchestrator) RunCycle(ctx context.Context) (CycleResult, error) {
	snap, err := o.lending.Snapshot(ctx, o.config.Wallet)
	if err != nil {
		return CycleResult{}, err
	}

	decision := o.decider.Decide(snap)

	plan, err := o.planner.BuildPlan(decision, o.config.Wallet, snap.Asset)
	if err != nil {
		return CycleResult{}, err
	}

	o.reporter.ReportCycle(snap, decision, plan)
	o.logger.Info(ctx, "decision cycle complete", "decision", decision.Summary())

	if o.config.Submit && !plan.Empty() {
		err := o.executor.Execute(ctx, plan)
		o.reporter.ReportSubmission(plan, err)
		if err != nil {
			return CycleResult{Snapshot: snap, Decision: decision, Plan: plan}, err
		}
	}

	return CycleResult{Snapshot: snap, Decision: decision, Plan: plan}, nil
}

// Watch runs one cycle per incoming head until the context ends. Cycle
// failures are logged and the loop keeps going; the chain will deliver
// another head.
func (o *Orchestrator) Watch(ctx context.Context, heads <-chan *blockchainDomain.Head) error {
	if err := o.reporter.Start(ctx); err != nil {
		return err
	}
	defer o.reporter.Stop()

	o.logger.Info(ctx, "watch mode started", "wallet", o.config.Wallet.Hex())

	for {
		select {
		case <-ctx.Done():
			o.logger.Info(ctx, "watch mode stopping", "reason", ctx.Err())
			return nil
		case head, ok := <-heads:
			if !ok {
				o.logger.Info(ctx, "head feed closed")
				return nil
			}
			if head == nil {
				continue
			}
			if _, err := o.RunCycle(ctx); err != nil {
				o.logger.Error(ctx, "cycle failed", "head", head.Number, "error", err)
			}
		}
	}
}
