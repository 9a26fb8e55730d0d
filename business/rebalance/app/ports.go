package app

import (
	"context"

	lendingDomain "github.com/0xnicolas/safe-yield-bot/business/lending/domain"
	"github.com/0xnicolas/safe-yield-bot/business/rebalance/domain"
)

// Reporter defines the interface for surfacing decision cycles.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// ReportCycle surfaces one completed decision cycle: the snapshot
	// it was computed from, the decision, and the plan (possibly empty).
	ReportCycle(snap *lendingDomain.Snapshot, decision domain.YieldDecision, plan domain.RebalancePlan)

	// ReportSubmission surfaces the outcome of handing a plan to the
	// execution layer.
	ReportSubmission(plan domain.RebalancePlan, err error)

	// Stop gracefully shuts down the reporter.
	Stop() error
}
