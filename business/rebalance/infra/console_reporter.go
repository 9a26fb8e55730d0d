// Package infra contains infrastructure adapters for the rebalance context.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	lendingDomain "github.com/0xnicolas/safe-yield-bot/business/lending/domain"
	"github.com/0xnicolas/safe-yield-bot/business/rebalance/domain"
)

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a new ConsoleReporter writing to stdout.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{out: os.Stdout}
}

// Start initializes the console reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	fmt.Fprintln(r.out, "Yield Rebalancer Started")
	fmt.Fprintln(r.out, "========================")
	return nil
}

// ReportCycle outputs one decision cycle to the console.
func (r *ConsoleReporter) ReportCycle(snap *lendingDomain.Snapshot, decision domain.YieldDecision, plan domain.RebalancePlan) {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintf(r.out, "Cycle:          %s\n", decision.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(r.out, "Wallet:         %s\n", snap.Wallet.Hex())
	fmt.Fprintf(r.out, "Asset:          %s\n", snap.Asset.Symbol())
	fmt.Fprintln(r.out, "RATES")
	fmt.Fprintf(r.out, "  Aave V3:        %d bps (%s%% APY)\n", decision.AaveBps, snap.AaveRate.APY().StringFixed(2))
	fmt.Fprintf(r.out, "  Compound V3:    %d bps (%s%% APY)\n", decision.CompoundBps, snap.CompoundRate.APY().StringFixed(2))
	fmt.Fprintf(r.out, "  Difference:     %d bps\n", decision.DifferenceBp)
	fmt.Fprintln(r.out, "POSITION")
	fmt.Fprintf(r.out, "  Aave:           %s\n", snap.AavePosition.Supplied)
	fmt.Fprintf(r.out, "  Compound:       %s\n", snap.CompoundPosition.Supplied)
	fmt.Fprintf(r.out, "  Wallet:         %s\n", snap.WalletBalance)
	fmt.Fprintln(r.out, "DECISION")
	if decision.ShouldMove {
		fmt.Fprintf(r.out, "  MOVE %s: %s -> %s (%d calls)\n",
			decision.Amount, decision.Current, decision.Better, len(plan.Calls))
	} else {
		fmt.Fprintf(r.out, "  HOLD (current=%s, better=%s)\n", decision.Current, decision.Better)
	}
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
}

// ReportSubmission outputs a submission outcome.
func (r *ConsoleReporter) ReportSubmission(plan domain.RebalancePlan, err error) {
	if err != nil {
		fmt.Fprintf(r.out, "Submission FAILED (%s -> %s): %v\n", plan.From, plan.To, err)
		return
	}
	fmt.Fprintf(r.out, "Submitted: %s %s -> %s (%d calls)\n",
		plan.Amount, plan.From, plan.To, len(plan.Calls))
}

// Stop gracefully shuts down the console reporter.
func (r *ConsoleReporter) Stop() error {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Yield Rebalancer Stopped")
	return nil
}
