package infra

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	lendingDomain "github.com/0xnicolas/safe-yield-bot/business/lending/domain"
	"github.com/0xnicolas/safe-yield-bot/business/rebalance/domain"
	"github.com/0xnicolas/safe-yield-bot/pkg/ui"
)

// TUIReporter implements Reporter by forwarding cycle results to a
// running Bubble Tea program. The program itself is owned by the
// entrypoint; the reporter only sends messages.
type TUIReporter struct {
	program *tea.Program
}

// NewTUIReporter creates a TUIReporter bound to an existing program.
func NewTUIReporter(program *tea.Program) *TUIReporter {
	return &TUIReporter{program: program}
}

// Start is a no-op; the entrypoint runs the program.
func (r *TUIReporter) Start(ctx context.Context) error {
	return nil
}

// ReportCycle forwards one decision cycle to the dashboard.
func (r *TUIReporter) ReportCycle(snap *lendingDomain.Snapshot, decision domain.YieldDecision, plan domain.RebalancePlan) {
	r.program.Send(ui.CycleMsg{
		AaveBps:          decision.AaveBps,
		CompoundBps:      decision.CompoundBps,
		DifferenceBp:     decision.DifferenceBp,
		AavePosition:     snap.AavePosition.Supplied.String(),
		CompoundPosition: snap.CompoundPosition.Supplied.String(),
		WalletBalance:    snap.WalletBalance.String(),
		ShouldMove:       decision.ShouldMove,
		From:             decision.Current.String(),
		To:               decision.Better.String(),
		Amount:           decision.Amount.String(),
		Timestamp:        decision.Timestamp,
	})
}

// ReportSubmission forwards a submission outcome to the dashboard.
func (r *TUIReporter) ReportSubmission(plan domain.RebalancePlan, err error) {
	msg := ui.SubmissionMsg{
		From:    plan.From.String(),
		To:      plan.To.String(),
		Amount:  plan.Amount.String(),
		Success: err == nil,
	}
	if err != nil {
		msg.Error = err.Error()
	}
	r.program.Send(msg)
}

// Stop is a no-op; the entrypoint owns the program lifecycle.
func (r *TUIReporter) Stop() error {
	return nil
}
