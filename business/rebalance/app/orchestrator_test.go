package app

import (
	"context"
	"io"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	lendingApp "github.com/0xnicolas/safe-yield-bot/business/lending/app"
	lendingDomain "github.com/0xnicolas/safe-yield-bot/business/lending/domain"
	"github.com/0xnicolas/safe-yield-bot/business/rebalance/domain"
	"github.com/0xnicolas/safe-yield-bot/internal/asset"
	"github.com/0xnicolas/safe-yield-bot/internal/logger"
)

type stubRates struct {
	bps int64
	p   lendingDomain.Protocol
}

func (s stubRates) GetRate(ctx context.Context) (lendingDomain.RateQuote, error) {
	return lendingDomain.RateQuote{Protocol: s.p, Bps: s.bps, AsOf: time.Now().UTC()}, nil
}

type stubPositions struct {
	raw int64
	p   lendingDomain.Protocol
}

func (s stubPositions) GetPosition(ctx context.Context, wallet common.Address) (lendingDomain.Position, error) {
	return lendingDomain.Position{
		Protocol: s.p,
		Supplied: asset.NewAmount(usdc, big.NewInt(s.raw)),
	}, nil
}

type stubBalances struct{}

func (stubBalances) BalanceOf(ctx context.Context, wallet common.Address) (asset.Amount, error) {
	return asset.Zero(usdc), nil
}

type recordingReporter struct {
	cycles      int
	submissions int
	lastErr     error
}

func (r *recordingReporter) Start(ctx context.Context) error { return nil }
func (r *recordingReporter) ReportCycle(snap *lendingDomain.Snapshot, d domain.YieldDecision, p domain.RebalancePlan) {
	r.cycles++
}
func (r *recordingReporter) ReportSubmission(p domain.RebalancePlan, err error) {
	r.submissions++
	r.lastErr = err
}
func (r *recordingReporter) Stop() error { return nil }

type fakeExecutor struct {
	executed int
	err      error
}

func (f *fakeExecutor) Execute(ctx context.Context, plan domain.RebalancePlan) error {
	f.executed++
	return f.err
}

func testOrchestrator(aaveBps, compoundBps, aaveFunds int64, submit bool, exec *fakeExecutor, rep *recordingReporter) *Orchestrator {
	log := logger.New(io.Discard, logger.LevelError, "test", nil)

	lending := lendingApp.NewLendingService(
		usdc,
		stubRates{bps: aaveBps, p: lendingDomain.ProtocolAave},
		stubRates{bps: compoundBps, p: lendingDomain.ProtocolCompound},
		stubPositions{raw: aaveFunds, p: lendingDomain.ProtocolAave},
		stubPositions{raw: 0, p: lendingDomain.ProtocolCompound},
		stubBalances{},
		log,
	)

	return NewOrchestrator(
		lending,
		NewDecider(50),
		testPlanner(),
		exec,
		rep,
		OrchestratorConfig{
			Wallet: common.HexToAddress("0x0000000000000000000000000000000000000123"),
			Submit: submit,
		},
		log,
	)
}

func TestRunCycleHoldSubmitsNothing(t *testing.T) {
	exec := &fakeExecutor{}
	rep := &recordingReporter{}
	o := testOrchestrator(250, 250, 1_000_000, true, exec, rep)

	result, err := o.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if result.Decision.ShouldMove {
		t.Error("equal rates must not trigger a move")
	}
	if !result.Plan.Empty() {
		t.Error("hold decision must yield an empty plan")
	}
	if exec.executed != 0 {
		t.Errorf("executor ran %d times, want 0", exec.executed)
	}
	if rep.cycles != 1 {
		t.Errorf("reporter saw %d cycles, want 1", rep.cycles)
	}
}

func TestRunCycleMoveSubmitsWhenEnabled(t *testing.T) {
	exec := &fakeExecutor{}
	rep := &recordingReporter{}
	o := testOrchestrator(230, 280, 1_000_000, true, exec, rep)

	result, err := o.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if !result.Decision.ShouldMove {
		t.Fatal("expected a move decision")
	}
	if len(result.Plan.Calls) != 3 {
		t.Fatalf("plan has %d calls, want 3", len(result.Plan.Calls))
	}
	if exec.executed != 1 {
		t.Errorf("executor ran %d times, want 1", exec.executed)
	}
	if rep.submissions != 1 {
		t.Errorf("reporter saw %d submissions, want 1", rep.submissions)
	}
}

func TestRunCycleMoveSkipsSubmissionWhenDisabled(t *testing.T) {
	exec := &fakeExecutor{}
	rep := &recordingReporter{}
	o := testOrchestrator(230, 280, 1_000_000, false, exec, rep)

	if _, err := o.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if exec.executed != 0 {
		t.Errorf("executor ran %d times, want 0 with submission disabled", exec.executed)
	}
}
