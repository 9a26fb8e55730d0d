package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/0xnicolas/safe-yield-bot/business/execution/domain"
	rebalanceDomain "github.com/0xnicolas/safe-yield-bot/business/rebalance/domain"
	"github.com/0xnicolas/safe-yield-bot/internal/apperror"
	"github.com/0xnicolas/safe-yield-bot/internal/asset"
	"github.com/0xnicolas/safe-yield-bot/internal/logger"
)

var testSafe = common.HexToAddress("0x0000000000000000000000000000000000000123")

type fakeGateway struct {
	enabled    bool
	enabledErr error

	builtPacked []byte
}

func (g *fakeGateway) IsModuleEnabled(ctx context.Context) (bool, error) {
	return g.enabled, g.enabledErr
}

func (g *fakeGateway) BuildModuleTransaction(packed []byte) (domain.ModuleTransaction, error) {
	g.builtPacked = packed
	return domain.ModuleTransaction{To: testSafe, Value: new(big.Int), Data: []byte{0x46}}, nil
}

type fakeSubmitter struct {
	err       error
	submitted int
}

func (s *fakeSubmitter) Submit(ctx context.Context, tx domain.ModuleTransaction) error {
	s.submitted++
	return s.err
}

func testLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

func nonEmptyPlan() rebalanceDomain.RebalancePlan {
	usdc := asset.New(common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), "USDC", 6)
	return rebalanceDomain.RebalancePlan{
		From:   rebalanceDomain.VenueAave,
		To:     rebalanceDomain.VenueCompound,
		Amount: asset.NewAmountFromUint64(usdc, 1_000_000),
		Calls: []rebalanceDomain.Call{
			rebalanceDomain.NewCall(common.HexToAddress("0x1111111111111111111111111111111111111111"), []byte{0x01}),
		},
	}
}

func TestExecuteEmptyPlanSubmitsNothing(t *testing.T) {
	gateway := &fakeGateway{enabled: false} // must not even be consulted
	submitter := &fakeSubmitter{}
	svc := NewExecutionService(gateway, submitter, testLogger())

	err := svc.Execute(context.Background(), rebalanceDomain.RebalancePlan{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if submitter.submitted != 0 {
		t.Errorf("submitted %d transactions, want 0", submitter.submitted)
	}
}

func TestExecuteRefusesDisabledModule(t *testing.T) {
	gateway := &fakeGateway{enabled: false}
	submitter := &fakeSubmitter{}
	svc := NewExecutionService(gateway, submitter, testLogger())

	err := svc.Execute(context.Background(), nonEmptyPlan())
	if err == nil {
		t.Fatal("expected error when module is disabled")
	}
	if code := apperror.GetCode(err); code != apperror.CodeModuleNotEnabled {
		t.Errorf("code = %s, want %s", code, apperror.CodeModuleNotEnabled)
	}
	if submitter.submitted != 0 {
		t.Errorf("submitted %d transactions, want 0", submitter.submitted)
	}
}

func TestExecuteSubmitsPackedBatch(t *testing.T) {
	gateway := &fakeGateway{enabled: true}
	submitter := &fakeSubmitter{}
	svc := NewExecutionService(gateway, submitter, testLogger())

	plan := nonEmptyPlan()
	if err := svc.Execute(context.Background(), plan); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if submitter.submitted != 1 {
		t.Fatalf("submitted %d transactions, want 1", submitter.submitted)
	}
	if !bytes.Equal(gateway.builtPacked, domain.EncodeMultiSend(plan.Calls)) {
		t.Error("gateway did not receive the packed batch for the plan's calls")
	}
}

func TestExecutePropagatesSubmitterError(t *testing.T) {
	gateway := &fakeGateway{enabled: true}
	submitter := &fakeSubmitter{err: apperror.New(apperror.CodeSubmissionFailed)}
	svc := NewExecutionService(gateway, submitter, testLogger())

	err := svc.Execute(context.Background(), nonEmptyPlan())
	if code := apperror.GetCode(err); code != apperror.CodeSubmissionFailed {
		t.Errorf("code = %s, want %s", code, apperror.CodeSubmissionFailed)
	}
}

func TestExecutePropagatesGatewayError(t *testing.T) {
	gateway := &fakeGateway{enabledErr: errors.New("rpc down")}
	submitter := &fakeSubmitter{}
	svc := NewExecutionService(gateway, submitter, testLogger())

	if err := svc.Execute(context.Background(), nonEmptyPlan()); err == nil {
		t.Fatal("expected gateway error to propagate")
	}
	if submitter.submitted != 0 {
		t.Errorf("submitted %d transactions, want 0", submitter.submitted)
	}
}
