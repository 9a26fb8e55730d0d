package server

import (
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	lendingApp "github.com/0xnicolas/safe-yield-bot/business/lending/app"
	lendingDomain "github.com/0xnicolas/safe-yield-bot/business/lending/domain"
	rebalanceApp "github.com/0xnicolas/safe-yield-bot/business/rebalance/app"
	rebalanceDomain "github.com/0xnicolas/safe-yield-bot/business/rebalance/domain"
	"github.com/0xnicolas/safe-yield-bot/internal/asset"
	"github.com/0xnicolas/safe-yield-bot/internal/config"
	"github.com/0xnicolas/safe-yield-bot/internal/logger"
)

var usdc = asset.New(
	common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"),
	"USDC", 6,
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

type fakeExecutor struct {
	executed int
}

func (f *fakeExecutor) Execute(ctx context.Context, plan rebalanceDomain.RebalancePlan) error {
	f.executed++
	return nil
}

func testServer(aaveBps, compoundBps, aaveFunds int64, exec *fakeExecutor) *Server {
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

	cfg := &config.Config{}
	cfg.Server.Port = 0
	cfg.Safe.Address = "0x0000000000000000000000000000000000000123"
	cfg.Aave.PoolAddress = "0x87870Bca3F3fD6335C3F4ce8392D69350B4fA4E2"
	cfg.Compound.CometAddress = "0xc3d688B66703497DAA19211EEdff47f25384cdc3"

	planner := rebalanceApp.NewPlanner(rebalanceApp.PlannerConfig{
		AavePool: cfg.Aave.PoolAddressHex(),
		Comet:    cfg.Compound.CometAddressHex(),
	})

	return New(cfg, lending, rebalanceApp.NewDecider(50), planner, exec, log)
}

func TestHandleRates(t *testing.T) {
	srv := testServer(230, 280, 0, &fakeExecutor{})

	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/rates", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body)
	}

	var resp ratesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.AaveBps != 230 || resp.CompoundBps != 280 {
		t.Errorf("rates = %d/%d, want 230/280", resp.AaveBps, resp.CompoundBps)
	}
	if resp.Asset != "USDC" {
		t.Errorf("asset = %s, want USDC", resp.Asset)
	}
}

func TestHandleDecision(t *testing.T) {
	srv := testServer(230, 280, 1_000_000, &fakeExecutor{})

	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/decision", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body)
	}

	var resp decisionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.ShouldMove {
		t.Error("expected a move decision")
	}
	if resp.Better != "compound" || resp.Current != "aave" {
		t.Errorf("better/current = %s/%s, want compound/aave", resp.Better, resp.Current)
	}
}

func TestHandleDecisionThresholdOverride(t *testing.T) {
	srv := testServer(230, 280, 1_000_000, &fakeExecutor{})

	body := strings.NewReader(`{"threshold_bp": 51}`)
	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/decision", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body)
	}

	var resp decisionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.ShouldMove {
		t.Error("a 50bp difference must hold against a 51bp threshold")
	}
}

func TestHandleDecisionRejectsBadWallet(t *testing.T) {
	srv := testServer(230, 280, 0, &fakeExecutor{})

	body := strings.NewReader(`{"wallet": "not-an-address"}`)
	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/decision", body))

	if rec.Code == http.StatusOK {
		t.Fatal("expected a client error for a malformed wallet")
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding error envelope: %v", err)
	}
	if resp.Error.Code == "" {
		t.Error("error envelope is missing a code")
	}
}

func TestHandleRebalanceSubmitsPlan(t *testing.T) {
	exec := &fakeExecutor{}
	srv := testServer(230, 280, 1_000_000, exec)

	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/rebalance", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body)
	}

	var resp rebalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Submitted {
		t.Error("expected submitted=true")
	}
	if len(resp.Plan.Calls) != 3 {
		t.Errorf("plan has %d calls, want 3", len(resp.Plan.Calls))
	}
	if exec.executed != 1 {
		t.Errorf("executor ran %d times, want 1", exec.executed)
	}
}

func TestHandleRebalanceHoldSubmitsNothing(t *testing.T) {
	exec := &fakeExecutor{}
	srv := testServer(250, 250, 1_000_000, exec)

	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/rebalance", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body)
	}

	var resp rebalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Submitted {
		t.Error("expected submitted=false for a hold decision")
	}
	if exec.executed != 0 {
		t.Errorf("executor ran %d times, want 0", exec.executed)
	}
}
