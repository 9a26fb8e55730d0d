package automation

import (
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/0xnicolas/safe-yield-bot/business/execution/domain"
	"github.com/0xnicolas/safe-yield-bot/internal/apperror"
	"github.com/0xnicolas/safe-yield-bot/internal/httpclient"
	"github.com/0xnicolas/safe-yield-bot/internal/logger"
)

var testSafe = common.HexToAddress("0x2222222222222222222222222222222222222222")

func testSubmitter(t *testing.T, baseURL string, noopWhenEmpty bool) *Submitter {
	t.Helper()
	client, err := httpclient.New(httpclient.WithProviderName("automation-test"))
	if err != nil {
		t.Fatalf("failed to create http client: %v", err)
	}
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	return NewSubmitter(client, Config{
		BaseURL:             baseURL,
		SubmitNoopWhenEmpty: noopWhenEmpty,
	}, log)
}

func moduleTx(data []byte) domain.ModuleTransaction {
	return domain.ModuleTransaction{
		To:    testSafe,
		Value: big.NewInt(0),
		Data:  data,
	}
}

func TestSubmit_PostsModuleTransaction(t *testing.T) {
	var got submitRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/tasks" {
			t.Errorf("expected /v1/tasks, got %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(submitResponse{TaskID: "task-1", Status: "pending"})
	}))
	defer server.Close()

	s := testSubmitter(t, server.URL, false)
	if err := s.Submit(context.Background(), moduleTx([]byte{0xde, 0xad})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Address != testSafe.Hex() {
		t.Errorf("expected address %s, got %s", testSafe.Hex(), got.Address)
	}
	if len(got.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(got.Transactions))
	}
	if got.Transactions[0].Data != "0xdead" {
		t.Errorf("expected data 0xdead, got %s", got.Transactions[0].Data)
	}
}

func TestSubmit_RevertReportMapsToExecutionReverted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(submitResponse{
			TaskID: "task-2",
			Status: statusReverted,
			Error:  "GS104",
		})
	}))
	defer server.Close()

	s := testSubmitter(t, server.URL, false)
	err := s.Submit(context.Background(), moduleTx([]byte{0x01}))
	if err == nil {
		t.Fatal("expected error for reverted batch")
	}
	if code := apperror.GetCode(err); code != apperror.CodeExecutionReverted {
		t.Errorf("expected CodeExecutionReverted, got %s", code)
	}
}

func TestSubmit_Non2xxIsSubmissionFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	s := testSubmitter(t, server.URL, false)
	err := s.Submit(context.Background(), moduleTx([]byte{0x01}))
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
	if code := apperror.GetCode(err); code != apperror.CodeSubmissionFailed {
		t.Errorf("expected CodeSubmissionFailed, got %s", code)
	}
}

func TestSubmit_EmptyDataSkipsByDefault(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	s := testSubmitter(t, server.URL, false)
	if err := s.Submit(context.Background(), moduleTx(nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requests != 0 {
		t.Errorf("expected no requests, got %d", requests)
	}
}

func TestSubmit_NoopWhenEmptyPostsSelfCall(t *testing.T) {
	var got submitRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(submitResponse{TaskID: "task-3"})
	}))
	defer server.Close()

	s := testSubmitter(t, server.URL, true)
	if err := s.Submit(context.Background(), moduleTx(nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(got.Transactions))
	}
	if got.Transactions[0].Data != "0x" || got.Transactions[0].Value != "0" {
		t.Errorf("expected zero-value noop, got %+v", got.Transactions[0])
	}
}
