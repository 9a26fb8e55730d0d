package health

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestHealth_AllChecksPass(t *testing.T) {
	s := NewServer(0, "test")
	s.RegisterCheck("ethereum_node", func(ctx context.Context) (bool, string) {
		return true, "chain 1"
	})

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var status Status
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if status.Status != "ok" {
		t.Errorf("expected status ok, got %s", status.Status)
	}
	check, ok := status.Checks["ethereum_node"]
	if !ok {
		t.Fatal("expected ethereum_node check in response")
	}
	if !check.Healthy || check.Message != "chain 1" {
		t.Errorf("unexpected check result: %+v", check)
	}
}

func TestHealth_FailingCheckDegrades(t *testing.T) {
	s := NewServer(0, "test")
	s.RegisterCheck("ethereum_node", func(ctx context.Context) (bool, string) {
		return false, "connection refused"
	})

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != 503 {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var status Status
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if status.Status != "degraded" {
		t.Errorf("expected status degraded, got %s", status.Status)
	}
}

func TestReady_FailingCheck(t *testing.T) {
	s := NewServer(0, "test")
	s.RegisterCheck("ethereum_node", func(ctx context.Context) (bool, string) {
		return false, "connection refused"
	})

	rec := httptest.NewRecorder()
	s.handleReady(rec, httptest.NewRequest("GET", "/ready", nil))

	if rec.Code != 503 {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
