// Package server exposes the rebalancer pipeline over a JSON API for
// the hosted automation service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	lendingApp "github.com/0xnicolas/safe-yield-bot/business/lending/app"
	rebalanceApp "github.com/0xnicolas/safe-yield-bot/business/rebalance/app"
	"github.com/0xnicolas/safe-yield-bot/internal/apperror"
	"github.com/0xnicolas/safe-yield-bot/internal/config"
	"github.com/0xnicolas/safe-yield-bot/internal/logger"
)

const requestBodyLimit = 1 << 20 // 1 MiB

// Server is the JSON API server.
type Server struct {
	cfg      *config.Config
	lending  *lendingApp.LendingService
	decider  *rebalanceApp.Decider
	planner  *rebalanceApp.Planner
	executor rebalanceApp.Executor
	logger   logger.LoggerInterface

	http *http.Server
}

// New creates the API server.
func New(
	cfg *config.Config,
	lending *lendingApp.LendingService,
	decider *rebalanceApp.Decider,
	planner *rebalanceApp.Planner,
	executor rebalanceApp.Executor,
	log logger.LoggerInterface,
) *Server {
	s := &Server{
		cfg:      cfg,
		lending:  lending,
		decider:  decider,
		planner:  planner,
		executor: executor,
		logger:   log,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/rates", s.handleRates)
		r.Post("/decision", s.handleDecision)
		r.Post("/rebalance", s.handleRebalance)
	})

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Start runs the server until it is shut down. It blocks.
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "api server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// pipelineRequest is the body of the decision and rebalance endpoints.
// Omitted fields fall back to configuration.
type pipelineRequest struct {
	Wallet      string `json:"wallet,omitempty"`
	ThresholdBp *int64 `json:"threshold_bp,omitempty"`
}

func (s *Server) parsePipelineRequest(r *http.Request) (common.Address, *rebalanceApp.Decider, error) {
	wallet := s.cfg.Safe.AddressHex()
	decider := s.decider

	if r.Body == nil || r.ContentLength == 0 {
		return wallet, decider, nil
	}

	var req pipelineRequest
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, requestBodyLimit))
	if err := dec.Decode(&req); err != nil {
		return common.Address{}, nil, apperror.New(apperror.CodeInvalidInput,
			apperror.WithMessage("invalid request body"),
			apperror.WithCause(err),
		)
	}

	if req.Wallet != "" {
		if !common.IsHexAddress(req.Wallet) {
			return common.Address{}, nil, apperror.New(apperror.CodeInvalidFormat,
				apperror.WithMessage("wallet is not a hex address"),
			)
		}
		wallet = common.HexToAddress(req.Wallet)
	}
	if req.ThresholdBp != nil {
		if *req.ThresholdBp < 0 {
			return common.Address{}, nil, apperror.New(apperror.CodeInvalidInput,
				apperror.WithMessage("threshold_bp must not be negative"),
			)
		}
		decider = rebalanceApp.NewDecider(*req.ThresholdBp)
	}

	return wallet, decider, nil
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	snap, err := s.lending.Snapshot(r.Context(), s.cfg.Safe.AddressHex())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ratesResponse{
		Asset:       snap.Asset.Symbol(),
		AaveBps:     snap.AaveRate.Bps,
		CompoundBps: snap.CompoundRate.Bps,
		AsOf:        snap.Timestamp,
	})
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	wallet, decider, err := s.parsePipelineRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	snap, err := s.lending.Snapshot(r.Context(), wallet)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	decision := decider.Decide(snap)
	s.writeJSON(w, http.StatusOK, newDecisionResponse(decision))
}

func (s *Server) handleRebalance(w http.ResponseWriter, r *http.Request) {
	wallet, decider, err := s.parsePipelineRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	snap, err := s.lending.Snapshot(r.Context(), wallet)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	decision := decider.Decide(snap)
	plan, err := s.planner.BuildPlan(decision, wallet, snap.Asset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	submitted := false
	if !plan.Empty() {
		if err := s.executor.Execute(r.Context(), plan); err != nil {
			s.writeError(w, r, err)
			return
		}
		submitted = true
	}

	s.writeJSON(w, http.StatusOK, rebalanceResponse{
		Submitted: submitted,
		Decision:  newDecisionResponse(decision),
		Plan:      newPlanResponse(plan),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders an apperror as a structured envelope; unknown
// errors become a 500 without leaking internals.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := apperror.CodeInternalError
	message := "internal error"

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status = appErr.StatusCode
		code = appErr.Code
		message = appErr.Message
	}

	s.logger.Error(r.Context(), "request failed",
		"path", r.URL.Path,
		"code", string(code),
		"error", err,
	)

	s.writeJSON(w, status, errorResponse{
		Error: errorBody{Code: string(code), Message: message},
	})
}
