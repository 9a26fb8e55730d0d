// Package automation submits module transactions to the hosted
// automation service over HTTP.
package automation

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/0xnicolas/safe-yield-bot/business/execution/app"
	"github.com/0xnicolas/safe-yield-bot/business/execution/domain"
	"github.com/0xnicolas/safe-yield-bot/internal/apperror"
	"github.com/0xnicolas/safe-yield-bot/internal/httpclient"
	"github.com/0xnicolas/safe-yield-bot/internal/logger"
)

var _ app.Submitter = (*Submitter)(nil)

// transactionPayload is one item of the automation service's
// transaction list.
type transactionPayload struct {
	To    string `json:"to"`
	Value string `json:"value"`
	Data  string `json:"data"`
}

type submitRequest struct {
	Address      string               `json:"address"`
	Transactions []transactionPayload `json:"transactions"`
}

type submitResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// statusReverted is how the automation service reports a simulated or
// on-chain revert of the batch.
const statusReverted = "reverted"

// Config holds the submitter settings.
type Config struct {
	BaseURL string
	// SubmitNoopWhenEmpty sends a zero-value self-call when asked to
	// submit with no transaction; some automation backends reject an
	// empty list.
	SubmitNoopWhenEmpty bool
}

// Submitter posts module transactions to the automation service.
type Submitter struct {
	client *httpclient.Client
	cfg    Config
	logger logger.LoggerInterface
}

// NewSubmitter creates an automation Submitter.
func NewSubmitter(client *httpclient.Client, cfg Config, log logger.LoggerInterface) *Submitter {
	return &Submitter{
		client: client,
		cfg:    cfg,
		logger: log,
	}
}

// Submit posts the module transaction. Non-2xx responses map to
// CodeSubmissionFailed.
func (s *Submitter) Submit(ctx context.Context, tx domain.ModuleTransaction) error {
	req := submitRequest{
		Address: tx.To.Hex(),
	}

	if len(tx.Data) > 0 {
		req.Transactions = append(req.Transactions, transactionPayload{
			To:    tx.To.Hex(),
			Value: tx.Value.String(),
			Data:  hexutil.Encode(tx.Data),
		})
	} else if s.cfg.SubmitNoopWhenEmpty {
		req.Transactions = append(req.Transactions, transactionPayload{
			To:    tx.To.Hex(),
			Value: "0",
			Data:  "0x",
		})
	}

	if len(req.Transactions) == 0 {
		s.logger.Debug(ctx, "nothing to submit")
		return nil
	}

	var result submitResponse
	resp, err := s.client.PostJSON(ctx, s.cfg.BaseURL+"/v1/tasks", req, &result)
	if err != nil {
		return apperror.New(apperror.CodeSubmissionFailed,
			apperror.WithCause(err),
			apperror.WithContext("automation submit"))
	}
	if !resp.IsSuccess() {
		return apperror.New(apperror.CodeSubmissionFailed,
			apperror.WithMessage(fmt.Sprintf("automation service returned %d", resp.StatusCode)))
	}

	// The batch is atomic: a revert means nothing moved, and the next
	// cycle rebuilds the plan from fresh on-chain state.
	if result.Status == statusReverted {
		msg := result.Error
		if msg == "" {
			msg = "automation service reported a reverted batch"
		}
		return apperror.New(apperror.CodeExecutionReverted,
			apperror.WithMessage(msg),
			apperror.WithContext(fmt.Sprintf("task %s", result.TaskID)))
	}

	s.logger.Info(ctx, "transaction submitted",
		"safe", tx.To.Hex(),
		"task_id", result.TaskID,
	)
	return nil
}
