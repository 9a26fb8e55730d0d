package app

import (
	"context"

	"github.com/0xnicolas/safe-yield-bot/business/execution/domain"
	rebalanceDomain "github.com/0xnicolas/safe-yield-bot/business/rebalance/domain"
	"github.com/0xnicolas/safe-yield-bot/internal/apperror"
	"github.com/0xnicolas/safe-yield-bot/internal/logger"
)

// ExecutionService turns a plan into a submitted module transaction:
// encode the batch, check the module authorization, submit. Atomicity
// of the inner calls is the MultiSend contract's property; a failed
// submission is never partially retried here.
type ExecutionService struct {
	gateway   ModuleGateway
	submitter Submitter
	logger    logger.LoggerInterface
}

// NewExecutionService creates an ExecutionService.
func NewExecutionService(gateway ModuleGateway, submitter Submitter, log logger.LoggerInterface) *ExecutionService {
	return &ExecutionService{
		gateway:   gateway,
		submitter: submitter,
		logger:    log,
	}
}

// Execute submits a plan through the Safe module. An empty plan is a
// success and submits nothing.
func (s *ExecutionService) Execute(ctx context.Context, plan rebalanceDomain.RebalancePlan) error {
	if plan.Empty() {
		s.logger.Info(ctx, "empty plan, nothing to execute")
		return nil
	}

	enabled, err := s.gateway.IsModuleEnabled(ctx)
	if err != nil {
		return err
	}
	if !enabled {
		// Enabling a module needs a Safe owner transaction; nothing
		// this service can retry.
		return apperror.New(apperror.CodeModuleNotEnabled,
			apperror.WithMessage("execution module is not enabled on the safe"),
		)
	}

	packed := domain.EncodeMultiSend(plan.Calls)
	tx, err := s.gateway.BuildModuleTransaction(packed)
	if err != nil {
		return err
	}

	if err := s.submitter.Submit(ctx, tx); err != nil {
		return err
	}

	s.logger.Info(ctx, "rebalance submitted",
		"from", plan.From.String(),
		"to", plan.To.String(),
		"amount", plan.Amount.String(),
		"calls", len(plan.Calls),
	)
	return nil
}
