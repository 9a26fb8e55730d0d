// Package safemodule implements the Safe execution-module gateway.
package safemodule

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/0xnicolas/safe-yield-bot/business/execution/app"
	"github.com/0xnicolas/safe-yield-bot/business/execution/domain"
	"github.com/0xnicolas/safe-yield-bot/internal/apperror"
	"github.com/0xnicolas/safe-yield-bot/internal/circuitbreaker"
	"github.com/0xnicolas/safe-yield-bot/internal/logger"
	"github.com/0xnicolas/safe-yield-bot/internal/ratelimit"
)

const tracerName = "github.com/0xnicolas/safe-yield-bot/business/execution/infra/safemodule"

var _ app.ModuleGateway = (*Gateway)(nil)

// Gateway checks the Safe's module authorization and builds module
// transactions against it.
type Gateway struct {
	client    *ethclient.Client
	safe      common.Address
	module    common.Address
	multiSend common.Address

	limiter *ratelimit.Limiter
	cb      *circuitbreaker.CircuitBreaker[[]byte]
	logger  logger.LoggerInterface
	tracer  trace.Tracer
}

// Config holds the gateway construction parameters.
type Config struct {
	SafeAddress      common.Address
	ModuleAddress    common.Address
	MultiSendAddress common.Address
	Limiter          *ratelimit.Limiter
}

// NewGateway creates a Safe module gateway.
func NewGateway(client *ethclient.Client, cfg Config, log logger.LoggerInterface) *Gateway {
	g := &Gateway{
		client:    client,
		safe:      cfg.SafeAddress,
		module:    cfg.ModuleAddress,
		multiSend: cfg.MultiSendAddress,
		limiter:   cfg.Limiter,
		logger:    log,
		tracer:    otel.Tracer(tracerName),
	}
	g.cb = circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig("safe-rpc"))
	return g
}

// IsModuleEnabled asks the Safe whether the execution module is
// authorized.
func (g *Gateway) IsModuleEnabled(ctx context.Context) (bool, error) {
	ctx, span := g.tracer.Start(ctx, "safe.is_module_enabled",
		trace.WithAttributes(
			attribute.String("safe", g.safe.Hex()),
			attribute.String("module", g.module.Hex()),
		),
	)
	defer span.End()

	safeABI := domain.SafeABI()

	callData, err := safeABI.Pack("isModuleEnabled", g.module)
	if err != nil {
		return false, apperror.New(apperror.CodeCallEncodingFailed,
			apperror.WithCause(err),
			apperror.WithContext("isModuleEnabled"))
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return false, err
		}
	}

	result, err := g.cb.Execute(func() ([]byte, error) {
		return g.client.CallContract(ctx, ethereum.CallMsg{
			To:   &g.safe,
			Data: callData,
		}, nil)
	})
	if err != nil {
		span.SetStatus(codes.Error, "isModuleEnabled call failed")
		return false, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext("safe isModuleEnabled"))
	}

	outputs, err := safeABI.Unpack("isModuleEnabled", result)
	if err != nil {
		span.SetStatus(codes.Error, "decode failed")
		return false, apperror.New(apperror.CodeResponseDecodeFailed,
			apperror.WithCause(err),
			apperror.WithContext("isModuleEnabled"))
	}

	enabled, ok := outputs[0].(bool)
	if !ok {
		return false, apperror.New(apperror.CodeResponseDecodeFailed,
			apperror.WithMessage(fmt.Sprintf("isModuleEnabled returned %T, want bool", outputs[0])))
	}

	span.SetAttributes(attribute.Bool("enabled", enabled))
	span.SetStatus(codes.Ok, "module check done")
	return enabled, nil
}

// BuildModuleTransaction wraps packed batch bytes into the Safe module
// call: delegatecall into MultiSend so the inner calls execute in the
// wallet's own context.
func (g *Gateway) BuildModuleTransaction(packed []byte) (domain.ModuleTransaction, error) {
	return domain.BuildModuleTransaction(g.safe, g.multiSend, packed)
}
