// Package compound implements the lending ports for Compound V3 (Comet).
package compound

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/0xnicolas/safe-yield-bot/business/lending/app"
	"github.com/0xnicolas/safe-yield-bot/business/lending/domain"
	"github.com/0xnicolas/safe-yield-bot/internal/apperror"
	"github.com/0xnicolas/safe-yield-bot/internal/asset"
	"github.com/0xnicolas/safe-yield-bot/internal/circuitbreaker"
	"github.com/0xnicolas/safe-yield-bot/internal/logger"
	"github.com/0xnicolas/safe-yield-bot/internal/ratelimit"
)

const (
	tracerName = "github.com/0xnicolas/safe-yield-bot/business/lending/infra/compound"
	meterName  = "github.com/0xnicolas/safe-yield-bot/business/lending/infra/compound"
)

// Ensure Provider implements the lending ports.
var (
	_ app.RateProvider   = (*Provider)(nil)
	_ app.PositionReader = (*Provider)(nil)
)

// providerMetrics holds OTEL metric instruments.
type providerMetrics struct {
	rateReads    metric.Int64Counter
	readErrors   metric.Int64Counter
	readLatency  metric.Float64Histogram
	supplyRateBp metric.Int64Gauge
}

// Provider reads a single Comet market. It only needs eth_call, so it
// takes the narrow caller interface rather than a full client.
type Provider struct {
	client ethereum.ContractCaller
	comet  common.Address
	ast    *asset.Asset

	cometABI abi.ABI

	limiter *ratelimit.Limiter
	cb      *circuitbreaker.CircuitBreaker[[]byte]
	logger  logger.LoggerInterface

	tracer  trace.Tracer
	metrics *providerMetrics
}

// Config holds the Compound provider construction parameters.
type Config struct {
	CometAddress common.Address
	Asset        *asset.Asset
	Limiter      *ratelimit.Limiter
}

// NewProvider creates a Compound V3 provider.
func NewProvider(client ethereum.ContractCaller, cfg Config, log logger.LoggerInterface) (*Provider, error) {
	cometABI, err := abi.JSON(strings.NewReader(CometABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse comet ABI: %w", err)
	}

	p := &Provider{
		client:   client,
		comet:    cfg.CometAddress,
		ast:      cfg.Asset,
		cometABI: cometABI,
		limiter:  cfg.Limiter,
		logger:   log,
		tracer:   otel.Tracer(tracerName),
	}

	p.cb = circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig("compound-rpc"))

	if err := p.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	return p, nil
}

func (p *Provider) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	p.metrics = &providerMetrics{}

	p.metrics.rateReads, err = meter.Int64Counter(
		"compound_rate_reads_total",
		metric.WithDescription("Total Compound rate read attempts"),
	)
	if err != nil {
		return err
	}

	p.metrics.readErrors, err = meter.Int64Counter(
		"compound_read_errors_total",
		metric.WithDescription("Total Compound read errors"),
	)
	if err != nil {
		return err
	}

	p.metrics.readLatency, err = meter.Float64Histogram(
		"compound_read_latency_ms",
		metric.WithDescription("Compound read latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	p.metrics.supplyRateBp, err = meter.Int64Gauge(
		"compound_supply_rate_bp",
		metric.WithDescription("Current Compound supply rate in basis points"),
	)
	if err != nil {
		return err
	}

	return nil
}

// GetRate reads the current utilization, feeds it into getSupplyRate
// and annualizes the per-second wad rate into basis points. A market
// that answers with empty returndata is treated as unlisted (zero rate).
func (p *Provider) GetRate(ctx context.Context) (domain.RateQuote, error) {
	ctx, span := p.tracer.Start(ctx, "compound.get_rate",
		trace.WithAttributes(attribute.String("comet", p.comet.Hex())),
	)
	defer span.End()

	start := time.Now()
	p.metrics.rateReads.Add(ctx, 1)
	defer func() {
		p.metrics.readLatency.Record(ctx, float64(time.Since(start).Milliseconds()))
	}()

	utilization, ok, err := p.readUtilization(ctx)
	if err != nil {
		p.metrics.readErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, "utilization read failed")
		return domain.RateQuote{}, err
	}
	if !ok {
		span.AddEvent("market_not_listed")
		return p.quote(ctx, 0), nil
	}

	perSecond, ok, err := p.readSupplyRate(ctx, utilization)
	if err != nil {
		p.metrics.readErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, "supply rate read failed")
		return domain.RateQuote{}, err
	}
	if !ok {
		span.AddEvent("market_not_listed")
		return p.quote(ctx, 0), nil
	}

	bps := domain.BpsFromPerSecond(perSecond)
	span.SetAttributes(
		attribute.String("utilization", utilization.String()),
		attribute.Int64("rate_bp", bps),
	)
	span.SetStatus(codes.Ok, "rate read")

	return p.quote(ctx, bps), nil
}

func (p *Provider) quote(ctx context.Context, bps int64) domain.RateQuote {
	p.metrics.supplyRateBp.Record(ctx, bps)
	return domain.RateQuote{
		Protocol: domain.ProtocolCompound,
		Bps:      bps,
		AsOf:     time.Now().UTC(),
	}
}

func (p *Provider) readUtilization(ctx context.Context) (*big.Int, bool, error) {
	result, err := p.call(ctx, "getUtilization")
	if err != nil {
		return nil, false, err
	}
	if len(result) == 0 {
		return nil, false, nil
	}

	outputs, err := p.cometABI.Unpack("getUtilization", result)
	if err != nil {
		return nil, false, apperror.New(apperror.CodeResponseDecodeFailed,
			apperror.WithCause(err),
			apperror.WithContext("comet getUtilization"))
	}
	return outputs[0].(*big.Int), true, nil
}

func (p *Provider) readSupplyRate(ctx context.Context, utilization *big.Int) (*big.Int, bool, error) {
	result, err := p.call(ctx, "getSupplyRate", utilization)
	if err != nil {
		return nil, false, err
	}
	if len(result) == 0 {
		return nil, false, nil
	}

	outputs, err := p.cometABI.Unpack("getSupplyRate", result)
	if err != nil {
		return nil, false, apperror.New(apperror.CodeResponseDecodeFailed,
			apperror.WithCause(err),
			apperror.WithContext("comet getSupplyRate"))
	}
	return new(big.Int).SetUint64(outputs[0].(uint64)), true, nil
}

// GetPosition reads the wallet's supplied base balance directly from
// the market contract.
func (p *Provider) GetPosition(ctx context.Context, wallet common.Address) (domain.Position, error) {
	ctx, span := p.tracer.Start(ctx, "compound.get_position",
		trace.WithAttributes(
			attribute.String("wallet", wallet.Hex()),
			attribute.String("comet", p.comet.Hex()),
		),
	)
	defer span.End()

	result, err := p.call(ctx, "balanceOf", wallet)
	if err != nil {
		span.SetStatus(codes.Error, "balance call failed")
		return domain.Position{}, err
	}

	if len(result) == 0 {
		span.AddEvent("market_not_listed")
		return domain.Position{
			Protocol: domain.ProtocolCompound,
			Supplied: asset.Zero(p.ast),
		}, nil
	}

	outputs, err := p.cometABI.Unpack("balanceOf", result)
	if err != nil {
		span.SetStatus(codes.Error, "decode failed")
		return domain.Position{}, apperror.New(apperror.CodeResponseDecodeFailed,
			apperror.WithCause(err),
			apperror.WithContext("comet balanceOf"))
	}

	balance := outputs[0].(*big.Int)
	span.SetAttributes(attribute.String("supplied", balance.String()))
	span.SetStatus(codes.Ok, "position read")

	return domain.Position{
		Protocol: domain.ProtocolCompound,
		Supplied: asset.NewAmount(p.ast, balance),
	}, nil
}

// call executes a rate-limited, breaker-protected eth_call on the Comet.
func (p *Provider) call(ctx context.Context, method string, args ...interface{}) ([]byte, error) {
	callData, err := p.cometABI.Pack(method, args...)
	if err != nil {
		return nil, apperror.New(apperror.CodeCallEncodingFailed,
			apperror.WithCause(err),
			apperror.WithContext(method))
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	result, err := p.cb.Execute(func() ([]byte, error) {
		return p.client.CallContract(ctx, ethereum.CallMsg{
			To:   &p.comet,
			Data: callData,
		}, nil)
	})
	if err != nil {
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("compound %s", method)))
	}

	return result, nil
}
