// Package aave implements the lending ports for Aave V3.
package aave

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
	"github.com/0xnicolas/safe-yield-bot/internal/cache"
	"github.com/0xnicolas/safe-yield-bot/internal/circuitbreaker"
	"github.com/0xnicolas/safe-yield-bot/internal/logger"
	"github.com/0xnicolas/safe-yield-bot/internal/ratelimit"
)

const (
	tracerName = "github.com/0xnicolas/safe-yield-bot/business/lending/infra/aave"
	meterName  = "github.com/0xnicolas/safe-yield-bot/business/lending/infra/aave"

	// aToken addresses are immutable per reserve; the TTL only bounds
	// staleness after a protocol upgrade.
	receiptTokenTTL = 1 * time.Hour
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

// Provider reads Aave V3 state for one asset. It only needs eth_call,
// so it takes the narrow caller interface rather than a full client.
type Provider struct {
	client       ethereum.ContractCaller
	pool         common.Address
	dataProvider common.Address
	ast          *asset.Asset

	poolABI    abi.ABI
	dpABI      abi.ABI
	balanceABI abi.ABI

	receiptTokens *cache.Cache[common.Address, common.Address]

	limiter *ratelimit.Limiter
	cb      *circuitbreaker.CircuitBreaker[[]byte]
	logger  logger.LoggerInterface

	tracer  trace.Tracer
	metrics *providerMetrics
}

// Config holds the Aave provider construction parameters.
type Config struct {
	PoolAddress         common.Address
	DataProviderAddress common.Address
	Asset               *asset.Asset
	Limiter             *ratelimit.Limiter
}

// NewProvider creates an Aave V3 provider.
func NewProvider(client ethereum.ContractCaller, cfg Config, log logger.LoggerInterface) (*Provider, error) {
	poolABI, err := abi.JSON(strings.NewReader(PoolABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool ABI: %w", err)
	}
	dpABI, err := abi.JSON(strings.NewReader(DataProviderABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse data provider ABI: %w", err)
	}
	balanceABI, err := abi.JSON(strings.NewReader(ERC20BalanceABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance ABI: %w", err)
	}

	p := &Provider{
		client:        client,
		pool:          cfg.PoolAddress,
		dataProvider:  cfg.DataProviderAddress,
		ast:           cfg.Asset,
		poolABI:       poolABI,
		dpABI:         dpABI,
		balanceABI:    balanceABI,
		receiptTokens: cache.New[common.Address, common.Address](receiptTokenTTL),
		limiter:       cfg.Limiter,
		logger:        log,
		tracer:        otel.Tracer(tracerName),
	}

	p.cb = circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig("aave-rpc"))

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
		"aave_rate_reads_total",
		metric.WithDescription("Total Aave rate read attempts"),
	)
	if err != nil {
		return err
	}

	p.metrics.readErrors, err = meter.Int64Counter(
		"aave_read_errors_total",
		metric.WithDescription("Total Aave read errors"),
	)
	if err != nil {
		return err
	}

	p.metrics.readLatency, err = meter.Float64Histogram(
		"aave_read_latency_ms",
		metric.WithDescription("Aave read latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	p.metrics.supplyRateBp, err = meter.Int64Gauge(
		"aave_supply_rate_bp",
		metric.WithDescription("Current Aave supply rate in basis points"),
	)
	if err != nil {
		return err
	}

	return nil
}

// GetRate reads Pool.getReserveData and normalizes currentLiquidityRate
// (ray, already annualized) to basis points. An unlisted asset returns
// a zero rate.
func (p *Provider) GetRate(ctx context.Context) (domain.RateQuote, error) {
	ctx, span := p.tracer.Start(ctx, "aave.get_rate",
		trace.WithAttributes(attribute.String("asset", p.ast.Address().Hex())),
	)
	defer span.End()

	start := time.Now()
	p.metrics.rateReads.Add(ctx, 1)

	result, err := p.call(ctx, p.pool, p.poolABI, "getReserveData", p.ast.Address())
	p.metrics.readLatency.Record(ctx, float64(time.Since(start).Milliseconds()))
	if err != nil {
		p.metrics.readErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, "reserve data call failed")
		return domain.RateQuote{}, err
	}

	// Empty returndata is the unsupported-reserve signature: the asset
	// simply is not listed, which makes it permanently unattractive.
	if len(result) == 0 {
		span.AddEvent("reserve_not_listed")
		return p.quote(ctx, 0), nil
	}

	reserve, err := p.decodeReserveData(result)
	if err != nil {
		p.metrics.readErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, "decode failed")
		return domain.RateQuote{}, apperror.New(apperror.CodeResponseDecodeFailed,
			apperror.WithCause(err),
			apperror.WithContext("aave getReserveData"))
	}

	bps := domain.BpsFromRay(reserve.CurrentLiquidityRate)
	span.SetAttributes(attribute.Int64("rate_bp", bps))
	span.SetStatus(codes.Ok, "rate read")

	return p.quote(ctx, bps), nil
}

func (p *Provider) quote(ctx context.Context, bps int64) domain.RateQuote {
	p.metrics.supplyRateBp.Record(ctx, bps)
	return domain.RateQuote{
		Protocol: domain.ProtocolAave,
		Bps:      bps,
		AsOf:     time.Now().UTC(),
	}
}

func (p *Provider) decodeReserveData(result []byte) (*ReserveData, error) {
	outputs, err := p.poolABI.Unpack("getReserveData", result)
	if err != nil {
		return nil, err
	}
	if len(outputs) != 1 {
		return nil, fmt.Errorf("unexpected output length: %d", len(outputs))
	}
	reserve := abi.ConvertType(outputs[0], new(ReserveData)).(*ReserveData)
	return reserve, nil
}

// GetPosition resolves the reserve's aToken through the protocol data
// provider, then reads the wallet's aToken balance. A zero aToken
// address (asset not listed) is a zero position, not an error.
func (p *Provider) GetPosition(ctx context.Context, wallet common.Address) (domain.Position, error) {
	ctx, span := p.tracer.Start(ctx, "aave.get_position",
		trace.WithAttributes(
			attribute.String("wallet", wallet.Hex()),
			attribute.String("asset", p.ast.Address().Hex()),
		),
	)
	defer span.End()

	aToken, err := p.resolveReceiptToken(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "receipt token lookup failed")
		return domain.Position{}, err
	}

	if aToken == (common.Address{}) {
		span.AddEvent("reserve_not_listed")
		return domain.Position{
			Protocol: domain.ProtocolAave,
			Supplied: asset.Zero(p.ast),
		}, nil
	}

	result, err := p.call(ctx, aToken, p.balanceABI, "balanceOf", wallet)
	if err != nil {
		span.SetStatus(codes.Error, "balance call failed")
		return domain.Position{}, err
	}

	outputs, err := p.balanceABI.Unpack("balanceOf", result)
	if err != nil {
		span.SetStatus(codes.Error, "decode failed")
		return domain.Position{}, apperror.New(apperror.CodeResponseDecodeFailed,
			apperror.WithCause(err),
			apperror.WithContext("aToken balanceOf"))
	}

	balance := outputs[0].(*big.Int)
	span.SetAttributes(attribute.String("supplied", balance.String()))
	span.SetStatus(codes.Ok, "position read")

	return domain.Position{
		Protocol: domain.ProtocolAave,
		Supplied: asset.NewAmount(p.ast, balance),
	}, nil
}

// resolveReceiptToken looks up the aToken address, caching it because
// it is stable across cycles (unlike rates and balances).
func (p *Provider) resolveReceiptToken(ctx context.Context) (common.Address, error) {
	if aToken, ok := p.receiptTokens.Get(p.ast.Address()); ok {
		return aToken, nil
	}

	result, err := p.call(ctx, p.dataProvider, p.dpABI, "getReserveTokensAddresses", p.ast.Address())
	if err != nil {
		return common.Address{}, err
	}

	// Some data provider deployments return empty bytes for unknown
	// reserves instead of zero addresses.
	if len(result) == 0 {
		p.receiptTokens.Set(p.ast.Address(), common.Address{})
		return common.Address{}, nil
	}

	outputs, err := p.dpABI.Unpack("getReserveTokensAddresses", result)
	if err != nil {
		return common.Address{}, apperror.New(apperror.CodeResponseDecodeFailed,
			apperror.WithCause(err),
			apperror.WithContext("getReserveTokensAddresses"))
	}

	aToken := outputs[0].(common.Address)
	p.receiptTokens.Set(p.ast.Address(), aToken)

	p.logger.Debug(ctx, "resolved aToken",
		"asset", p.ast.Address().Hex(),
		"a_token", aToken.Hex(),
	)

	return aToken, nil
}

// call executes a rate-limited, breaker-protected eth_call.
func (p *Provider) call(ctx context.Context, to common.Address, contractABI abi.ABI, method string, args ...interface{}) ([]byte, error) {
	callData, err := contractABI.Pack(method, args...)
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
			To:   &to,
			Data: callData,
		}, nil)
	})
	if err != nil {
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("aave %s", method)))
	}

	return result, nil
}
