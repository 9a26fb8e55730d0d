// Package ethereum provides the node connectivity adapter.
package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/0xnicolas/safe-yield-bot/business/blockchain/app"
	"github.com/0xnicolas/safe-yield-bot/business/blockchain/domain"
	"github.com/0xnicolas/safe-yield-bot/internal/apperror"
	"github.com/0xnicolas/safe-yield-bot/internal/circuitbreaker"
	"github.com/0xnicolas/safe-yield-bot/internal/logger"
)

const (
	tracerName = "github.com/0xnicolas/safe-yield-bot/business/blockchain/infra/ethereum"
	meterName  = "github.com/0xnicolas/safe-yield-bot/business/blockchain/infra/ethereum"
)

var _ app.HeadSubscriber = (*Subscriber)(nil)

// SubscriberConfig holds configuration for the head subscriber.
type SubscriberConfig struct {
	WSURL          string        // WebSocket endpoint (primary)
	HTTPURL        string        // HTTP endpoint (fallback)
	PollInterval   time.Duration // HTTP fallback polling interval
	ReconnectDelay time.Duration // Delay before reconnecting WS
	BufferSize     int           // Head channel buffer size
}

// DefaultSubscriberConfig returns sensible defaults.
func DefaultSubscriberConfig(wsURL, httpURL string) SubscriberConfig {
	return SubscriberConfig{
		WSURL:          wsURL,
		HTTPURL:        httpURL,
		PollInterval:   12 * time.Second, // ~1 block time
		ReconnectDelay: 5 * time.Second,
		BufferSize:     16,
	}
}

// subscriberMetrics holds OTEL metric instruments.
type subscriberMetrics struct {
	headsReceived   metric.Int64Counter
	subscribeErrors metric.Int64Counter
	connectionState metric.Int64Gauge
	httpFallbacks   metric.Int64Counter
}

// Subscriber implements HeadSubscriber on go-ethereum. WebSocket
// new-heads is the primary path; an HTTP poller backs it up when the
// socket drops or no WS endpoint is configured.
type Subscriber struct {
	config SubscriberConfig
	logger logger.LoggerInterface

	wsClient   *ethclient.Client
	httpClient *ethclient.Client
	clientMu   sync.RWMutex

	state      domain.ConnectionState
	stateMu    sync.RWMutex
	usingHTTP  atomic.Bool
	lastHead   atomic.Uint64
	reconnects atomic.Int32

	heads  chan *domain.Head
	done   chan struct{}
	closed atomic.Bool

	wsCB   *circuitbreaker.CircuitBreaker[*types.Header]
	httpCB *circuitbreaker.CircuitBreaker[*types.Header]

	tracer  trace.Tracer
	metrics *subscriberMetrics
}

// NewSubscriber creates a head subscriber.
func NewSubscriber(cfg SubscriberConfig, log logger.LoggerInterface) (*Subscriber, error) {
	s := &Subscriber{
		config: cfg,
		logger: log,
		state:  domain.StateDisconnected,
		heads:  make(chan *domain.Head, cfg.BufferSize),
		done:   make(chan struct{}),
		tracer: otel.Tracer(tracerName),
	}

	if err := s.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	s.initCircuitBreakers()

	return s, nil
}

func (s *Subscriber) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	s.metrics = &subscriberMetrics{}

	s.metrics.headsReceived, err = meter.Int64Counter(
		"eth_heads_received_total",
		metric.WithDescription("Total chain heads received"),
	)
	if err != nil {
		return err
	}

	s.metrics.subscribeErrors, err = meter.Int64Counter(
		"eth_subscribe_errors_total",
		metric.WithDescription("Total head subscription errors"),
	)
	if err != nil {
		return err
	}

	s.metrics.connectionState, err = meter.Int64Gauge(
		"eth_connection_state",
		metric.WithDescription("Node connection state (0=disconnected, 1=connecting, 2=connected, 3=reconnecting)"),
	)
	if err != nil {
		return err
	}

	s.metrics.httpFallbacks, err = meter.Int64Counter(
		"eth_http_fallback_total",
		metric.WithDescription("Times the HTTP polling fallback was engaged"),
	)
	if err != nil {
		return err
	}

	return nil
}

func (s *Subscriber) initCircuitBreakers() {
	logChange := func(name string, from, to gobreaker.State) {
		s.logger.Info(context.Background(), "circuit breaker state change",
			"breaker", name, "from", from.String(), "to", to.String())
	}

	wsCfg := circuitbreaker.DefaultConfig("eth-ws")
	wsCfg.OnStateChange = logChange
	s.wsCB = circuitbreaker.New[*types.Header](wsCfg)

	httpCfg := circuitbreaker.DefaultConfig("eth-http")
	httpCfg.OnStateChange = logChange
	s.httpCB = circuitbreaker.New[*types.Header](httpCfg)
}

// Subscribe starts listening for new heads and returns the channel.
func (s *Subscriber) Subscribe(ctx context.Context) (<-chan *domain.Head, error) {
	ctx, span := s.tracer.Start(ctx, "eth.subscribe")
	defer span.End()

	if s.closed.Load() {
		return nil, errors.New("subscriber is closed")
	}

	s.setState(domain.StateConnecting)

	if err := s.connectWS(ctx); err != nil {
		s.logger.Warn(ctx, "ws connection failed, trying http fallback", "error", err)
		span.AddEvent("ws_failed_trying_http")

		if err := s.connectHTTP(ctx); err != nil {
			span.SetStatus(codes.Error, "both connections failed")
			s.setState(domain.StateDisconnected)
			return nil, apperror.New(apperror.CodeEthereumConnectionFailed,
				apperror.WithCause(err),
				apperror.WithContext("failed to connect via WS and HTTP"))
		}

		s.usingHTTP.Store(true)
		s.metrics.httpFallbacks.Add(ctx, 1)
		go s.runHTTPPoller(ctx)
	} else {
		go s.runWSSubscription(ctx)
	}

	s.setState(domain.StateConnected)
	span.SetStatus(codes.Ok, "subscribed")

	return s.heads, nil
}

func (s *Subscriber) connectWS(ctx context.Context) error {
	if s.config.WSURL == "" {
		return errors.New("ws url not configured")
	}

	client, err := ethclient.DialContext(ctx, s.config.WSURL)
	if err != nil {
		return fmt.Errorf("dial ws: %w", err)
	}

	s.clientMu.Lock()
	s.wsClient = client
	s.clientMu.Unlock()
	return nil
}

func (s *Subscriber) connectHTTP(ctx context.Context) error {
	if s.config.HTTPURL == "" {
		return errors.New("http url not configured")
	}

	client, err := ethclient.DialContext(ctx, s.config.HTTPURL)
	if err != nil {
		return fmt.Errorf("dial http: %w", err)
	}

	s.clientMu.Lock()
	s.httpClient = client
	s.clientMu.Unlock()
	return nil
}

func (s *Subscriber) runWSSubscription(ctx context.Context) {
	headers := make(chan *types.Header, s.config.BufferSize)

	s.clientMu.RLock()
	client := s.wsClient
	s.clientMu.RUnlock()

	if client == nil {
		s.handleWSDisconnect(ctx)
		return
	}

	sub, err := client.SubscribeNewHead(ctx, headers)
	if err != nil {
		s.logger.Error(ctx, "subscribe new heads failed", "error", err)
		s.metrics.subscribeErrors.Add(ctx, 1)
		s.handleWSDisconnect(ctx)
		return
	}
	defer sub.Unsubscribe()

	s.logger.Info(ctx, "subscribed to new heads via ws")

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case err := <-sub.Err():
			if err != nil {
				s.logger.Error(ctx, "subscription error", "error", err)
				s.metrics.subscribeErrors.Add(ctx, 1)
			}
			s.handleWSDisconnect(ctx)
			return
		case header := <-headers:
			if header != nil {
				s.emitHeader(ctx, header)
			}
		}
	}
}

// handleWSDisconnect retries the socket once, then degrades to HTTP
// polling for the rest of the session.
func (s *Subscriber) handleWSDisconnect(ctx context.Context) {
	if s.closed.Load() {
		return
	}

	s.setState(domain.StateReconnecting)
	s.reconnects.Add(1)

	time.Sleep(s.config.ReconnectDelay)
	if s.closed.Load() {
		return
	}

	if err := s.connectWS(ctx); err == nil {
		s.usingHTTP.Store(false)
		s.setState(domain.StateConnected)
		go s.runWSSubscription(ctx)
		return
	}

	s.logger.Warn(ctx, "ws reconnect failed, switching to http polling")

	s.clientMu.RLock()
	haveHTTP := s.httpClient != nil
	s.clientMu.RUnlock()

	if !haveHTTP {
		if err := s.connectHTTP(ctx); err != nil {
			s.logger.Error(ctx, "http fallback connection failed", "error", err)
			s.setState(domain.StateDisconnected)
			return
		}
	}

	s.usingHTTP.Store(true)
	s.metrics.httpFallbacks.Add(ctx, 1)
	s.setState(domain.StateConnected)
	go s.runHTTPPoller(ctx)
}

func (s *Subscriber) runHTTPPoller(ctx context.Context) {
	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	s.logger.Info(ctx, "starting http polling fallback", "interval", s.config.PollInterval)

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pollLatestHead(ctx)
		}
	}
}

func (s *Subscriber) pollLatestHead(ctx context.Context) {
	s.clientMu.RLock()
	client := s.httpClient
	s.clientMu.RUnlock()

	if client == nil {
		return
	}

	header, err := s.httpCB.Execute(func() (*types.Header, error) {
		return client.HeaderByNumber(ctx, nil) // nil = latest
	})
	if err != nil {
		s.logger.Error(ctx, "http poll failed", "error", err)
		s.metrics.subscribeErrors.Add(ctx, 1)
		return
	}

	// The poller re-reads the same head until a new block lands.
	if header.Number.Uint64() <= s.lastHead.Load() {
		return
	}

	s.emitHeader(ctx, header)
}

// emitHeader converts and emits a header without blocking: watch mode
// only needs the freshest head, so a full buffer drops instead of
// backing up the feed.
func (s *Subscriber) emitHeader(ctx context.Context, header *types.Header) {
	head := headerToHead(header)
	s.lastHead.Store(head.Number)

	select {
	case s.heads <- head:
		s.metrics.headsReceived.Add(ctx, 1)
		s.logger.Debug(ctx, "head received", "number", head.Number)
	default:
		s.logger.Warn(ctx, "head dropped, buffer full", "number", head.Number)
	}
}

func headerToHead(header *types.Header) *domain.Head {
	return &domain.Head{
		Number:     header.Number.Uint64(),
		Hash:       header.Hash(),
		ParentHash: header.ParentHash,
		Timestamp:  time.Unix(int64(header.Time), 0),
	}
}

// activeClient picks the client matching the current mode.
func (s *Subscriber) activeClient() (*ethclient.Client, *circuitbreaker.CircuitBreaker[*types.Header]) {
	s.clientMu.RLock()
	defer s.clientMu.RUnlock()

	if s.wsClient != nil && !s.usingHTTP.Load() {
		return s.wsClient, s.wsCB
	}
	return s.httpClient, s.httpCB
}

// LatestHead retrieves the most recent head.
func (s *Subscriber) LatestHead(ctx context.Context) (*domain.Head, error) {
	ctx, span := s.tracer.Start(ctx, "eth.latest_head")
	defer span.End()

	client, cb := s.activeClient()
	if client == nil {
		return nil, apperror.New(apperror.CodeEthereumConnectionFailed,
			apperror.WithContext("no ethereum client connected"))
	}

	header, err := cb.Execute(func() (*types.Header, error) {
		return client.HeaderByNumber(ctx, nil)
	})
	if err != nil {
		span.SetStatus(codes.Error, "fetch failed")
		return nil, apperror.New(apperror.CodeEthereumRPCError,
			apperror.WithCause(err),
			apperror.WithContext("failed to fetch latest head"))
	}

	span.SetAttributes(attribute.Int64("head", int64(header.Number.Uint64())))
	span.SetStatus(codes.Ok, "fetched")
	return headerToHead(header), nil
}

// ChainID returns the connected node's chain id.
func (s *Subscriber) ChainID(ctx context.Context) (*big.Int, error) {
	client, _ := s.activeClient()
	if client == nil {
		return nil, apperror.New(apperror.CodeEthereumConnectionFailed,
			apperror.WithContext("no ethereum client connected"))
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, apperror.New(apperror.CodeEthereumRPCError,
			apperror.WithCause(err),
			apperror.WithContext("failed to get chain id"))
	}
	return chainID, nil
}

// State returns the current connection state.
func (s *Subscriber) State() domain.ConnectionState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// Status returns detailed connection status.
func (s *Subscriber) Status() domain.ConnectionStatus {
	return domain.ConnectionStatus{
		State:      s.State(),
		LastHead:   s.lastHead.Load(),
		LastUpdate: time.Now(),
		Reconnects: int(s.reconnects.Load()),
		UsingHTTP:  s.usingHTTP.Load(),
	}
}

// Close gracefully closes the subscriber.
func (s *Subscriber) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.logger.Info(context.Background(), "closing ethereum subscriber")
	close(s.done)

	s.clientMu.Lock()
	if s.wsClient != nil {
		s.wsClient.Close()
		s.wsClient = nil
	}
	if s.httpClient != nil {
		s.httpClient.Close()
		s.httpClient = nil
	}
	s.clientMu.Unlock()

	close(s.heads)
	s.setState(domain.StateDisconnected)
	return nil
}

func (s *Subscriber) setState(state domain.ConnectionState) {
	s.stateMu.Lock()
	s.state = state
	s.stateMu.Unlock()

	var v int64
	switch state {
	case domain.StateConnecting:
		v = 1
	case domain.StateConnected:
		v = 2
	case domain.StateReconnecting:
		v = 3
	}
	s.metrics.connectionState.Record(context.Background(), v)
}
