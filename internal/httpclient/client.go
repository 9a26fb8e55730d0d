// Package httpclient provides an OTEL-instrumented HTTP client used for
// calls to external collaborator services.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/httptrace/otelhttptrace"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	defaultDialKeepAlive   = 10 * time.Second
	defaultRequestTimeout  = 10 * time.Second
	defaultMaxConnsPerHost = 5
	defaultIdleConnTimeout = 2 * time.Minute

	metricRequestCounter = "http_client_requests_total"
)

// Client is an instrumented HTTP client with a JSON convenience layer.
type Client struct {
	client         *http.Client
	requestCounter metric.Int64Counter
	providerName   string
	defaultHeaders map[string]string
}

// New creates an instrumented client.
func New(opts ...Option) (*Client, error) {
	options := newOptions(opts...)

	httpClient := &http.Client{
		Timeout: defaultRequestTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				KeepAlive: defaultDialKeepAlive,
			}).DialContext,
			MaxConnsPerHost: defaultMaxConnsPerHost,
			IdleConnTimeout: defaultIdleConnTimeout,
		},
	}
	if options.timeout > 0 {
		httpClient.Timeout = options.timeout
	}

	httpClient.Transport = otelhttp.NewTransport(
		httpClient.Transport,
		otelhttp.WithClientTrace(func(ctx context.Context) *httptrace.ClientTrace {
			return otelhttptrace.NewClientTrace(ctx)
		}),
	)

	providerName := options.providerName
	if providerName == "" {
		providerName = "default"
	}

	meter := otel.Meter(
		"instrumented_http_client",
		metric.WithInstrumentationAttributes(attribute.String("provider", providerName)),
	)
	counter, err := meter.Int64Counter(
		metricRequestCounter,
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &Client{
		client:         httpClient,
		requestCounter: counter,
		providerName:   providerName,
		defaultHeaders: options.headers,
	}, nil
}

// Response wraps the status code and raw body of a completed request.
type Response struct {
	StatusCode int
	Body       []byte
}

// IsSuccess reports whether the status code is < 400.
func (r *Response) IsSuccess() bool {
	return r.StatusCode < 400
}

// PostJSON marshals body, POSTs it to url and unmarshals a non-nil
// result from the response body.
func (c *Client) PostJSON(ctx context.Context, url string, body any, result any) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.defaultHeaders {
		req.Header.Set(k, v)
	}

	return c.do(req, result)
}

// GetJSON GETs url and unmarshals a non-nil result from the body.
func (c *Client) GetJSON(ctx context.Context, url string, result any) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.defaultHeaders {
		req.Header.Set(k, v)
	}

	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result any) (*Response, error) {
	resp, err := c.client.Do(req)

	status := "error"
	if err == nil {
		status = fmt.Sprintf("%d", resp.StatusCode)
	}
	c.requestCounter.Add(req.Context(), 1,
		metric.WithAttributes(
			attribute.String("provider", c.providerName),
			attribute.String("method", req.Method),
			attribute.String("status", status),
		),
	)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	out := &Response{StatusCode: resp.StatusCode, Body: raw}

	if result != nil && out.IsSuccess() && len(raw) > 0 {
		if err := json.Unmarshal(raw, result); err != nil {
			return out, fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return out, nil
}
