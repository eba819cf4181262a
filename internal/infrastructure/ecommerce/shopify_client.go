package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/nemean-dev/cdl-admin/internal/domain/integration"
)

// maxResponseSize is the maximum allowed GraphQL response size (10MB)
const maxResponseSize = 10 * 1024 * 1024

const shopifyTracerName = "github.com/nemean-dev/cdl-admin/internal/infrastructure/ecommerce"

// Ensure ShopifyClient implements QueryExecutor
var _ integration.QueryExecutor = (*ShopifyClient)(nil)

// ShopifyMetrics receives executor measurements
type ShopifyMetrics interface {
	RecordAttempt(ctx context.Context, outcome string, attempt int)
	RecordThrottleWait(ctx context.Context, wait time.Duration)
}

type noopShopifyMetrics struct{}

func (noopShopifyMetrics) RecordAttempt(context.Context, string, int)         {}
func (noopShopifyMetrics) RecordThrottleWait(context.Context, time.Duration) {}

// ShopifyClient is the resilient GraphQL executor for one store context.
// Each Execute call retries transport failures per the config's RetryPolicy
// and honors the throttle wait reported by the previous response.
type ShopifyClient struct {
	config     ShopifyConfig
	httpClient *http.Client
	throttle   *throttleTracker
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
	logger     *zap.Logger
	metrics    ShopifyMetrics
	tracer     trace.Tracer
}

// ShopifyClientOption is a functional option for configuring ShopifyClient
type ShopifyClientOption func(*ShopifyClient)

// WithShopifyHTTPClient sets a custom HTTP client
func WithShopifyHTTPClient(client *http.Client) ShopifyClientOption {
	return func(c *ShopifyClient) {
		c.httpClient = client
	}
}

// WithShopifyLogger sets the logger
func WithShopifyLogger(logger *zap.Logger) ShopifyClientOption {
	return func(c *ShopifyClient) {
		c.logger = logger
	}
}

// WithShopifyMetrics sets the metrics recorder
func WithShopifyMetrics(m ShopifyMetrics) ShopifyClientOption {
	return func(c *ShopifyClient) {
		c.metrics = m
	}
}

// withClock replaces the clock and sleeper
func withClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) ShopifyClientOption {
	return func(c *ShopifyClient) {
		c.now = now
		c.sleep = sleep
	}
}

// NewShopifyClient creates an executor bound to the given store context
func NewShopifyClient(config *ShopifyConfig, opts ...ShopifyClientOption) (*ShopifyClient, error) {
	if config == nil {
		return nil, ErrShopifyConfigMissingStore
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &ShopifyClient{
		config:     *config,
		httpClient: newShopifyHTTPClient(config.ConnectTimeout, config.ReadTimeout),
		now:        time.Now,
		sleep:      sleepContext,
		logger:     zap.NewNop(),
		metrics:    noopShopifyMetrics{},
		tracer:     otel.Tracer(shopifyTracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.throttle = newThrottleTracker(c.config.DefaultThrottleWait, c.now)

	return c, nil
}

// newShopifyHTTPClient builds a client with separate connect and read timeouts
func newShopifyHTTPClient(connect, read time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: connect, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   connect,
		ResponseHeaderTimeout: read,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   connect + read,
	}
}

// Config returns a copy of the store context
func (c *ShopifyClient) Config() ShopifyConfig {
	return c.config
}

// Execute issues a GraphQL request. Retryable failures are retried until
// their class cap; the final failure is returned as *integration.QueryError.
func (c *ShopifyClient) Execute(ctx context.Context, req integration.Request) (*integration.Response, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("%w: empty query", integration.ErrMalformedQuery)
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to encode request: %w", err)
	}

	ctx, span := c.tracer.Start(ctx, "shopify.graphql.execute", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	for attempt := 1; ; attempt++ {
		if wait := c.throttle.pending(); wait > 0 {
			c.logger.Info("Waiting for throttle budget before request",
				zap.Duration("wait", wait),
				zap.Int("attempt", attempt),
			)
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
		}

		res := c.roundTrip(ctx, payload)
		if res.Err != nil && ctx.Err() != nil {
			return nil, ctx.Err()
		}

		outcome := classifyAttempt(res)
		if wait := c.throttle.observe(outcome.Response.Cost()); wait > 0 {
			c.metrics.RecordThrottleWait(ctx, wait)
			c.logger.Info("Insufficient throttle budget, delaying next request",
				zap.Duration("wait", wait),
			)
		}

		state, delay := c.config.Retry.decide(outcome, attempt)
		c.metrics.RecordAttempt(ctx, outcomeLabel(outcome), attempt)

		switch state {
		case stateSucceeded:
			span.SetAttributes(attribute.Int("shopify.attempts", attempt))
			return outcome.Response, nil

		case stateRetrying:
			c.logger.Warn("Shopify request failed, retrying",
				zap.String("class", outcome.Class.String()),
				zap.Int("status", res.StatusCode),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(outcome.Cause),
			)
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}

		default:
			qerr := &integration.QueryError{
				Class:      outcome.Class,
				StatusCode: res.StatusCode,
				Attempts:   attempt,
				Cause:      outcome.Cause,
			}
			if outcome.Response != nil {
				qerr.Errors = outcome.Response.Errors
			}
			c.logFailure(qerr)
			span.SetAttributes(attribute.Int("shopify.attempts", attempt))
			span.RecordError(qerr)
			span.SetStatus(codes.Error, outcome.Class.String())
			return nil, qerr
		}
	}
}

// roundTrip performs one HTTP POST and reads the body
func (c *ShopifyClient) roundTrip(ctx context.Context, payload []byte) transportResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint(), bytes.NewReader(payload))
	if err != nil {
		return transportResult{Err: fmt.Errorf("shopify: failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(ShopifyAccessTokenHeader, c.config.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportResult{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return transportResult{StatusCode: resp.StatusCode, Err: err}
	}

	return transportResult{StatusCode: resp.StatusCode, Body: body}
}

func (c *ShopifyClient) logFailure(qerr *integration.QueryError) {
	fields := []zap.Field{
		zap.String("class", qerr.Class.String()),
		zap.Int("status", qerr.StatusCode),
		zap.Int("attempts", qerr.Attempts),
	}
	if qerr.Cause != nil {
		fields = append(fields, zap.Error(qerr.Cause))
	}
	if qerr.Class == integration.FailureProtocol {
		fields = append(fields, zap.Any("errors", qerr.Errors))
	}
	c.logger.Error("Shopify request failed", fields...)
}

func outcomeLabel(o attemptOutcome) string {
	if o.Class == "" {
		return "success"
	}
	return o.Class.String()
}
