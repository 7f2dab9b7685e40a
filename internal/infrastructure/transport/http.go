package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	domainerrors "github.com/cassiomorais/pawapay/internal/domain/errors"
	"github.com/cassiomorais/pawapay/internal/gateway"
	"github.com/cassiomorais/pawapay/internal/infrastructure/config"
	"github.com/cassiomorais/pawapay/internal/infrastructure/observability"
	"github.com/cassiomorais/pawapay/pkg/retry"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxBodySize caps how much of a gateway response is read.
const maxBodySize = 4 << 20

// HTTPTransport sends gateway exchanges over HTTP. Every operation has its
// own circuit breaker; inside it, failed attempts are retried with a fixed
// delay when the failure is a network error, a 5xx or a 429.
type HTTPTransport struct {
	client  *http.Client
	retry   retry.Config
	breaker config.BreakerConfig
	metrics *observability.Metrics
	logger  zerolog.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[*gateway.Response]
}

type Option func(*HTTPTransport)

func WithMetrics(m *observability.Metrics) Option {
	return func(t *HTTPTransport) {
		t.metrics = m
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(t *HTTPTransport) {
		t.logger = logger
	}
}

// WithHTTPClient replaces the instrumented default client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *HTTPTransport) {
		t.client = c
	}
}

func NewHTTPTransport(cfg config.GatewayConfig, opts ...Option) *HTTPTransport {
	t := &HTTPTransport{
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return "gateway " + r.Method + " " + r.URL.Path
				}),
			),
		},
		retry:    retry.FixedConfig(cfg.RetryTimes, cfg.RetrySleep),
		breaker:  cfg.CircuitBreaker,
		logger:   zerolog.Nop(),
		breakers: make(map[string]*gobreaker.CircuitBreaker[*gateway.Response]),
	}
	for _, opt := range opts {
		opt(t)
	}

	t.retry.RetryIf = Retryable
	return t
}

func (t *HTTPTransport) Do(ctx context.Context, req *gateway.Request) (*gateway.Response, error) {
	start := time.Now()
	cb := t.breakerFor(req.Operation)

	cfg := t.retry
	cfg.OnRetry = func(n uint, err error) {
		t.logger.Warn().Err(err).Str("operation", req.Operation).Uint("attempt", n+1).Msg("Retrying gateway request")
		if t.metrics != nil {
			t.metrics.GatewayRetries.WithLabelValues(req.Operation).Inc()
		}
	}

	resp, err := cb.Execute(func() (*gateway.Response, error) {
		return retry.DoWithResult(ctx, cfg, func() (*gateway.Response, error) {
			return t.send(ctx, req)
		})
	})

	if t.metrics != nil {
		code := "error"
		if resp != nil {
			code = strconv.Itoa(resp.StatusCode)
		}
		t.metrics.GatewayRequestsTotal.WithLabelValues(req.Operation, code).Inc()
		t.metrics.GatewayRequestDuration.WithLabelValues(req.Operation).Observe(time.Since(start).Seconds())
		result := "success"
		if err != nil {
			result = "failure"
		}
		t.metrics.CircuitBreakerRequests.WithLabelValues(req.Operation, result).Inc()
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, domainerrors.NewTransportError(0, nil,
			fmt.Errorf("%w: %s: %w", domainerrors.ErrGatewayUnavailable, req.Operation, err))
	}
	return resp, err
}

func (t *HTTPTransport) send(ctx context.Context, req *gateway.Request) (*gateway.Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", req.Operation, err)
	}
	for k, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, domainerrors.NewTransportError(0, nil, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodySize))
	if err != nil {
		return nil, domainerrors.NewTransportError(httpResp.StatusCode, nil, fmt.Errorf("read body: %w", err))
	}

	resp := &gateway.Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return resp, domainerrors.NewTransportError(httpResp.StatusCode, data, nil)
	}
	return resp, nil
}

func (t *HTTPTransport) breakerFor(operation string) *gobreaker.CircuitBreaker[*gateway.Response] {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cb, ok := t.breakers[operation]; ok {
		return cb
	}

	threshold := t.breaker.Threshold
	if threshold == 0 {
		threshold = 10
	}
	ratio := t.breaker.FailureRatio
	if ratio <= 0 {
		ratio = 0.6
	}

	cb := gobreaker.NewCircuitBreaker[*gateway.Response](gobreaker.Settings{
		Name:        operation,
		MaxRequests: threshold,
		Interval:    60 * time.Second,
		Timeout:     t.breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= threshold && failureRatio >= ratio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !Retryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			t.logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
			if t.metrics != nil {
				t.metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			}
		},
	})
	t.breakers[operation] = cb
	return cb
}

// Retryable reports whether a failed attempt is worth repeating: network
// failures, 5xx and 429 are; cancellation and other statuses are not.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var tErr *domainerrors.TransportError
	if !errors.As(err, &tErr) {
		return false
	}
	switch {
	case tErr.StatusCode == 0:
		return true
	case tErr.StatusCode == http.StatusTooManyRequests:
		return true
	case tErr.StatusCode >= 500:
		return true
	default:
		return false
	}
}
