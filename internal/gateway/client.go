package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	domainerrors "github.com/cassiomorais/pawapay/internal/domain/errors"
	"github.com/cassiomorais/pawapay/internal/domain/payment"
	"github.com/rs/zerolog"
)

// Config holds what the client needs to address the gateway.
type Config struct {
	BaseURL string
	Token   string
	Headers map[string]string
}

// Client is the gateway facade. It holds only immutable configuration and is
// safe for concurrent use. It neither retries nor deduplicates: the
// transport owns retries and the gateway owns idempotency by deposit id.
type Client struct {
	baseURL   string
	header    http.Header
	transport Transport
	logger    zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for failed exchanges.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new gateway client
func NewClient(cfg Config, transport Transport, opts ...Option) *Client {
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "application/json")
	for k, v := range cfg.Headers {
		header.Set(k, v)
	}
	if cfg.Token != "" {
		header.Set("Authorization", "Bearer "+cfg.Token)
	}

	c := &Client{
		baseURL:   cfg.BaseURL,
		header:    header,
		transport: transport,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PredictProvider resolves the provider and country of a phone number.
func (c *Client) PredictProvider(ctx context.Context, phoneNumber string) (payment.PredictProviderResult, error) {
	body, err := BuildPredictProviderPayload(phoneNumber)
	if err != nil {
		return nil, err
	}
	return exchange(ctx, c, EndpointPredictProvider, nil, body, predictProviderShapes)
}

// CreatePaymentPage creates a hosted payment page, sending metadata items as given.
func (c *Client) CreatePaymentPage(ctx context.Context, req payment.PaymentPageRequest) (payment.PaymentPageResult, error) {
	return c.createPaymentPage(ctx, req, payment.MetadataFlat)
}

// CreatePaymentPageSession creates a hosted payment page from metadata items
// that wrap their fields under a "data" key.
func (c *Client) CreatePaymentPageSession(ctx context.Context, req payment.PaymentPageRequest) (payment.PaymentPageResult, error) {
	return c.createPaymentPage(ctx, req, payment.MetadataUnwrapData)
}

func (c *Client) createPaymentPage(ctx context.Context, req payment.PaymentPageRequest, profile payment.MetadataProfile) (payment.PaymentPageResult, error) {
	body, err := BuildPaymentPagePayload(req, profile)
	if err != nil {
		return nil, err
	}
	return exchange(ctx, c, EndpointPaymentPage, nil, body, paymentPageShapes)
}

// InitiateDeposit asks the gateway to collect a deposit. A REJECTED outcome
// is a result, not an error.
func (c *Client) InitiateDeposit(ctx context.Context, req payment.DepositRequest) (payment.DepositResult, error) {
	body, err := BuildDepositPayload(req)
	if err != nil {
		return payment.DepositResult{}, err
	}
	return exchange(ctx, c, EndpointInitiateDeposit, nil, body, depositShapes)
}

// CheckDepositStatus looks a deposit up. A 404 from the gateway is reported
// as a NOT_FOUND result rather than an error.
func (c *Client) CheckDepositStatus(ctx context.Context, depositID string) (payment.DepositStatusResult, error) {
	if depositID == "" {
		return payment.DepositStatusResult{}, domainerrors.NewValidationError("depositId", "is required")
	}
	result, err := exchange(ctx, c, EndpointDepositStatus, map[string]string{"depositId": depositID}, nil, depositStatusShapes)
	if err != nil {
		var tErr *domainerrors.TransportError
		if errors.As(err, &tErr) && tErr.StatusCode == http.StatusNotFound {
			return payment.NotFoundResult(), nil
		}
		return payment.DepositStatusResult{}, err
	}
	return result, nil
}

func exchange[T any](ctx context.Context, c *Client, ep Endpoint, params map[string]string, body Payload, shapes []shape[T]) (T, error) {
	var zero T

	req := &Request{
		Operation: ep.Name,
		Method:    ep.Method,
		URL:       JoinURL(c.baseURL, ep.BuildPath(params)),
		Header:    c.header.Clone(),
	}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("encode %s payload: %w", ep.Name, err)
		}
		req.Body = data
	}

	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return failed(c, ep, resp, err, shapes)
	}
	if resp == nil {
		return zero, fmt.Errorf("%w: %s: empty response", domainerrors.ErrMalformedResponse, ep.Name)
	}

	obj, err := parseObject(resp.Body)
	if err != nil {
		c.logger.Error().Err(err).Str("operation", ep.Name).Int("status", resp.StatusCode).Msg("gateway returned a non-JSON body")
		return zero, fmt.Errorf("%w: %s: %w", domainerrors.ErrMalformedResponse, ep.Name, err)
	}
	result, err := discriminate(obj, shapes)
	if errors.Is(err, errNoShape) {
		c.logger.Error().Str("operation", ep.Name).Int("status", resp.StatusCode).Msg("gateway returned an unrecognized body")
		return zero, fmt.Errorf("%w: %s", domainerrors.ErrUnrecognizedResponseFormat, ep.Name)
	}
	return result, err
}

// failed handles a transport error. A structured body is run through the
// same shapes as a success; anything else is returned unchanged.
func failed[T any](c *Client, ep Endpoint, resp *Response, err error, shapes []shape[T]) (T, error) {
	var zero T

	var tErr *domainerrors.TransportError
	if !errors.As(err, &tErr) {
		c.logger.Error().Err(err).Str("operation", ep.Name).Msg("gateway exchange failed")
		return zero, err
	}
	logFailure := func(msg string) {
		c.logger.Error().Err(err).Str("operation", ep.Name).Int("status", tErr.StatusCode).Msg(msg)
	}

	if tErr.StatusCode == http.StatusNotFound && ep == EndpointDepositStatus {
		return zero, err
	}
	body := tErr.Body
	if len(body) == 0 && resp != nil {
		body = resp.Body
	}
	obj, perr := parseObject(body)
	if perr != nil {
		logFailure("gateway exchange failed")
		return zero, err
	}
	result, derr := discriminate(obj, shapes)
	if errors.Is(derr, errNoShape) {
		logFailure("gateway error body not recognized")
		return zero, fmt.Errorf("%w: %s: %w", domainerrors.ErrUnrecognizedResponseFormat, ep.Name, err)
	}
	if derr != nil {
		logFailure("gateway error body malformed")
		return zero, derr
	}
	c.logger.Debug().Str("operation", ep.Name).Int("status", tErr.StatusCode).Msg("gateway error body decoded as result")
	return result, nil
}
