package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cassiomorais/pawapay/internal/domain/catalog"
	domainErrors "github.com/cassiomorais/pawapay/internal/domain/errors"
	"github.com/cassiomorais/pawapay/internal/domain/payment"
	"github.com/cassiomorais/pawapay/internal/infrastructure/config"
	"github.com/cassiomorais/pawapay/internal/infrastructure/observability"
	"github.com/cassiomorais/pawapay/internal/service"
	"github.com/cassiomorais/pawapay/internal/testutil"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router  http.Handler
	gateway *testutil.MockGateway
	repo    *testutil.MockDepositRepository
}

func newTestServer(t *testing.T, mutate ...func(*RouterDeps)) *testServer {
	t.Helper()
	gw := &testutil.MockGateway{}
	repo := testutil.NewMockDepositRepository()
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics("test", reg)

	deposits := service.NewDepositService(gw, repo, testutil.NewMockTransactionManager(), service.WithMetrics(metrics))
	deps := RouterDeps{
		DepositService: deposits,
		Metrics:        metrics,
		Gatherer:       reg,
		ServerConfig:   config.ServerConfig{CORS: config.CORSConfig{AllowedOrigins: []string{"*"}}},
		ServiceName:    "pawapay-api-test",
		Logger:         zerolog.Nop(),
	}
	for _, m := range mutate {
		m(&deps)
	}
	return &testServer{router: NewRouter(deps), gateway: gw, repo: repo}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func validDepositRequest() InitiateDepositRequest {
	return InitiateDepositRequest{
		DepositID: uuid.NewString(),
		Payer: PayerRequest{
			Type: "MMO",
			AccountDetails: AccountDetailsRequest{
				PhoneNumber: "260763456789",
				Provider:    "MTN_MOMO_ZMB",
			},
		},
		Amount:   "15",
		Currency: "ZMW",
	}
}

func validPaymentPageRequest() PaymentPageRequest {
	return PaymentPageRequest{
		DepositID:     uuid.NewString(),
		ReturnURL:     "https://merchant.example.com/return",
		AmountDetails: &MoneyRequest{Amount: "20.50", Currency: "ZMW"},
	}
}

func TestGatewayController_PredictProvider(t *testing.T) {
	srv := newTestServer(t)
	srv.gateway.PredictProviderFunc = func(_ context.Context, phone string) (payment.PredictProviderResult, error) {
		assert.Equal(t, "+260 763-456-789", phone)
		return payment.ProviderPrediction{
			Country:     catalog.CountryZambia,
			Provider:    catalog.ProviderMTNMoMoZMB,
			PhoneNumber: "260763456789",
		}, nil
	}

	rec, body := srv.do(t, http.MethodPost, "/api/v1/pawapay/predict-provider", PredictProviderRequest{PhoneNumber: "+260 763-456-789"})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "MTN_MOMO_ZMB", data["provider"])
	assert.Equal(t, "ZMB", data["country"])
}

func TestGatewayController_PredictProviderFailure(t *testing.T) {
	srv := newTestServer(t)
	srv.gateway.PredictProviderFunc = func(context.Context, string) (payment.PredictProviderResult, error) {
		return payment.PredictionFailure{
			FailureReason: payment.NewFailureReason("INVALID_PHONE_NUMBER", "Phone number is not valid"),
		}, nil
	}

	rec, body := srv.do(t, http.MethodPost, "/api/v1/pawapay/predict-provider", PredictProviderRequest{PhoneNumber: "260000000000"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["success"])
	reason := body["data"].(map[string]any)["failureReason"].(map[string]any)
	assert.Equal(t, "INVALID_PHONE_NUMBER", reason["failureCode"])
}

func TestGatewayController_PredictProviderValidation(t *testing.T) {
	srv := newTestServer(t)
	called := false
	srv.gateway.PredictProviderFunc = func(context.Context, string) (payment.PredictProviderResult, error) {
		called = true
		return nil, nil
	}

	rec, body := srv.do(t, http.MethodPost, "/api/v1/pawapay/predict-provider", PredictProviderRequest{PhoneNumber: "12ab"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", body["code"])
	assert.Equal(t, false, body["success"])
	assert.False(t, called)
}

func TestGatewayController_PaymentPage(t *testing.T) {
	tests := []struct {
		name        string
		session     bool
		wantSession bool
	}{
		{"flat metadata", false, false},
		{"session metadata", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			var usedSession bool
			page := func(session bool) func(context.Context, payment.PaymentPageRequest) (payment.PaymentPageResult, error) {
				return func(_ context.Context, req payment.PaymentPageRequest) (payment.PaymentPageResult, error) {
					usedSession = session
					money, ok := req.AmountDetails.Get()
					require.True(t, ok)
					assert.Equal(t, payment.Amount("20.50"), money.Amount)
					return payment.PaymentPageSuccess{RedirectURL: "https://pay.example.com/" + req.DepositID}, nil
				}
			}
			srv.gateway.CreatePaymentPageFunc = page(false)
			srv.gateway.CreatePaymentPageSessionFunc = page(true)

			req := validPaymentPageRequest()
			req.Session = tt.session
			rec, body := srv.do(t, http.MethodPost, "/api/v1/pawapay/payment-page", req)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantSession, usedSession)
			assert.Equal(t, true, body["success"])
			assert.Equal(t, "https://pay.example.com/"+req.DepositID, body["data"].(map[string]any)["redirectUrl"])
		})
	}
}

func TestGatewayController_PaymentPageFailure(t *testing.T) {
	srv := newTestServer(t)
	srv.gateway.CreatePaymentPageFunc = func(_ context.Context, req payment.PaymentPageRequest) (payment.PaymentPageResult, error) {
		return payment.PaymentPageFailure{
			DepositID:     payment.Some(req.DepositID),
			Status:        payment.Some(payment.StatusRejected),
			FailureReason: payment.NewFailureReason("DUPLICATE_DEPOSIT_ID", ""),
		}, nil
	}

	rec, body := srv.do(t, http.MethodPost, "/api/v1/pawapay/payment-page", validPaymentPageRequest())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "REJECTED", data["status"])
}

func TestGatewayController_PaymentPageTooMuchMetadata(t *testing.T) {
	srv := newTestServer(t)
	req := validPaymentPageRequest()
	for i := range 11 {
		req.Metadata = append(req.Metadata, map[string]any{"field": fmt.Sprint(i)})
	}

	rec, body := srv.do(t, http.MethodPost, "/api/v1/pawapay/payment-page", req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "metadata")
}

func TestGatewayController_InitiateDeposit(t *testing.T) {
	tests := []struct {
		name        string
		status      payment.TransactionStatus
		wantSuccess bool
	}{
		{"accepted", payment.StatusAccepted, true},
		{"duplicate ignored", payment.StatusDuplicateIgnored, true},
		{"rejected", payment.StatusRejected, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			srv.gateway.InitiateDepositFunc = func(_ context.Context, req payment.DepositRequest) (payment.DepositResult, error) {
				result := payment.DepositResult{DepositID: payment.Some(req.DepositID), Status: tt.status}
				if tt.status == payment.StatusRejected {
					result.FailureReason = payment.Some(payment.NewFailureReason("PAYER_NOT_FOUND", "Payer not found"))
				}
				return result, nil
			}

			req := validDepositRequest()
			rec, body := srv.do(t, http.MethodPost, "/api/v1/pawapay/deposits", req)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantSuccess, body["success"])
			data := body["data"].(map[string]any)
			assert.Equal(t, string(tt.status), data["status"])
			assert.Equal(t, req.DepositID, data["depositId"])

			d, err := srv.repo.GetByID(context.Background(), uuid.MustParse(req.DepositID))
			require.NoError(t, err)
			assert.Equal(t, tt.status, d.Status)
		})
	}
}

func TestGatewayController_InitiateDepositGatewayErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"server error", domainErrors.NewTransportError(http.StatusInternalServerError, nil, nil), http.StatusBadGateway},
		{"breaker open", domainErrors.NewTransportError(0, nil, fmt.Errorf("%w: initiate_deposit", domainErrors.ErrGatewayUnavailable)), http.StatusServiceUnavailable},
		{"malformed", fmt.Errorf("%w: initiate_deposit", domainErrors.ErrMalformedResponse), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			srv.gateway.InitiateDepositFunc = func(context.Context, payment.DepositRequest) (payment.DepositResult, error) {
				return payment.DepositResult{}, tt.err
			}

			rec, body := srv.do(t, http.MethodPost, "/api/v1/pawapay/deposits", validDepositRequest())

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestGatewayController_DepositStatus(t *testing.T) {
	srv := newTestServer(t)
	found := uuid.NewString()
	srv.gateway.CheckDepositStatusFunc = func(_ context.Context, id string) (payment.DepositStatusResult, error) {
		if id == found {
			return testutil.FoundResult(id, payment.StatusCompleted), nil
		}
		return payment.NotFoundResult(), nil
	}

	rec, body := srv.do(t, http.MethodGet, "/api/v1/pawapay/deposits/"+found, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "FOUND", data["status"])
	assert.Equal(t, "COMPLETED", data["data"].(map[string]any)["status"])

	rec, body = srv.do(t, http.MethodGet, "/api/v1/pawapay/deposits/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "NOT_FOUND", body["data"].(map[string]any)["status"])
}

func TestGatewayController_DepositStatusInvalidID(t *testing.T) {
	srv := newTestServer(t)

	rec, body := srv.do(t, http.MethodGet, "/api/v1/pawapay/deposits/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", body["code"])
	assert.Zero(t, srv.gateway.StatusCalls)
}

func TestGatewayController_Journal(t *testing.T) {
	srv := newTestServer(t)
	srv.gateway.InitiateDepositFunc = func(_ context.Context, req payment.DepositRequest) (payment.DepositResult, error) {
		return payment.DepositResult{DepositID: payment.Some(req.DepositID), Status: payment.StatusAccepted}, nil
	}
	srv.gateway.CheckDepositStatusFunc = func(_ context.Context, id string) (payment.DepositStatusResult, error) {
		return testutil.FoundResult(id, payment.StatusFailed), nil
	}

	req := validDepositRequest()
	rec, _ := srv.do(t, http.MethodPost, "/api/v1/pawapay/deposits", req)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = srv.do(t, http.MethodGet, "/api/v1/pawapay/deposits/"+req.DepositID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := srv.do(t, http.MethodGet, "/api/v1/pawapay/journal/"+req.DepositID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := body["data"].(map[string]any)
	assert.Equal(t, "FAILED", data["status"])
	assert.Equal(t, "PAYMENT_NOT_APPROVED", data["failureCode"])
	assert.Equal(t, true, data["settled"])
	assert.Len(t, data["events"], 2)

	rec, body = srv.do(t, http.MethodGet, "/api/v1/pawapay/journal/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body["code"])
}

func TestRouter_RequiresAuthWhenConfigured(t *testing.T) {
	srv := newTestServer(t, func(d *RouterDeps) {
		d.AuthConfig = config.AuthConfig{JWTSecret: "secret"}
	})

	rec, body := srv.do(t, http.MethodGet, "/api/v1/pawapay/deposits/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "auth_required", body["code"])

	rec, _ = srv.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	failing := PingFunc(func(context.Context) error { return errors.New("connection refused") })
	srv := newTestServer(t, func(d *RouterDeps) {
		d.HealthChecks = map[string]Pinger{"redis": failing}
	})

	rec, body := srv.do(t, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "redis unavailable", body["reason"])

	rec, _ = srv.do(t, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	srv.do(t, http.MethodGet, "/api/v1/pawapay/deposits/"+uuid.NewString(), nil)
	rec, _ = srv.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_http_requests_total")
}

func TestRouter_UnknownRoute(t *testing.T) {
	srv := newTestServer(t)

	rec, body := srv.do(t, http.MethodGet, "/api/v1/payments", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body["code"])
}
