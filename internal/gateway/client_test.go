package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/cassiomorais/pawapay/internal/domain/catalog"
	domainerrors "github.com/cassiomorais/pawapay/internal/domain/errors"
	"github.com/cassiomorais/pawapay/internal/domain/payment"
	"github.com/cassiomorais/pawapay/internal/gateway"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder answers every exchange with a fixed status and body and keeps the requests.
type recorder struct {
	mu       sync.Mutex
	requests []*gateway.Request
	status   int
	body     string
	err      error
}

func (r *recorder) Do(_ context.Context, req *gateway.Request) (*gateway.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	if r.err != nil {
		return nil, r.err
	}
	resp := &gateway.Response{StatusCode: r.status, Body: []byte(r.body)}
	if r.status >= 300 {
		return resp, domainerrors.NewTransportError(r.status, resp.Body, nil)
	}
	return resp, nil
}

func (r *recorder) last(t *testing.T) *gateway.Request {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.requests)
	return r.requests[len(r.requests)-1]
}

func newClient(status int, body string) (*gateway.Client, *recorder) {
	rec := &recorder{status: status, body: body}
	client := gateway.NewClient(gateway.Config{
		BaseURL: "https://api.sandbox.pawapay.io/v2/",
		Token:   "secret-token",
	}, rec)
	return client, rec
}

func decodeBody(t *testing.T, req *gateway.Request) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &m))
	return m
}

func depositRequest() payment.DepositRequest {
	return payment.DepositRequest{
		DepositID: uuid.NewString(),
		Payer:     payment.NewMMOPayer("+260763456789", catalog.ProviderMTNMoMoZMB),
		Amount:    "100",
		Currency:  catalog.CurrencyZMW,
	}
}

func TestClient_RequestHeadersAndURL(t *testing.T) {
	client, rec := newClient(http.StatusOK, `{"status":"ACCEPTED"}`)

	_, err := client.InitiateDeposit(context.Background(), depositRequest())
	require.NoError(t, err)

	req := rec.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "https://api.sandbox.pawapay.io/v2/deposits", req.URL)
	assert.Equal(t, "initiate_deposit", req.Operation)
	assert.Equal(t, "Bearer secret-token", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
}

func TestInitiateDeposit_OmitsAbsentOptionalFields(t *testing.T) {
	client, rec := newClient(http.StatusOK, `{"status":"ACCEPTED"}`)

	_, err := client.InitiateDeposit(context.Background(), depositRequest())
	require.NoError(t, err)

	body := decodeBody(t, rec.last(t))
	for _, key := range []string{"preAuthorisationCode", "clientReferenceId", "customerMessage", "metadata"} {
		assert.NotContains(t, body, key)
	}
	assert.Equal(t, "100", body["amount"])
	assert.Equal(t, "ZMW", body["currency"])
	assert.Equal(t, map[string]any{
		"type": "MMO",
		"accountDetails": map[string]any{
			"phoneNumber": "260763456789",
			"provider":    "MTN_MOMO_ZMB",
		},
	}, body["payer"])
}

func TestInitiateDeposit_SendsPresentOptionalFields(t *testing.T) {
	client, rec := newClient(http.StatusOK, `{"status":"ACCEPTED"}`)

	req := depositRequest()
	req.ClientReferenceID = payment.Some("REF-1")
	req.CustomerMessage = payment.Some("Order 42")
	req.Metadata = payment.Some(payment.Metadata{{"orderId": "ORD-42"}})

	_, err := client.InitiateDeposit(context.Background(), req)
	require.NoError(t, err)

	body := decodeBody(t, rec.last(t))
	assert.Equal(t, "REF-1", body["clientReferenceId"])
	assert.Equal(t, "Order 42", body["customerMessage"])
	assert.Equal(t, []any{map[string]any{"orderId": "ORD-42"}}, body["metadata"])
	assert.NotContains(t, body, "preAuthorisationCode")
}

func TestInitiateDeposit_ValidationFailsBeforeTransmission(t *testing.T) {
	client, rec := newClient(http.StatusOK, `{"status":"ACCEPTED"}`)

	req := depositRequest()
	req.Metadata = payment.Some(payment.Metadata{{"a": "b"}, {"c": []any{"d"}}})

	_, err := client.InitiateDeposit(context.Background(), req)
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	assert.Empty(t, rec.requests)
}

func TestInitiateDeposit_Rejected(t *testing.T) {
	client, _ := newClient(http.StatusOK,
		`{"status":"REJECTED","failureReason":{"failureCode":"INSUFFICIENT_BALANCE","failureMessage":"Not enough funds"}}`)

	result, err := client.InitiateDeposit(context.Background(), depositRequest())
	require.NoError(t, err)

	assert.Equal(t, payment.StatusRejected, result.Status)
	assert.True(t, result.IsRejected())
	assert.False(t, result.IsSuccessful())
	fr, ok := result.FailureReason.Get()
	require.True(t, ok)
	assert.Equal(t, catalog.FailureInsufficientBalance, fr.FailureCode)
	assert.Equal(t, "Not enough funds", fr.FailureMessage)
}

func TestInitiateDeposit_RejectedWithErrorStatus(t *testing.T) {
	client, _ := newClient(http.StatusBadRequest,
		`{"depositId":"d-1","status":"REJECTED","failureReason":{"failureCode":"INVALID_PARAMETER"}}`)

	result, err := client.InitiateDeposit(context.Background(), depositRequest())
	require.NoError(t, err)

	assert.True(t, result.IsRejected())
	fr, _ := result.FailureReason.Get()
	assert.Equal(t, catalog.FailureInvalidParameter, fr.FailureCode)
	assert.Equal(t, payment.DefaultFailureMessage, fr.FailureMessage)
}

// duplicateGateway mimics the gateway's idempotency: the second submission of
// a deposit id is ignored.
type duplicateGateway struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (g *duplicateGateway) Do(_ context.Context, req *gateway.Request) (*gateway.Response, error) {
	var body struct {
		DepositID string `json:"depositId"`
	}
	if err := json.Unmarshal(req.Body, &body); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	status := "ACCEPTED"
	if g.seen[body.DepositID] {
		status = "DUPLICATE_IGNORED"
	}
	g.seen[body.DepositID] = true
	return &gateway.Response{
		StatusCode: http.StatusOK,
		Body:       []byte(`{"depositId":"` + body.DepositID + `","status":"` + status + `","created":"2025-03-01T10:00:00Z"}`),
	}, nil
}

func TestInitiateDeposit_DuplicateSubmission(t *testing.T) {
	client := gateway.NewClient(gateway.Config{BaseURL: "https://gw"}, &duplicateGateway{seen: map[string]bool{}})
	req := depositRequest()

	first, err := client.InitiateDeposit(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, first.IsAccepted())
	assert.True(t, first.Created.IsSet())

	second, err := client.InitiateDeposit(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.IsDuplicateIgnored())
	assert.True(t, second.IsSuccessful())
	id, _ := second.DepositID.Get()
	assert.Equal(t, req.DepositID, id)
}

func TestInitiateDeposit_UnknownStatusIsMalformed(t *testing.T) {
	client, _ := newClient(http.StatusOK, `{"status":"COMPLETED"}`)

	_, err := client.InitiateDeposit(context.Background(), depositRequest())
	assert.ErrorIs(t, err, domainerrors.ErrMalformedResponse)
}

func TestCreatePaymentPage(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, result payment.PaymentPageResult, err error)
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body:   `{"redirectUrl":"https://paywith.pawapay.io/?token=abc"}`,
			check: func(t *testing.T, result payment.PaymentPageResult, err error) {
				require.NoError(t, err)
				success, ok := result.(payment.PaymentPageSuccess)
				require.True(t, ok)
				assert.Equal(t, "https://paywith.pawapay.io/?token=abc", success.RedirectURL)
			},
		},
		{
			name:   "failure with incomplete reason",
			status: http.StatusOK,
			body:   `{"failureReason":{"failureMessage":"x"}}`,
			check: func(t *testing.T, result payment.PaymentPageResult, err error) {
				require.NoError(t, err)
				failure, ok := result.(payment.PaymentPageFailure)
				require.True(t, ok)
				assert.Equal(t, catalog.FailureUnknownError, failure.FailureReason.FailureCode)
				assert.Equal(t, "x", failure.FailureReason.FailureMessage)
				assert.False(t, failure.DepositID.IsSet())
				assert.False(t, failure.Status.IsSet())
			},
		},
		{
			name:   "failure with null reason",
			status: http.StatusBadRequest,
			body:   `{"depositId":"d-1","status":"REJECTED","failureReason":null}`,
			check: func(t *testing.T, result payment.PaymentPageResult, err error) {
				require.NoError(t, err)
				failure, ok := result.(payment.PaymentPageFailure)
				require.True(t, ok)
				assert.Equal(t, payment.NewFailureReason("", ""), failure.FailureReason)
				status, _ := failure.Status.Get()
				assert.Equal(t, payment.StatusRejected, status)
			},
		},
		{
			name:   "unrecognized",
			status: http.StatusOK,
			body:   `{}`,
			check: func(t *testing.T, result payment.PaymentPageResult, err error) {
				assert.ErrorIs(t, err, domainerrors.ErrUnrecognizedResponseFormat)
				assert.Nil(t, result)
			},
		},
		{
			name:   "non-JSON success",
			status: http.StatusOK,
			body:   `<html>oops</html>`,
			check: func(t *testing.T, result payment.PaymentPageResult, err error) {
				assert.ErrorIs(t, err, domainerrors.ErrMalformedResponse)
			},
		},
		{
			name:   "non-JSON error body",
			status: http.StatusBadGateway,
			body:   `Bad Gateway`,
			check: func(t *testing.T, result payment.PaymentPageResult, err error) {
				var tErr *domainerrors.TransportError
				require.ErrorAs(t, err, &tErr)
				assert.Equal(t, http.StatusBadGateway, tErr.StatusCode)
				assert.NotErrorIs(t, err, domainerrors.ErrMalformedResponse)
			},
		},
		{
			name:   "unrecognized error body",
			status: http.StatusInternalServerError,
			body:   `{"error":"boom"}`,
			check: func(t *testing.T, result payment.PaymentPageResult, err error) {
				assert.ErrorIs(t, err, domainerrors.ErrUnrecognizedResponseFormat)
				var tErr *domainerrors.TransportError
				require.ErrorAs(t, err, &tErr)
				assert.Equal(t, http.StatusInternalServerError, tErr.StatusCode)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newClient(tt.status, tt.body)
			result, err := client.CreatePaymentPage(context.Background(), payment.PaymentPageRequest{
				DepositID: uuid.NewString(),
				ReturnURL: "https://merchant.example.com/done",
			})
			tt.check(t, result, err)
		})
	}
}

func TestCreatePaymentPage_Payload(t *testing.T) {
	client, rec := newClient(http.StatusOK, `{"redirectUrl":"https://x"}`)
	req := payment.PaymentPageRequest{
		DepositID:     uuid.NewString(),
		ReturnURL:     "https://merchant.example.com/done",
		AmountDetails: payment.Some(payment.Money{Amount: "20.50", Currency: catalog.CurrencyGHS}),
		PhoneNumber:   payment.Some("+233 24 123 4567"),
		Language:      payment.Some(catalog.LanguageFR),
		Country:       payment.Some(catalog.CountryGhana),
	}

	_, err := client.CreatePaymentPage(context.Background(), req)
	require.NoError(t, err)

	body := decodeBody(t, rec.last(t))
	assert.Equal(t, "https://merchant.example.com/done", body["returnUrl"])
	assert.Equal(t, map[string]any{"amount": "20.50", "currency": "GHS"}, body["amountDetails"])
	assert.Equal(t, "233241234567", body["phoneNumber"])
	assert.Equal(t, "FR", body["language"])
	assert.Equal(t, "GHA", body["country"])
	assert.NotContains(t, body, "reason")
	assert.NotContains(t, body, "customerMessage")
	assert.NotContains(t, body, "metadata")
	assert.Equal(t, "https://api.sandbox.pawapay.io/v2/paymentpage", rec.last(t).URL)
}

func TestCreatePaymentPageSession_UnwrapsMetadata(t *testing.T) {
	client, rec := newClient(http.StatusOK, `{"redirectUrl":"https://x"}`)
	req := payment.PaymentPageRequest{
		DepositID: uuid.NewString(),
		ReturnURL: "https://merchant.example.com/done",
		Metadata: payment.Some(payment.Metadata{
			{"data": map[string]any{"orderId": "ORD-1"}},
		}),
	}

	_, err := client.CreatePaymentPageSession(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"orderId": "ORD-1"}}, decodeBody(t, rec.last(t))["metadata"])

	req.Metadata = payment.Some(payment.Metadata{{"orderId": "ORD-1"}})
	_, err = client.CreatePaymentPageSession(context.Background(), req)
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	assert.Len(t, rec.requests, 1)
}

func TestPredictProvider(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    payment.PredictProviderResult
		wantErr error
	}{
		{
			name: "success",
			body: `{"country":"ZMB","provider":"MTN_MOMO_ZMB","phoneNumber":"260763456789"}`,
			want: payment.ProviderPrediction{Country: catalog.CountryZambia, Provider: catalog.ProviderMTNMoMoZMB, PhoneNumber: "260763456789"},
		},
		{
			name: "top level failure",
			body: `{"failureCode":"INVALID_PHONE_NUMBER","failureMessage":"bad number"}`,
			want: payment.PredictionFailure{FailureReason: payment.FailureReason{FailureCode: catalog.FailureInvalidPhoneNumber, FailureMessage: "bad number"}},
		},
		{
			name: "nested failure",
			body: `{"failureReason":{"failureCode":"INVALID_INPUT","failureMessage":"m"}}`,
			want: payment.PredictionFailure{FailureReason: payment.FailureReason{FailureCode: catalog.FailureInvalidInput, FailureMessage: "m"}},
		},
		{
			name: "message only",
			body: `{"failureMessage":"nope"}`,
			want: payment.PredictionFailure{FailureReason: payment.FailureReason{FailureCode: catalog.FailureUnknownError, FailureMessage: "nope"}},
		},
		{
			name:    "partial success is unrecognized",
			body:    `{"country":"ZMB","provider":"MTN_MOMO_ZMB"}`,
			wantErr: domainerrors.ErrUnrecognizedResponseFormat,
		},
		{
			name:    "unknown provider is malformed",
			body:    `{"country":"ZMB","provider":"NEW_ZMB","phoneNumber":"260763456789"}`,
			wantErr: domainerrors.ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, rec := newClient(http.StatusOK, tt.body)
			result, err := client.PredictProvider(context.Background(), "+260763456789")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, result)
			assert.Equal(t, map[string]any{"phoneNumber": "260763456789"}, decodeBody(t, rec.last(t)))
		})
	}
}

func TestPredictProvider_InvalidPhone(t *testing.T) {
	client, rec := newClient(http.StatusOK, `{}`)
	_, err := client.PredictProvider(context.Background(), "abc")
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	assert.Empty(t, rec.requests)
}

func TestCheckDepositStatus_Found(t *testing.T) {
	client, rec := newClient(http.StatusOK, `{
		"status": "FOUND",
		"data": {
			"depositId": "8917c345-4791-4285-a416-62f24b6982db",
			"status": "COMPLETED",
			"amount": "123.00",
			"currency": "ZMW",
			"country": "ZMB",
			"payer": {"type": "MMO", "accountDetails": {"phoneNumber": "+260763456789", "provider": "MTN_MOMO_ZMB"}},
			"customerMessage": "To ACME company",
			"created": "2020-10-19T08:17:01Z",
			"providerTransactionId": "12356789",
			"metadata": [{"orderId": "ORD-123456789"}]
		}
	}`)

	result, err := client.CheckDepositStatus(context.Background(), "8917c345-4791-4285-a416-62f24b6982db")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, rec.last(t).Method)
	assert.Equal(t, "https://api.sandbox.pawapay.io/v2/deposits/8917c345-4791-4285-a416-62f24b6982db", rec.last(t).URL)
	assert.Nil(t, rec.last(t).Body)

	assert.True(t, result.IsFound())
	assert.True(t, result.IsFinal())
	d, ok := result.Data.Get()
	require.True(t, ok)
	assert.Equal(t, payment.StatusCompleted, d.Status)
	assert.Equal(t, payment.Amount("123.00"), d.Amount)
	assert.Equal(t, "260763456789", d.Payer.AccountDetails.PhoneNumber)
	ptx, _ := d.ProviderTransactionID.Get()
	assert.Equal(t, "12356789", ptx)
	assert.False(t, d.FailureReason.IsSet())
	md, _ := d.Metadata.Get()
	assert.Equal(t, payment.Metadata{{"orderId": "ORD-123456789"}}, md)
}

func TestCheckDepositStatus_NotFoundBody(t *testing.T) {
	client, _ := newClient(http.StatusOK, `{"status":"NOT_FOUND"}`)

	result, err := client.CheckDepositStatus(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.True(t, result.IsNotFound())
	assert.False(t, result.Data.IsSet())
}

func TestCheckDepositStatus_FoundWithoutData(t *testing.T) {
	client, _ := newClient(http.StatusOK, `{"status":"FOUND"}`)

	result, err := client.CheckDepositStatus(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.True(t, result.IsFound())
	assert.False(t, result.Data.IsSet())
}

func TestCheckDepositStatus_Transport404(t *testing.T) {
	for _, body := range []string{"", "Not Found", `{"message":"no such deposit"}`} {
		t.Run(body, func(t *testing.T) {
			client, _ := newClient(http.StatusNotFound, body)

			result, err := client.CheckDepositStatus(context.Background(), uuid.NewString())
			require.NoError(t, err)
			assert.Equal(t, payment.StatusNotFound, result.Status)
			assert.False(t, result.Data.IsSet())
		})
	}
}

func TestCheckDepositStatus_Errors(t *testing.T) {
	client, _ := newClient(http.StatusOK, `{"status":"PROCESSING"}`)
	_, err := client.CheckDepositStatus(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, domainerrors.ErrUnrecognizedResponseFormat)

	client, _ = newClient(http.StatusOK, `{"status":"FOUND","data":{"status":"WHATEVER"}}`)
	_, err = client.CheckDepositStatus(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, domainerrors.ErrMalformedResponse)

	_, err = client.CheckDepositStatus(context.Background(), "")
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestClient_TransportFailureIsReturnedUnchanged(t *testing.T) {
	cause := domainerrors.NewTransportError(0, nil, errors.New("dial tcp: connection refused"))
	rec := &recorder{err: cause}
	client := gateway.NewClient(gateway.Config{BaseURL: "https://gw"}, rec)

	_, err := client.CheckDepositStatus(context.Background(), uuid.NewString())
	assert.Same(t, cause, err)

	_, err = client.InitiateDeposit(context.Background(), depositRequest())
	assert.Same(t, cause, err)
}

func TestClient_ContextErrorIsReturned(t *testing.T) {
	client := gateway.NewClient(gateway.Config{BaseURL: "https://gw"}, gateway.TransportFunc(
		func(ctx context.Context, _ *gateway.Request) (*gateway.Response, error) {
			return nil, ctx.Err()
		}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.PredictProvider(ctx, "260763456789")
	assert.ErrorIs(t, err, context.Canceled)
}
