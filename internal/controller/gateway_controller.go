package controller

import (
	"net/http"

	domainErrors "github.com/cassiomorais/pawapay/internal/domain/errors"
	"github.com/cassiomorais/pawapay/internal/domain/payment"
	"github.com/cassiomorais/pawapay/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// GatewayController exposes the gateway operations over HTTP. Gateway
// outcomes, including rejections and failures, are answered with 200 and
// success=false; only errors raised before or around the exchange map to
// error statuses.
type GatewayController struct {
	deposits *service.DepositService
	logger   zerolog.Logger
}

// NewGatewayController creates a new GatewayController.
func NewGatewayController(deposits *service.DepositService, logger zerolog.Logger) *GatewayController {
	return &GatewayController{deposits: deposits, logger: logger}
}

// PredictProvider handles POST /api/v1/pawapay/predict-provider
func (h *GatewayController) PredictProvider(w http.ResponseWriter, r *http.Request) {
	var req PredictProviderRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.deposits.PredictProvider(r.Context(), req.PhoneNumber)
	if err != nil {
		h.logger.Error().Err(err).Msg("Provider prediction failed")
		writeError(w, err)
		return
	}

	prediction, ok := result.(payment.ProviderPrediction)
	event := h.logger.Info().Bool("success", ok)
	if ok {
		event = event.Str("provider", string(prediction.Provider))
	}
	event.Msg("Provider prediction completed")

	writeResult(w, ok, result)
}

// CreatePaymentPage handles POST /api/v1/pawapay/payment-page
func (h *GatewayController) CreatePaymentPage(w http.ResponseWriter, r *http.Request) {
	var req PaymentPageRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.deposits.CreatePaymentPage(r.Context(), req.toDomain(), req.Session)
	if err != nil {
		h.logger.Error().Err(err).Str("deposit_id", req.DepositID).Msg("Payment page creation failed")
		writeError(w, err)
		return
	}

	_, ok := result.(payment.PaymentPageSuccess)
	h.logger.Info().Str("deposit_id", req.DepositID).Bool("success", ok).Msg("Payment page creation completed")

	writeResult(w, ok, result)
}

// InitiateDeposit handles POST /api/v1/pawapay/deposits
func (h *GatewayController) InitiateDeposit(w http.ResponseWriter, r *http.Request) {
	var req InitiateDepositRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.deposits.InitiateDeposit(r.Context(), req.toDomain())
	if err != nil {
		h.logger.Error().Err(err).Str("deposit_id", req.DepositID).Msg("Deposit initiation failed")
		writeError(w, err)
		return
	}

	h.logger.Info().
		Str("deposit_id", req.DepositID).
		Bool("success", result.IsSuccessful()).
		Str("status", string(result.Status)).
		Msg("Deposit initiation completed")

	writeResult(w, result.IsSuccessful(), result)
}

// DepositStatus handles GET /api/v1/pawapay/deposits/{depositId}
func (h *GatewayController) DepositStatus(w http.ResponseWriter, r *http.Request) {
	depositID, err := parseDepositID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.deposits.CheckDepositStatus(r.Context(), depositID.String())
	if err != nil {
		h.logger.Error().Err(err).Str("deposit_id", depositID.String()).Msg("Deposit status check failed")
		writeError(w, err)
		return
	}

	h.logger.Info().
		Str("deposit_id", depositID.String()).
		Bool("found", result.IsFound()).
		Str("status", string(result.Status)).
		Msg("Deposit status check completed")

	writeResult(w, result.IsFound(), result)
}

// Journal handles GET /api/v1/pawapay/journal/{depositId}
func (h *GatewayController) Journal(w http.ResponseWriter, r *http.Request) {
	depositID, err := parseDepositID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	d, events, err := h.deposits.Deposit(r.Context(), depositID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeResult(w, true, toDepositResponse(d, events))
}

func parseDepositID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "depositId"))
	if err != nil {
		return uuid.Nil, domainErrors.NewValidationError("depositId", "must be a UUID")
	}
	return id, nil
}
