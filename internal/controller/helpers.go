package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/cassiomorais/pawapay/internal/domain/catalog"
	domainErrors "github.com/cassiomorais/pawapay/internal/domain/errors"
	"github.com/cassiomorais/pawapay/internal/domain/payment"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names in validation errors.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	rules := map[string]func(string) bool{
		"amount": func(s string) bool { return payment.Amount(s).IsPositive() },
		"msisdn": func(s string) bool {
			_, err := payment.NormalizePhoneNumber(s)
			return err == nil
		},
		"currency": func(s string) bool { return catalog.Currency(s).IsValid() },
		"provider": func(s string) bool { return catalog.Provider(s).IsValid() },
		"country":  func(s string) bool { return catalog.Country(s).IsValid() },
		"language": func(s string) bool { return catalog.Language(s).IsValid() },
	}
	for tag, ok := range rules {
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return ok(fl.Field().String())
		})
	}
	return v
}

type errorMapping struct {
	err    error
	status int
	code   string
}

// Order matters: an unavailable gateway is reported inside a transport error.
var errorMappings = []errorMapping{
	{domainErrors.ErrDepositNotFound, http.StatusNotFound, "not_found"},
	{domainErrors.ErrMalformedResponse, http.StatusBadGateway, "bad_gateway_response"},
	{domainErrors.ErrUnrecognizedResponseFormat, http.StatusBadGateway, "bad_gateway_response"},
	{domainErrors.ErrGatewayUnavailable, http.StatusServiceUnavailable, "gateway_unavailable"},
	{domainErrors.ErrTransport, http.StatusBadGateway, "gateway_error"},
	{domainErrors.ErrInvalidStateTransition, http.StatusConflict, "invalid_state_transition"},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeResult answers 200 with the gateway result in the response envelope.
func writeResult(w http.ResponseWriter, success bool, data any) {
	writeJSON(w, http.StatusOK, Response{Success: success, Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error()}

	var validationErr *domainErrors.ValidationError
	if errors.As(err, &validationErr) {
		resp.Code = "validation_error"
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			resp.Code = m.code
			writeJSON(w, m.status, resp)
			return
		}
	}

	var domainErr *domainErrors.DomainError
	if errors.As(err, &domainErr) {
		resp.Code = domainErr.Code
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	log.Error().Err(err).Msg("unhandled error in handler")
	resp.Code = "internal_error"
	resp.Error = "internal server error"
	writeJSON(w, http.StatusInternalServerError, resp)
}

func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domainErrors.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	return validateStruct(dst)
}

func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			return domainErrors.NewValidationError(fieldPath(ve[0]), ve[0].Tag()+" validation failed")
		}
		return domainErrors.NewValidationError("body", err.Error())
	}
	return nil
}

// fieldPath drops the struct name from the namespace, e.g.
// "InitiateDepositRequest.payer.accountDetails.phoneNumber" becomes
// "payer.accountDetails.phoneNumber".
func fieldPath(fe validator.FieldError) string {
	_, path, ok := strings.Cut(fe.Namespace(), ".")
	if !ok {
		return fe.Field()
	}
	return path
}
