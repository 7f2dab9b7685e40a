package catalog

import "net/http"

// FailureCode is a gateway-defined reason for a rejected or failed operation.
type FailureCode string

// Technical failure codes
const (
	FailureNoAuthentication               FailureCode = "NO_AUTHENTICATION"
	FailureAuthenticationError            FailureCode = "AUTHENTICATION_ERROR"
	FailureAuthorisationError             FailureCode = "AUTHORISATION_ERROR"
	FailureHTTPSignatureError             FailureCode = "HTTP_SIGNATURE_ERROR"
	FailureInvalidInput                   FailureCode = "INVALID_INPUT"
	FailureMissingParameter               FailureCode = "MISSING_PARAMETER"
	FailureUnsupportedParameter           FailureCode = "UNSUPPORTED_PARAMETER"
	FailureInvalidParameter               FailureCode = "INVALID_PARAMETER"
	FailureAmountOutOfBounds              FailureCode = "AMOUNT_OUT_OF_BOUNDS"
	FailureInvalidAmount                  FailureCode = "INVALID_AMOUNT"
	FailureInvalidPhoneNumber             FailureCode = "INVALID_PHONE_NUMBER"
	FailureInvalidCurrency                FailureCode = "INVALID_CURRENCY"
	FailureInvalidProvider                FailureCode = "INVALID_PROVIDER"
	FailureDuplicateMetadataField         FailureCode = "DUPLICATE_METADATA_FIELD"
	FailureDepositsNotAllowed             FailureCode = "DEPOSITS_NOT_ALLOWED"
	FailurePayoutsNotAllowed              FailureCode = "PAYOUTS_NOT_ALLOWED"
	FailureRefundsNotAllowed              FailureCode = "REFUNDS_NOT_ALLOWED"
	FailureProviderTemporarilyUnavailable FailureCode = "PROVIDER_TEMPORARILY_UNAVAILABLE"
	FailureUnknownError                   FailureCode = "UNKNOWN_ERROR"
)

// Transaction failure codes
const (
	FailurePaymentNotApproved      FailureCode = "PAYMENT_NOT_APPROVED"
	FailureInsufficientBalance     FailureCode = "INSUFFICIENT_BALANCE"
	FailurePaymentInProgress       FailureCode = "PAYMENT_IN_PROGRESS"
	FailurePayerNotFound           FailureCode = "PAYER_NOT_FOUND"
	FailureRecipientNotFound       FailureCode = "RECIPIENT_NOT_FOUND"
	FailureManuallyCancelled       FailureCode = "MANUALLY_CANCELLED"
	FailurePawapayWalletOutOfFunds FailureCode = "PAWAPAY_WALLET_OUT_OF_FUNDS"
	FailureDepositAlreadyRefunded  FailureCode = "DEPOSIT_ALREADY_REFUNDED"
	FailureAmountTooLarge          FailureCode = "AMOUNT_TOO_LARGE"
	FailureRefundInProgress        FailureCode = "REFUND_IN_PROGRESS"
	FailureWalletLimitReached      FailureCode = "WALLET_LIMIT_REACHED"
	FailureUnspecifiedFailure      FailureCode = "UNSPECIFIED_FAILURE"
)

// HTTP status the gateway pairs with each code. Codes reported inside a
// successful envelope map to 200.
var failureHTTPStatus = map[FailureCode]int{
	FailureNoAuthentication:               http.StatusUnauthorized,
	FailureAuthenticationError:            http.StatusForbidden,
	FailureAuthorisationError:             http.StatusForbidden,
	FailureHTTPSignatureError:             http.StatusForbidden,
	FailureInvalidInput:                   http.StatusBadRequest,
	FailureMissingParameter:               http.StatusBadRequest,
	FailureUnsupportedParameter:           http.StatusBadRequest,
	FailureInvalidParameter:               http.StatusBadRequest,
	FailureAmountOutOfBounds:              http.StatusOK,
	FailureInvalidAmount:                  http.StatusOK,
	FailureInvalidPhoneNumber:             http.StatusOK,
	FailureInvalidCurrency:                http.StatusOK,
	FailureInvalidProvider:                http.StatusOK,
	FailureDuplicateMetadataField:         http.StatusBadRequest,
	FailureDepositsNotAllowed:             http.StatusForbidden,
	FailurePayoutsNotAllowed:              http.StatusForbidden,
	FailureRefundsNotAllowed:              http.StatusForbidden,
	FailureProviderTemporarilyUnavailable: http.StatusServiceUnavailable,
	FailureUnknownError:                   http.StatusInternalServerError,
	FailurePaymentNotApproved:             http.StatusOK,
	FailureInsufficientBalance:            http.StatusOK,
	FailurePaymentInProgress:              http.StatusOK,
	FailurePayerNotFound:                  http.StatusOK,
	FailureRecipientNotFound:              http.StatusOK,
	FailureManuallyCancelled:              http.StatusOK,
	FailurePawapayWalletOutOfFunds:        http.StatusOK,
	FailureDepositAlreadyRefunded:         http.StatusOK,
	FailureAmountTooLarge:                 http.StatusOK,
	FailureRefundInProgress:               http.StatusOK,
	FailureWalletLimitReached:             http.StatusOK,
	FailureUnspecifiedFailure:             http.StatusInternalServerError,
}

func (c FailureCode) String() string { return string(c) }

func (c FailureCode) IsValid() bool {
	_, ok := failureHTTPStatus[c]
	return ok
}

// HTTPStatus returns the HTTP status associated with c, 500 for unknown codes.
func (c FailureCode) HTTPStatus() int {
	if status, ok := failureHTTPStatus[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ParseFailureCode maps a wire value to a FailureCode. Unknown or empty
// values fall back to UNKNOWN_ERROR; the gateway may add codes at any time.
func ParseFailureCode(s string) FailureCode {
	c := FailureCode(s)
	if !c.IsValid() {
		return FailureUnknownError
	}
	return c
}
