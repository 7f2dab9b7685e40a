package errors

import (
	"errors"
	"fmt"
)

var (
	// Deposit errors
	ErrDepositNotFound        = errors.New("deposit not found")
	ErrDepositAlreadyRecorded = errors.New("deposit already recorded")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidPhoneNumber     = errors.New("invalid phone number")

	// Catalog errors
	ErrUnknownCurrency    = errors.New("unknown currency")
	ErrUnknownCountry     = errors.New("unknown country")
	ErrUnknownProvider    = errors.New("unknown provider")
	ErrUnknownLanguage    = errors.New("unknown language")
	ErrUnknownStatus      = errors.New("unknown transaction status")
	ErrUnknownFailureCode = errors.New("unknown failure code")

	// Gateway errors
	ErrMalformedResponse          = errors.New("malformed gateway response")
	ErrUnrecognizedResponseFormat = errors.New("unrecognized gateway response format")
	ErrTransport                  = errors.New("gateway transport failure")
	ErrGatewayUnavailable         = errors.New("gateway unavailable")

	// Lock errors
	ErrLockAcquisitionFailed = errors.New("failed to acquire lock")
	ErrLockNotHeld           = errors.New("lock not held")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidInput     = errors.New("invalid input")
)

// DomainError wraps errors with additional context
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError reports an input that was rejected before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

// Unwrap lets callers match any validation error with errors.Is(err, ErrValidationFailed).
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// TransportError is a failed exchange with the gateway. StatusCode is zero
// when no response was received; Body holds the raw response body if any.
type TransportError struct {
	StatusCode int
	Body       []byte
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		if e.Err != nil {
			return fmt.Sprintf("gateway transport failure: %v", e.Err)
		}
		return "gateway transport failure"
	}
	return fmt.Sprintf("gateway responded with status %d", e.StatusCode)
}

func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}

// HasBody reports whether the failed exchange carried a response body.
func (e *TransportError) HasBody() bool {
	return len(e.Body) > 0
}

// NewTransportError creates a new transport error
func NewTransportError(statusCode int, body []byte, err error) *TransportError {
	return &TransportError{
		StatusCode: statusCode,
		Body:       body,
		Err:        err,
	}
}
