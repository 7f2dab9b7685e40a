package payment

import (
	"fmt"

	"github.com/cassiomorais/pawapay/internal/domain/errors"
)

// TransactionStatus is a status reported by the gateway for a deposit or a lookup.
type TransactionStatus string

const (
	// Initiation outcomes
	StatusAccepted         TransactionStatus = "ACCEPTED"
	StatusRejected         TransactionStatus = "REJECTED"
	StatusDuplicateIgnored TransactionStatus = "DUPLICATE_IGNORED"

	// Intermediate
	StatusSubmitted        TransactionStatus = "SUBMITTED"
	StatusEnqueued         TransactionStatus = "ENQUEUED"
	StatusProcessing       TransactionStatus = "PROCESSING"
	StatusInReconciliation TransactionStatus = "IN_RECONCILIATION"

	// Terminal
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"

	// Lookup outcomes
	StatusFound    TransactionStatus = "FOUND"
	StatusNotFound TransactionStatus = "NOT_FOUND"
)

// Phase groups statuses by the part of the lifecycle they describe.
type Phase int

const (
	PhaseUnknown Phase = iota
	PhaseInitiation
	PhaseIntermediate
	PhaseTerminal
	PhaseLookup
)

func (p Phase) String() string {
	switch p {
	case PhaseInitiation:
		return "initiation"
	case PhaseIntermediate:
		return "intermediate"
	case PhaseTerminal:
		return "terminal"
	case PhaseLookup:
		return "lookup"
	}
	return "unknown"
}

// Phase returns the phase s belongs to. Every other predicate derives from it.
func (s TransactionStatus) Phase() Phase {
	switch s {
	case StatusAccepted, StatusRejected, StatusDuplicateIgnored:
		return PhaseInitiation
	case StatusSubmitted, StatusEnqueued, StatusProcessing, StatusInReconciliation:
		return PhaseIntermediate
	case StatusCompleted, StatusFailed:
		return PhaseTerminal
	case StatusFound, StatusNotFound:
		return PhaseLookup
	}
	return PhaseUnknown
}

func (s TransactionStatus) String() string { return string(s) }

func (s TransactionStatus) IsValid() bool {
	return s.Phase() != PhaseUnknown
}

// IsFinal reports whether s is COMPLETED or FAILED.
func (s TransactionStatus) IsFinal() bool {
	return s.Phase() == PhaseTerminal
}

// IsProcessing reports whether the deposit is still in flight: any
// intermediate status, or ACCEPTED.
func (s TransactionStatus) IsProcessing() bool {
	return s.Phase() == PhaseIntermediate || s == StatusAccepted
}

// IsSuccessfulInitiation reports whether the gateway took the request,
// either fresh (ACCEPTED) or as a replay of an earlier one (DUPLICATE_IGNORED).
func (s TransactionStatus) IsSuccessfulInitiation() bool {
	return s == StatusAccepted || s == StatusDuplicateIgnored
}

// ParseTransactionStatus converts a wire value to a TransactionStatus.
func ParseTransactionStatus(raw string) (TransactionStatus, error) {
	s := TransactionStatus(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", errors.ErrUnknownStatus, raw)
	}
	return s, nil
}

// AllStatuses returns every known status.
func AllStatuses() []TransactionStatus {
	return []TransactionStatus{
		StatusAccepted, StatusRejected, StatusDuplicateIgnored,
		StatusSubmitted, StatusEnqueued, StatusProcessing, StatusInReconciliation,
		StatusCompleted, StatusFailed,
		StatusFound, StatusNotFound,
	}
}
