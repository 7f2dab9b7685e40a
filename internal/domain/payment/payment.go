package payment

import (
	"time"

	"github.com/cassiomorais/pawapay/internal/domain/catalog"
	"github.com/cassiomorais/pawapay/internal/domain/errors"
	"github.com/google/uuid"
)

// Deposit is the local journal entry of a deposit initiated through the gateway.
// The gateway stays the source of truth; the journal records what it reported.
type Deposit struct {
	ID                    uuid.UUID
	Provider              catalog.Provider
	PhoneNumber           string
	Amount                Amount
	Currency              catalog.Currency
	Status                TransactionStatus
	FailureCode           *catalog.FailureCode
	FailureMessage        *string
	ProviderTransactionID *string
	ClientReferenceID     *string
	CheckCount            int
	LastCheckedAt         *time.Time
	DeadLetteredAt        *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
	CompletedAt           *time.Time
}

// NewDeposit builds a journal entry from a validated request and the
// gateway's initiation result.
func NewDeposit(req DepositRequest, result DepositResult) (*Deposit, error) {
	id, err := uuid.Parse(req.DepositID)
	if err != nil {
		return nil, errors.NewValidationError("depositId", "must be a UUID")
	}
	if result.Status.Phase() != PhaseInitiation {
		return nil, errors.NewDomainError(
			"invalid_initial_status",
			"deposit cannot start in "+string(result.Status),
			errors.ErrInvalidStateTransition,
		)
	}

	now := time.Now()
	d := &Deposit{
		ID:          id,
		Provider:    req.Payer.AccountDetails.Provider,
		PhoneNumber: req.Payer.AccountDetails.PhoneNumber,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Status:      result.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if ref, ok := req.ClientReferenceID.Get(); ok {
		d.ClientReferenceID = &ref
	}
	if created, ok := result.Created.Get(); ok {
		d.CreatedAt = created
	}
	if fr, ok := result.FailureReason.Get(); ok {
		d.setFailure(fr)
	}
	if d.IsSettled() {
		d.CompletedAt = &now
	}
	return d, nil
}

var transitions = map[TransactionStatus][]TransactionStatus{
	StatusAccepted:         {StatusSubmitted, StatusEnqueued, StatusProcessing, StatusInReconciliation, StatusCompleted, StatusFailed},
	StatusDuplicateIgnored: {StatusAccepted, StatusSubmitted, StatusEnqueued, StatusProcessing, StatusInReconciliation, StatusCompleted, StatusFailed},
	StatusSubmitted:        {StatusEnqueued, StatusProcessing, StatusInReconciliation, StatusCompleted, StatusFailed},
	StatusEnqueued:         {StatusSubmitted, StatusProcessing, StatusInReconciliation, StatusCompleted, StatusFailed},
	StatusProcessing:       {StatusSubmitted, StatusEnqueued, StatusInReconciliation, StatusCompleted, StatusFailed},
	StatusInReconciliation: {StatusProcessing, StatusCompleted, StatusFailed},
	StatusRejected:         {}, // Terminal at initiation
	StatusCompleted:        {}, // Terminal state
	StatusFailed:           {}, // Terminal state
}

// CanTransitionTo checks if the deposit can move to the given status
func (d *Deposit) CanTransitionTo(newStatus TransactionStatus) bool {
	allowed, exists := transitions[d.Status]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == newStatus {
			return true
		}
	}
	return false
}

// Observe applies a status reported by the gateway. Reporting the current
// status again is a no-op; leaving a settled status is an error.
func (d *Deposit) Observe(details DepositDetails) (bool, error) {
	now := d.MarkChecked()

	if ptx, ok := details.ProviderTransactionID.Get(); ok {
		d.ProviderTransactionID = &ptx
	}
	if details.Status == d.Status {
		return false, nil
	}
	if !d.CanTransitionTo(details.Status) {
		return false, errors.NewDomainError(
			"invalid_transition",
			"cannot transition from "+string(d.Status)+" to "+string(details.Status),
			errors.ErrInvalidStateTransition,
		)
	}

	d.Status = details.Status
	d.UpdatedAt = now
	if fr, ok := details.FailureReason.Get(); ok {
		d.setFailure(fr)
	}
	if d.IsSettled() {
		d.CompletedAt = &now
	}
	return true, nil
}

// MarkChecked counts one more gateway lookup and returns its time.
func (d *Deposit) MarkChecked() time.Time {
	now := time.Now()
	d.CheckCount++
	d.LastCheckedAt = &now
	return now
}

// DeadLetter parks the deposit so polling stops until an operator looks at it.
func (d *Deposit) DeadLetter() {
	now := time.Now()
	d.DeadLetteredAt = &now
	d.UpdatedAt = now
}

// IsSettled reports whether the deposit can no longer change status.
func (d *Deposit) IsSettled() bool {
	return d.Status.IsFinal() || d.Status == StatusRejected
}

// NeedsPolling reports whether the gateway may still report a new status.
func (d *Deposit) NeedsPolling() bool {
	return !d.IsSettled() && d.DeadLetteredAt == nil
}

func (d *Deposit) setFailure(fr FailureReason) {
	code := fr.FailureCode
	msg := fr.FailureMessage
	d.FailureCode = &code
	d.FailureMessage = &msg
}
