package payment

import (
	"context"
	"time"

	"github.com/cassiomorais/pawapay/internal/domain/catalog"
	"github.com/google/uuid"
)

// Repository defines the interface for deposit journal persistence
type Repository interface {
	// Create records a new deposit. It returns ErrDepositAlreadyRecorded when
	// the id is already journaled.
	Create(ctx context.Context, deposit *Deposit) error

	// GetByID retrieves a deposit by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Deposit, error)

	// Update updates an existing deposit
	Update(ctx context.Context, deposit *Deposit) error

	// List lists deposits with filters
	List(ctx context.Context, filter ListFilter) ([]*Deposit, error)

	// AddEvent adds a status observation for audit trail
	AddEvent(ctx context.Context, event *DepositEvent) error

	// GetEvents retrieves events for a deposit
	GetEvents(ctx context.Context, depositID uuid.UUID) ([]*DepositEvent, error)
}

// ListFilter defines filters for listing deposits
type ListFilter struct {
	Statuses      []TransactionStatus
	Provider      *catalog.Provider
	CheckedBefore *time.Time
	Limit         int
	Offset        int

	// ExcludeDeadLettered drops deposits parked after an impossible transition.
	ExcludeDeadLettered bool
}

// PendingFilter selects deposits the gateway may still move forward.
func PendingFilter(limit int, checkedBefore time.Time) ListFilter {
	return ListFilter{
		Statuses: []TransactionStatus{
			StatusAccepted, StatusDuplicateIgnored,
			StatusSubmitted, StatusEnqueued, StatusProcessing, StatusInReconciliation,
		},
		CheckedBefore:       &checkedBefore,
		ExcludeDeadLettered: true,
		Limit:               limit,
	}
}

// Event types
const (
	EventInitiated      = "deposit.initiated"
	EventStatusObserved = "deposit.status_observed"
	EventDeadLettered   = "deposit.dead_lettered"
)

// DepositEvent represents an event in the deposit lifecycle
type DepositEvent struct {
	ID        uuid.UUID
	DepositID uuid.UUID
	EventType string
	EventData map[string]any
	CreatedAt time.Time
}

// NewDepositEvent creates an event for the given deposit.
func NewDepositEvent(depositID uuid.UUID, eventType string, data map[string]any) *DepositEvent {
	return &DepositEvent{
		ID:        uuid.New(),
		DepositID: depositID,
		EventType: eventType,
		EventData: data,
		CreatedAt: time.Now(),
	}
}
