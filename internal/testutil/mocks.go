package testutil

import (
	"context"
	"sync"

	domainErrors "github.com/cassiomorais/pawapay/internal/domain/errors"
	"github.com/cassiomorais/pawapay/internal/domain/payment"
	"github.com/google/uuid"
)

// --- Deposit Repository Mock ---

// MockDepositRepository is an in-memory payment.Repository. Setting a Func
// field overrides the default behavior of that method.
type MockDepositRepository struct {
	mu       sync.Mutex
	deposits map[uuid.UUID]*payment.Deposit
	events   map[uuid.UUID][]*payment.DepositEvent

	CreateFunc    func(ctx context.Context, d *payment.Deposit) error
	GetByIDFunc   func(ctx context.Context, id uuid.UUID) (*payment.Deposit, error)
	UpdateFunc    func(ctx context.Context, d *payment.Deposit) error
	ListFunc      func(ctx context.Context, filter payment.ListFilter) ([]*payment.Deposit, error)
	AddEventFunc  func(ctx context.Context, event *payment.DepositEvent) error
	GetEventsFunc func(ctx context.Context, depositID uuid.UUID) ([]*payment.DepositEvent, error)
}

func NewMockDepositRepository() *MockDepositRepository {
	return &MockDepositRepository{
		deposits: make(map[uuid.UUID]*payment.Deposit),
		events:   make(map[uuid.UUID][]*payment.DepositEvent),
	}
}

// AddDeposit seeds the repository.
func (m *MockDepositRepository) AddDeposit(d *payment.Deposit) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deposits[d.ID] = d
}

func (m *MockDepositRepository) Create(ctx context.Context, d *payment.Deposit) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, d)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.deposits[d.ID]; ok {
		return domainErrors.ErrDepositAlreadyRecorded
	}
	m.deposits[d.ID] = d
	return nil
}

func (m *MockDepositRepository) GetByID(ctx context.Context, id uuid.UUID) (*payment.Deposit, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deposits[id]
	if !ok {
		return nil, domainErrors.ErrDepositNotFound
	}
	return d, nil
}

func (m *MockDepositRepository) Update(ctx context.Context, d *payment.Deposit) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, d)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.deposits[d.ID]; !ok {
		return domainErrors.ErrDepositNotFound
	}
	m.deposits[d.ID] = d
	return nil
}

// List returns stored deposits matching the filter. Ordering is not applied.
func (m *MockDepositRepository) List(ctx context.Context, filter payment.ListFilter) ([]*payment.Deposit, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*payment.Deposit
	for _, d := range m.deposits {
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, d.Status) {
			continue
		}
		if filter.CheckedBefore != nil && d.LastCheckedAt != nil && !d.LastCheckedAt.Before(*filter.CheckedBefore) {
			continue
		}
		if filter.ExcludeDeadLettered && d.DeadLetteredAt != nil {
			continue
		}
		out = append(out, d)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (m *MockDepositRepository) AddEvent(ctx context.Context, event *payment.DepositEvent) error {
	if m.AddEventFunc != nil {
		return m.AddEventFunc(ctx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[event.DepositID] = append(m.events[event.DepositID], event)
	return nil
}

func (m *MockDepositRepository) GetEvents(ctx context.Context, depositID uuid.UUID) ([]*payment.DepositEvent, error) {
	if m.GetEventsFunc != nil {
		return m.GetEventsFunc(ctx, depositID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[depositID], nil
}

func containsStatus(statuses []payment.TransactionStatus, s payment.TransactionStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// --- Transaction Manager Mock ---

// MockTransactionManager runs fn directly unless WithTransactionFunc is set.
type MockTransactionManager struct {
	WithTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.WithTransactionFunc != nil {
		return m.WithTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

// --- Gateway Mock ---

// MockGateway stands in for the gateway client. Unset funcs return zero
// results; StatusCalls counts status lookups.
type MockGateway struct {
	mu          sync.Mutex
	StatusCalls int

	PredictProviderFunc          func(ctx context.Context, phoneNumber string) (payment.PredictProviderResult, error)
	CreatePaymentPageFunc        func(ctx context.Context, req payment.PaymentPageRequest) (payment.PaymentPageResult, error)
	CreatePaymentPageSessionFunc func(ctx context.Context, req payment.PaymentPageRequest) (payment.PaymentPageResult, error)
	InitiateDepositFunc          func(ctx context.Context, req payment.DepositRequest) (payment.DepositResult, error)
	CheckDepositStatusFunc       func(ctx context.Context, depositID string) (payment.DepositStatusResult, error)
}

func (m *MockGateway) PredictProvider(ctx context.Context, phoneNumber string) (payment.PredictProviderResult, error) {
	if m.PredictProviderFunc != nil {
		return m.PredictProviderFunc(ctx, phoneNumber)
	}
	return nil, nil
}

func (m *MockGateway) CreatePaymentPage(ctx context.Context, req payment.PaymentPageRequest) (payment.PaymentPageResult, error) {
	if m.CreatePaymentPageFunc != nil {
		return m.CreatePaymentPageFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockGateway) CreatePaymentPageSession(ctx context.Context, req payment.PaymentPageRequest) (payment.PaymentPageResult, error) {
	if m.CreatePaymentPageSessionFunc != nil {
		return m.CreatePaymentPageSessionFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockGateway) InitiateDeposit(ctx context.Context, req payment.DepositRequest) (payment.DepositResult, error) {
	if m.InitiateDepositFunc != nil {
		return m.InitiateDepositFunc(ctx, req)
	}
	return payment.DepositResult{}, nil
}

func (m *MockGateway) CheckDepositStatus(ctx context.Context, depositID string) (payment.DepositStatusResult, error) {
	m.mu.Lock()
	m.StatusCalls++
	m.mu.Unlock()
	if m.CheckDepositStatusFunc != nil {
		return m.CheckDepositStatusFunc(ctx, depositID)
	}
	return payment.NotFoundResult(), nil
}

// --- Status Cache Mock ---

// MockStatusCache is an in-memory status cache keeping final results only.
type MockStatusCache struct {
	mu      sync.Mutex
	entries map[string]payment.DepositStatusResult

	GetErr error
}

func NewMockStatusCache() *MockStatusCache {
	return &MockStatusCache{entries: make(map[string]payment.DepositStatusResult)}
}

func (m *MockStatusCache) Get(ctx context.Context, depositID string) (payment.DepositStatusResult, bool, error) {
	if m.GetErr != nil {
		return payment.DepositStatusResult{}, false, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.entries[depositID]
	return r, ok, nil
}

func (m *MockStatusCache) Put(ctx context.Context, depositID string, result payment.DepositStatusResult) (bool, error) {
	if !result.IsFinal() {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[depositID] = result
	return true, nil
}

func (m *MockStatusCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// --- Event Publisher Mock ---

// PublishedEvent is one event captured by MockPublisher.
type PublishedEvent struct {
	DepositID string
	EventType string
	Reason    string
	Data      map[string]any
}

// MockPublisher records published events. A set DLQErr fails PublishToDLQ.
type MockPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
	DLQ    []PublishedEvent
	DLQErr error
}

func (m *MockPublisher) PublishStatusEvent(ctx context.Context, depositID string, eventType string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{DepositID: depositID, EventType: eventType, Data: data})
	return nil
}

func (m *MockPublisher) PublishToDLQ(ctx context.Context, depositID string, reason string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DLQErr != nil {
		return m.DLQErr
	}
	m.DLQ = append(m.DLQ, PublishedEvent{DepositID: depositID, Reason: reason, Data: data})
	return nil
}

// --- Locker Mock ---

// MockLocker is an in-process lock table.
type MockLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewMockLocker() *MockLocker {
	return &MockLocker{held: make(map[string]bool)}
}

// Hold marks key as locked by someone else.
func (m *MockLocker) Hold(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held[key] = true
}

func (m *MockLocker) TryLock(ctx context.Context, key string) (func(context.Context) error, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[key] {
		return nil, nil
	}
	m.held[key] = true
	return func(context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.held, key)
		return nil
	}, nil
}
