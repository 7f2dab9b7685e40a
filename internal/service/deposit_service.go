package service

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/cassiomorais/pawapay/internal/domain/errors"
	"github.com/cassiomorais/pawapay/internal/domain/payment"
	"github.com/cassiomorais/pawapay/internal/infrastructure/observability"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Gateway is the subset of the gateway client the services depend on.
type Gateway interface {
	PredictProvider(ctx context.Context, phoneNumber string) (payment.PredictProviderResult, error)
	CreatePaymentPage(ctx context.Context, req payment.PaymentPageRequest) (payment.PaymentPageResult, error)
	CreatePaymentPageSession(ctx context.Context, req payment.PaymentPageRequest) (payment.PaymentPageResult, error)
	InitiateDeposit(ctx context.Context, req payment.DepositRequest) (payment.DepositResult, error)
	CheckDepositStatus(ctx context.Context, depositID string) (payment.DepositStatusResult, error)
}

// StatusCache stores status lookups for deposits in a final status.
type StatusCache interface {
	Get(ctx context.Context, depositID string) (payment.DepositStatusResult, bool, error)
	Put(ctx context.Context, depositID string, result payment.DepositStatusResult) (bool, error)
}

// Observation is what one status check changed in the journal.
type Observation struct {
	Result   payment.DepositStatusResult
	Deposit  *payment.Deposit
	Previous payment.TransactionStatus
	Changed  bool
}

// DepositService fronts the gateway client and keeps the deposit journal in
// step with what the gateway reports.
type DepositService struct {
	gateway   Gateway
	repo      payment.Repository
	txManager TransactionManager
	cache     StatusCache
	metrics   *observability.Metrics
	logger    zerolog.Logger
}

type DepositServiceOption func(*DepositService)

// WithStatusCache enables caching of final status lookups.
func WithStatusCache(cache StatusCache) DepositServiceOption {
	return func(s *DepositService) {
		s.cache = cache
	}
}

func WithMetrics(m *observability.Metrics) DepositServiceOption {
	return func(s *DepositService) {
		s.metrics = m
	}
}

func WithLogger(logger zerolog.Logger) DepositServiceOption {
	return func(s *DepositService) {
		s.logger = logger
	}
}

// NewDepositService creates a new DepositService.
func NewDepositService(
	gateway Gateway,
	repo payment.Repository,
	txManager TransactionManager,
	opts ...DepositServiceOption,
) *DepositService {
	s := &DepositService{
		gateway:   gateway,
		repo:      repo,
		txManager: txManager,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DepositService) PredictProvider(ctx context.Context, phoneNumber string) (payment.PredictProviderResult, error) {
	return s.gateway.PredictProvider(ctx, phoneNumber)
}

// CreatePaymentPage creates a hosted payment page. With session set, metadata
// items are expected to wrap their fields under "data".
func (s *DepositService) CreatePaymentPage(ctx context.Context, req payment.PaymentPageRequest, session bool) (payment.PaymentPageResult, error) {
	if session {
		return s.gateway.CreatePaymentPageSession(ctx, req)
	}
	return s.gateway.CreatePaymentPage(ctx, req)
}

// InitiateDeposit sends the deposit to the gateway and journals the outcome.
// A journal failure is logged, never returned: the gateway already holds the
// deposit and the caller needs its answer.
func (s *DepositService) InitiateDeposit(ctx context.Context, req payment.DepositRequest) (payment.DepositResult, error) {
	payer, err := req.Payer.Validate()
	if err != nil {
		return payment.DepositResult{}, err
	}
	req.Payer = payer

	result, err := s.gateway.InitiateDeposit(ctx, req)
	if err != nil {
		return result, err
	}
	if s.metrics != nil {
		s.metrics.DepositsTotal.WithLabelValues(string(result.Status)).Inc()
	}

	log := s.logger.With().Str("deposit_id", req.DepositID).Str("status", string(result.Status)).Logger()
	if err := s.journal(ctx, req, result); err != nil {
		log.Error().Err(err).Msg("Failed to journal deposit")
	} else {
		log.Info().Msg("Deposit initiated")
	}
	return result, nil
}

func (s *DepositService) journal(ctx context.Context, req payment.DepositRequest, result payment.DepositResult) error {
	d, err := payment.NewDeposit(req, result)
	if err != nil {
		return err
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, d); err != nil {
			return err
		}
		return s.repo.AddEvent(txCtx, payment.NewDepositEvent(d.ID, payment.EventInitiated, map[string]any{
			"status":   string(result.Status),
			"amount":   d.Amount.String(),
			"currency": string(d.Currency),
			"provider": string(d.Provider),
		}))
	})
	if errors.Is(err, domainErrors.ErrDepositAlreadyRecorded) && result.IsDuplicateIgnored() {
		return nil
	}
	return err
}

// CheckDepositStatus returns the gateway's view of a deposit, answering from
// the cache once the deposit is final.
func (s *DepositService) CheckDepositStatus(ctx context.Context, depositID string) (payment.DepositStatusResult, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, depositID)
		if err != nil {
			s.logger.Warn().Err(err).Str("deposit_id", depositID).Msg("Status cache read failed")
		}
		s.countCacheLookup(ok)
		if ok {
			return cached, nil
		}
	}

	result, err := s.gateway.CheckDepositStatus(ctx, depositID)
	if err != nil {
		return result, err
	}

	if details, ok := result.Data.Get(); ok {
		if _, err := s.record(ctx, details); err != nil {
			s.logger.Error().Err(err).Str("deposit_id", depositID).Msg("Failed to record status observation")
		}
	}
	s.remember(ctx, depositID, result)
	return result, nil
}

// Refresh checks a journaled deposit with the gateway, skipping the cache,
// and records what the gateway reports.
func (s *DepositService) Refresh(ctx context.Context, id uuid.UUID) (Observation, error) {
	result, err := s.gateway.CheckDepositStatus(ctx, id.String())
	if err != nil {
		return Observation{}, err
	}

	details, ok := result.Data.Get()
	if !ok {
		if err := s.markChecked(ctx, id); err != nil {
			s.logger.Warn().Err(err).Str("deposit_id", id.String()).Msg("Failed to record status check")
		}
		return Observation{Result: result}, nil
	}
	obs, err := s.record(ctx, details)
	obs.Result = result
	if err != nil {
		return obs, err
	}
	s.remember(ctx, id.String(), result)
	return obs, nil
}

// record applies an observed status to the journal entry, if there is one.
func (s *DepositService) record(ctx context.Context, details payment.DepositDetails) (Observation, error) {
	var (
		obs      Observation
		rejected error
	)

	id, err := uuid.Parse(details.DepositID)
	if err != nil {
		return obs, nil
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		d, err := s.repo.GetByID(txCtx, id)
		if errors.Is(err, domainErrors.ErrDepositNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		obs.Deposit = d
		obs.Previous = d.Status
		changed, err := d.Observe(details)
		if err != nil {
			// The check is recorded even when the transition is refused.
			rejected = err
			return s.repo.Update(txCtx, d)
		}
		obs.Changed = changed

		if err := s.repo.Update(txCtx, d); err != nil {
			return err
		}
		if !changed {
			return nil
		}
		data := map[string]any{
			"from": string(obs.Previous),
			"to":   string(d.Status),
		}
		if d.FailureCode != nil {
			data["failure_code"] = string(*d.FailureCode)
		}
		return s.repo.AddEvent(txCtx, payment.NewDepositEvent(d.ID, payment.EventStatusObserved, data))
	})
	if err != nil {
		return obs, fmt.Errorf("record deposit %s: %w", id, err)
	}
	if rejected != nil {
		return obs, fmt.Errorf("record deposit %s: %w", id, rejected)
	}

	if obs.Changed && s.metrics != nil {
		s.metrics.DepositTransitions.WithLabelValues(string(obs.Previous), string(obs.Deposit.Status)).Inc()
	}
	return obs, nil
}

// markChecked records a lookup that carried no deposit details.
func (s *DepositService) markChecked(ctx context.Context, id uuid.UUID) error {
	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		d, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		d.MarkChecked()
		return s.repo.Update(txCtx, d)
	})
}

// DeadLetter parks a journaled deposit so the poller stops checking it.
func (s *DepositService) DeadLetter(ctx context.Context, id uuid.UUID, reason string) error {
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		d, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		d.DeadLetter()
		if err := s.repo.Update(txCtx, d); err != nil {
			return err
		}
		return s.repo.AddEvent(txCtx, payment.NewDepositEvent(d.ID, payment.EventDeadLettered, map[string]any{
			"status": string(d.Status),
			"reason": reason,
		}))
	})
	if err != nil {
		return fmt.Errorf("dead-letter deposit %s: %w", id, err)
	}
	return nil
}

func (s *DepositService) remember(ctx context.Context, depositID string, result payment.DepositStatusResult) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Put(ctx, depositID, result); err != nil {
		s.logger.Warn().Err(err).Str("deposit_id", depositID).Msg("Status cache write failed")
	}
}

func (s *DepositService) countCacheLookup(hit bool) {
	if s.metrics == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	s.metrics.StatusCacheLookups.WithLabelValues(result).Inc()
}

// Deposit returns a journal entry with its events.
func (s *DepositService) Deposit(ctx context.Context, id uuid.UUID) (*payment.Deposit, []*payment.DepositEvent, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	events, err := s.repo.GetEvents(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return d, events, nil
}
