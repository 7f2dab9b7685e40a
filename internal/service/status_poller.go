package service

import (
	"context"
	"errors"
	"time"

	domainErrors "github.com/cassiomorais/pawapay/internal/domain/errors"
	"github.com/cassiomorais/pawapay/internal/domain/payment"
	"github.com/cassiomorais/pawapay/internal/infrastructure/observability"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Locker takes a non-blocking lock. A nil release means the lock is held elsewhere.
type Locker interface {
	TryLock(ctx context.Context, key string) (release func(context.Context) error, err error)
}

// EventPublisher fans deposit events out to other services.
type EventPublisher interface {
	PublishStatusEvent(ctx context.Context, depositID string, eventType string, data map[string]any) error
	PublishToDLQ(ctx context.Context, depositID string, reason string, data map[string]any) error
}

type PollerConfig struct {
	Interval     time.Duration
	RecheckAfter time.Duration
	BatchSize    int
	Concurrency  int
	Stream       string
}

// StatusPoller drives journaled deposits to a final status by checking them
// with the gateway until it reports one.
type StatusPoller struct {
	deposits  *DepositService
	repo      payment.Repository
	locker    Locker
	publisher EventPublisher
	cfg       PollerConfig
	metrics   *observability.Metrics
	logger    zerolog.Logger
}

func NewStatusPoller(
	deposits *DepositService,
	repo payment.Repository,
	locker Locker,
	publisher EventPublisher,
	cfg PollerConfig,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *StatusPoller {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	return &StatusPoller{
		deposits:  deposits,
		repo:      repo,
		locker:    locker,
		publisher: publisher,
		cfg:       cfg,
		metrics:   metrics,
		logger:    logger,
	}
}

// Run polls every interval until ctx is done.
func (p *StatusPoller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		if _, err := p.PollOnce(ctx); err != nil {
			p.logger.Error().Err(err).Msg("Status poll failed")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// PollOnce checks one batch of unsettled deposits and returns how many were
// checked. Failures on single deposits are logged, not returned.
func (p *StatusPoller) PollOnce(ctx context.Context) (int, error) {
	start := time.Now()
	pending, err := p.repo.List(ctx, payment.PendingFilter(p.cfg.BatchSize, start.Add(-p.cfg.RecheckAfter)))
	if err != nil {
		return 0, err
	}
	if p.metrics != nil {
		p.metrics.PendingDeposits.Set(float64(len(pending)))
		defer func() {
			p.metrics.WorkerProcessingDuration.WithLabelValues(p.cfg.Stream).Observe(time.Since(start).Seconds())
		}()
	}

	var g errgroup.Group
	g.SetLimit(p.cfg.Concurrency)

	checked := make([]bool, len(pending))
	for i, d := range pending {
		g.Go(func() error {
			checked[i] = p.poll(ctx, d)
			return nil
		})
	}
	_ = g.Wait()

	n := 0
	for _, ok := range checked {
		if ok {
			n++
		}
	}
	return n, nil
}

// poll checks one deposit under its lock and reports whether it was checked.
func (p *StatusPoller) poll(ctx context.Context, d *payment.Deposit) bool {
	id := d.ID.String()
	log := p.logger.With().Str("deposit_id", id).Logger()

	release, err := p.locker.TryLock(ctx, "deposit:"+id)
	if err != nil {
		log.Warn().Err(err).Msg("Could not take deposit lock")
		return false
	}
	if release == nil {
		log.Debug().Msg("Deposit locked elsewhere, skipping")
		return false
	}
	defer func() {
		if err := release(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to release deposit lock")
		}
	}()

	obs, err := p.deposits.Refresh(ctx, d.ID)
	switch {
	case errors.Is(err, domainErrors.ErrInvalidStateTransition):
		log.Error().Err(err).Msg("Gateway reported an impossible transition")
		p.deadLetter(ctx, d.ID, err, obs)
		p.count("dead_lettered")
		return true
	case err != nil:
		log.Error().Err(err).Msg("Status check failed")
		p.count("error")
		return false
	}

	if obs.Result.IsNotFound() {
		log.Warn().Msg("Journaled deposit unknown to gateway, retrying after recheck delay")
		p.count("not_found")
		return true
	}
	if obs.Changed && obs.Deposit != nil {
		p.publish(ctx, obs)
	}
	p.count("success")
	return true
}

func (p *StatusPoller) publish(ctx context.Context, obs Observation) {
	d := obs.Deposit
	data := map[string]any{
		"from":     string(obs.Previous),
		"to":       string(d.Status),
		"amount":   d.Amount.String(),
		"currency": string(d.Currency),
		"provider": string(d.Provider),
		"final":    d.IsSettled(),
	}
	if d.FailureCode != nil {
		data["failure_code"] = string(*d.FailureCode)
	}
	if d.ProviderTransactionID != nil {
		data["provider_transaction_id"] = *d.ProviderTransactionID
	}
	if err := p.publisher.PublishStatusEvent(ctx, d.ID.String(), payment.EventStatusObserved, data); err != nil {
		p.logger.Error().Err(err).Str("deposit_id", d.ID.String()).Msg("Failed to publish status event")
	}
}

func (p *StatusPoller) deadLetter(ctx context.Context, depositID uuid.UUID, cause error, obs Observation) {
	id := depositID.String()
	data := map[string]any{"status": string(obs.Previous)}
	if details, ok := obs.Result.Data.Get(); ok {
		data["reported_status"] = string(details.Status)
	}
	if err := p.publisher.PublishToDLQ(ctx, id, cause.Error(), data); err != nil {
		p.logger.Error().Err(err).Str("deposit_id", id).Msg("Failed to publish to DLQ")
		return
	}
	if err := p.deposits.DeadLetter(ctx, depositID, cause.Error()); err != nil {
		p.logger.Error().Err(err).Str("deposit_id", id).Msg("Failed to park dead-lettered deposit")
	}
}

func (p *StatusPoller) count(status string) {
	if p.metrics != nil {
		p.metrics.WorkerMessagesProcessed.WithLabelValues(p.cfg.Stream, status).Inc()
	}
}
