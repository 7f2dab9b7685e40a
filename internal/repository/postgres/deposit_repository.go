package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cassiomorais/pawapay/internal/domain/catalog"
	domainErrors "github.com/cassiomorais/pawapay/internal/domain/errors"
	"github.com/cassiomorais/pawapay/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const depositColumns = `id, provider, phone_number, amount::text, currency, status,
	failure_code, failure_message, provider_transaction_id, client_reference_id,
	check_count, last_checked_at, dead_lettered_at, created_at, updated_at, completed_at`

// DepositRepository implements payment.Repository using PostgreSQL.
type DepositRepository struct {
	pool *pgxpool.Pool
}

// NewDepositRepository creates a new DepositRepository.
func NewDepositRepository(pool *pgxpool.Pool) *DepositRepository {
	return &DepositRepository{pool: pool}
}

func (r *DepositRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Create inserts a new deposit.
func (r *DepositRepository) Create(ctx context.Context, d *payment.Deposit) error {
	amount, err := amountToNumeric(d.Amount)
	if err != nil {
		return err
	}

	_, err = r.db(ctx).Exec(ctx,
		`INSERT INTO deposits
		 (id, provider, phone_number, amount, currency, status,
		  failure_code, failure_message, provider_transaction_id, client_reference_id,
		  check_count, last_checked_at, dead_lettered_at, created_at, updated_at, completed_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		d.ID, string(d.Provider), d.PhoneNumber, amount, string(d.Currency), string(d.Status),
		failureCodeParam(d.FailureCode), d.FailureMessage, d.ProviderTransactionID, d.ClientReferenceID,
		d.CheckCount, d.LastCheckedAt, d.DeadLetteredAt, d.CreatedAt, d.UpdatedAt, d.CompletedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domainErrors.ErrDepositAlreadyRecorded
		}
		return fmt.Errorf("insert deposit: %w", err)
	}
	return nil
}

// GetByID retrieves a deposit by its ID.
func (r *DepositRepository) GetByID(ctx context.Context, id uuid.UUID) (*payment.Deposit, error) {
	return scanDeposit(r.db(ctx).QueryRow(ctx,
		`SELECT `+depositColumns+` FROM deposits WHERE id = $1`, id))
}

// Update writes the mutable columns of a deposit.
func (r *DepositRepository) Update(ctx context.Context, d *payment.Deposit) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE deposits SET
		  status=$1, failure_code=$2, failure_message=$3, provider_transaction_id=$4,
		  check_count=$5, last_checked_at=$6, dead_lettered_at=$7, updated_at=$8, completed_at=$9
		 WHERE id=$10`,
		string(d.Status), failureCodeParam(d.FailureCode), d.FailureMessage, d.ProviderTransactionID,
		d.CheckCount, d.LastCheckedAt, d.DeadLetteredAt, d.UpdatedAt, d.CompletedAt, d.ID,
	)
	if err != nil {
		return fmt.Errorf("update deposit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrDepositNotFound
	}
	return nil
}

// List lists deposits with optional filters. Deposits never checked come
// first, then the least recently checked.
func (r *DepositRepository) List(ctx context.Context, f payment.ListFilter) ([]*payment.Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE 1=1`
	args := []any{}
	argIdx := 1

	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		query += fmt.Sprintf(" AND status = ANY($%d)", argIdx)
		args = append(args, statuses)
		argIdx++
	}
	if f.Provider != nil {
		query += fmt.Sprintf(" AND provider = $%d", argIdx)
		args = append(args, string(*f.Provider))
		argIdx++
	}
	if f.CheckedBefore != nil {
		query += fmt.Sprintf(" AND (last_checked_at IS NULL OR last_checked_at < $%d)", argIdx)
		args = append(args, *f.CheckedBefore)
		argIdx++
	}
	if f.ExcludeDeadLettered {
		query += " AND dead_lettered_at IS NULL"
	}

	query += " ORDER BY last_checked_at ASC NULLS FIRST, created_at ASC"

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list deposits: %w", err)
	}
	defer rows.Close()

	var deposits []*payment.Deposit
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, err
		}
		deposits = append(deposits, d)
	}
	return deposits, rows.Err()
}

// AddEvent inserts a deposit event.
func (r *DepositRepository) AddEvent(ctx context.Context, event *payment.DepositEvent) error {
	data, err := json.Marshal(event.EventData)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}
	_, err = r.db(ctx).Exec(ctx,
		`INSERT INTO deposit_events (id, deposit_id, event_type, event_data, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		event.ID, event.DepositID, event.EventType, data, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert deposit event: %w", err)
	}
	return nil
}

// GetEvents retrieves events for a deposit, oldest first.
func (r *DepositRepository) GetEvents(ctx context.Context, depositID uuid.UUID) ([]*payment.DepositEvent, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT id, deposit_id, event_type, event_data, created_at
		 FROM deposit_events WHERE deposit_id = $1 ORDER BY created_at ASC`, depositID,
	)
	if err != nil {
		return nil, fmt.Errorf("list deposit events: %w", err)
	}
	defer rows.Close()

	var events []*payment.DepositEvent
	for rows.Next() {
		e := &payment.DepositEvent{}
		var data []byte
		if err := rows.Scan(&e.ID, &e.DepositID, &e.EventType, &data, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if err := json.Unmarshal(data, &e.EventData); err != nil {
			return nil, fmt.Errorf("unmarshal event data: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func scanDeposit(s scanner) (*payment.Deposit, error) {
	d := &payment.Deposit{}
	var (
		provider    string
		amount      string
		currency    string
		status      string
		failureCode *string
	)
	err := s.Scan(
		&d.ID, &provider, &d.PhoneNumber, &amount, &currency, &status,
		&failureCode, &d.FailureMessage, &d.ProviderTransactionID, &d.ClientReferenceID,
		&d.CheckCount, &d.LastCheckedAt, &d.DeadLetteredAt, &d.CreatedAt, &d.UpdatedAt, &d.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrDepositNotFound
		}
		return nil, fmt.Errorf("scan deposit: %w", err)
	}

	d.Amount, err = numericToAmount(amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	d.Provider = catalog.Provider(provider)
	d.Currency = catalog.Currency(currency)
	d.Status = payment.TransactionStatus(status)
	if failureCode != nil {
		code := catalog.ParseFailureCode(*failureCode)
		d.FailureCode = &code
	}
	return d, nil
}

func failureCodeParam(code *catalog.FailureCode) *string {
	if code == nil {
		return nil
	}
	s := string(*code)
	return &s
}
