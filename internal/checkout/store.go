// internal/checkout/store.go
package checkout

import (
	"context"
	"database/sql"
	"time"

	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/models"
)

// Store persists purchases and the webhook event ledger in Postgres.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const insertPurchaseQuery = `
	INSERT INTO purchases
		(id, plan_id, session_id, stripe_session_id, idempotency_key, email, amount_cents, status, report_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

func (s *Store) Create(ctx context.Context, purchase *models.Purchase) error {
	_, err := s.db.ExecContext(ctx, insertPurchaseQuery,
		purchase.ID, purchase.PlanID, purchase.SessionID,
		purchase.StripeSessionID, purchase.IdempotencyKey, purchase.Email,
		purchase.AmountCents, string(purchase.Status), purchase.ReportID,
		purchase.CreatedAt, purchase.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

const selectPurchaseColumns = `
	SELECT id, plan_id, session_id, stripe_session_id, idempotency_key, email, amount_cents, status, report_id, created_at, updated_at
	FROM purchases`

// GetByStripeSession loads the purchase a webhook event refers to.
func (s *Store) GetByStripeSession(ctx context.Context, stripeSessionID string) (*models.Purchase, error) {
	row := s.db.QueryRowContext(ctx, selectPurchaseColumns+` WHERE stripe_session_id = $1`, stripeSessionID)
	return s.scanPurchase(row, stripeSessionID)
}

func (s *Store) GetByID(ctx context.Context, id string) (*models.Purchase, error) {
	row := s.db.QueryRowContext(ctx, selectPurchaseColumns+` WHERE id = $1`, id)
	return s.scanPurchase(row, id)
}

func (s *Store) scanPurchase(row *sql.Row, ref string) (*models.Purchase, error) {
	var p models.Purchase
	var status string

	err := row.Scan(
		&p.ID, &p.PlanID, &p.SessionID, &p.StripeSessionID,
		&p.IdempotencyKey, &p.Email, &p.AmountCents, &status,
		&p.ReportID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewResourceNotFoundError("purchase", ref)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("purchases", err)
	}
	p.Status = models.PaymentStatus(status)
	return &p, nil
}

const updatePurchaseQuery = `
	UPDATE purchases
	SET stripe_session_id = $2, status = $3, report_id = $4, updated_at = $5
	WHERE id = $1`

func (s *Store) Update(ctx context.Context, purchase *models.Purchase) error {
	purchase.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, updatePurchaseQuery,
		purchase.ID, purchase.StripeSessionID, string(purchase.Status),
		purchase.ReportID, purchase.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

const selectEventQuery = `
	SELECT 1 FROM webhook_events WHERE event_id = $1`

// SeenEvent reports whether a webhook event was already fully processed.
func (s *Store) SeenEvent(ctx context.Context, eventID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, selectEventQuery, eventID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, apperrors.NewQueryExecutionFailedError("webhook_events", err)
	}
	return true, nil
}

const insertEventQuery = `
	INSERT INTO webhook_events (event_id, received_at)
	VALUES ($1, $2)
	ON CONFLICT (event_id) DO NOTHING`

// RecordEvent writes the ledger row for a processed webhook event. It must
// only be called after processing succeeded: a recorded event is skipped on
// redelivery, so recording a failed one would lose the purchase for good.
func (s *Store) RecordEvent(ctx context.Context, eventID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, insertEventQuery, eventID, time.Now().UTC())
	if err != nil {
		return false, apperrors.NewDatabaseInsertFailedError(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.NewDatabaseInsertFailedError(err)
	}
	return rows > 0, nil
}
