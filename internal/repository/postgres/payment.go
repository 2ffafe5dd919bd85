package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/crownplay/internal/apperrors"
	"github.com/nkiryanov/crownplay/internal/models"
	"github.com/nkiryanov/crownplay/internal/repository"
)

type PaymentRepo struct {
	DB DBTX
}

const paymentColumns = `id, created_at, user_id, package_id, provider, external_id, external_order_id,
	amount_cents, status, gold_coins_awarded, sweep_coins_awarded, metadata`

// Create payment with provided options
// If payment with the external id already exists return it as is
const createPayment = `-- name: CreatePayment
WITH inserted AS (
	INSERT INTO payments (` + paymentColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (external_id) DO NOTHING
	RETURNING ` + paymentColumns + `
)
SELECT ` + paymentColumns + ` FROM inserted
UNION ALL
SELECT ` + paymentColumns + ` FROM payments WHERE external_id = $6
`

const getPaymentByExternalID = `-- name: GetPaymentByExternalID
SELECT ` + paymentColumns + ` FROM payments
WHERE external_id = $1
`

func (r *PaymentRepo) CreatePayment(ctx context.Context, p models.Payment) (models.Payment, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.Metadata == nil {
		p.Metadata = map[string]any{}
	}

	rows, _ := r.DB.Query(ctx, createPayment,
		p.ID, p.CreatedAt, p.UserID, p.PackageID, p.Provider, p.ExternalID, p.ExternalOrderID,
		p.AmountCents, p.Status, p.GoldCoinsAwarded, p.SweepCoinsAwarded, p.Metadata,
	)
	stored, err := pgx.CollectOneRow(rows, rowToPayment)

	// Row committed by a concurrent transaction is not visible to the statement snapshot; look again
	if errors.Is(err, pgx.ErrNoRows) {
		rows, _ = r.DB.Query(ctx, getPaymentByExternalID, p.ExternalID)
		stored, err = pgx.CollectOneRow(rows, rowToPayment)
	}

	switch {
	case err != nil:
		return stored, fmt.Errorf("db error: %w", err)
	case stored.ID == p.ID:
		return stored, nil
	default:
		return stored, apperrors.ErrPaymentDuplicate
	}
}

const listPayments = `-- name: ListPayments
SELECT ` + paymentColumns + ` FROM payments
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`

const countPayments = `-- name: CountPayments
SELECT count(*) FROM payments WHERE user_id = $1
`

func (r *PaymentRepo) ListPayments(ctx context.Context, userID uuid.UUID, page repository.Page) ([]models.Payment, int64, error) {
	rows, _ := r.DB.Query(ctx, listPayments, userID, page.Limit, page.Offset)
	payments, err := pgx.CollectRows(rows, rowToPayment)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	var total int64
	if err := r.DB.QueryRow(ctx, countPayments, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return payments, total, nil
}

func rowToPayment(row pgx.CollectableRow) (models.Payment, error) {
	var p models.Payment
	err := row.Scan(
		&p.ID, &p.CreatedAt, &p.UserID, &p.PackageID, &p.Provider, &p.ExternalID, &p.ExternalOrderID,
		&p.AmountCents, &p.Status, &p.GoldCoinsAwarded, &p.SweepCoinsAwarded, &p.Metadata,
	)
	return p, err
}
