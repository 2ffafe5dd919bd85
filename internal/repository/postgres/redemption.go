package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/crownplay/internal/apperrors"
	"github.com/nkiryanov/crownplay/internal/models"
	"github.com/nkiryanov/crownplay/internal/repository"
)

type RedemptionRepo struct {
	DB DBTX
}

const redemptionColumns = `id, created_at, updated_at, user_id, amount, status, notes`

const createRedemption = `-- name: CreateRedemption
INSERT INTO redemption_requests (id, user_id, amount, status)
VALUES ($1, $2, $3, 'PENDING')
RETURNING ` + redemptionColumns

func (r *RedemptionRepo) CreateRedemption(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (models.Redemption, error) {
	rows, _ := r.DB.Query(ctx, createRedemption, uuid.New(), userID, amount)
	redemption, err := pgx.CollectOneRow(rows, rowToRedemption)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return redemption, apperrors.ErrUserNotFound
		}
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation {
			return redemption, apperrors.ErrInvalidAmount
		}

		return redemption, fmt.Errorf("db error: %w", err)
	}

	return redemption, nil
}

const getRedemption = `-- name: GetRedemption
SELECT ` + redemptionColumns + ` FROM redemption_requests
WHERE id = $1
`

func (r *RedemptionRepo) GetRedemption(ctx context.Context, id uuid.UUID, forUpdate bool) (models.Redemption, error) {
	query := getRedemption
	if forUpdate {
		query += " FOR UPDATE"
	}

	rows, _ := r.DB.Query(ctx, query, id)
	return collectRedemption(rows)
}

const updateRedemptionStatus = `-- name: UpdateRedemptionStatus
UPDATE redemption_requests
SET status = $2, notes = coalesce($3, notes), updated_at = clock_timestamp()
WHERE id = $1
RETURNING ` + redemptionColumns

func (r *RedemptionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, notes *string) (models.Redemption, error) {
	rows, _ := r.DB.Query(ctx, updateRedemptionStatus, id, status, notes)
	return collectRedemption(rows)
}

const redemptionsWhere = `
WHERE ($1::uuid IS NULL OR user_id = $1)
  AND ($2 = '' OR status = $2)
`

const listRedemptions = `-- name: ListRedemptions
SELECT ` + redemptionColumns + ` FROM redemption_requests` + redemptionsWhere + `
ORDER BY created_at DESC, id DESC
LIMIT $3 OFFSET $4
`

const countRedemptions = `-- name: CountRedemptions
SELECT count(*) FROM redemption_requests` + redemptionsWhere

func (r *RedemptionRepo) ListRedemptions(ctx context.Context, filter repository.RedemptionFilter, page repository.Page) ([]models.Redemption, int64, error) {
	rows, _ := r.DB.Query(ctx, listRedemptions, filter.UserID, filter.Status, page.Limit, page.Offset)
	redemptions, err := pgx.CollectRows(rows, rowToRedemption)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	var total int64
	if err := r.DB.QueryRow(ctx, countRedemptions, filter.UserID, filter.Status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return redemptions, total, nil
}

func collectRedemption(rows pgx.Rows) (models.Redemption, error) {
	redemption, err := pgx.CollectOneRow(rows, rowToRedemption)

	switch {
	case err == nil:
		return redemption, nil
	case errors.Is(err, pgx.ErrNoRows):
		return redemption, apperrors.ErrRedemptionNotFound
	default:
		return redemption, fmt.Errorf("db error: %w", err)
	}
}

func rowToRedemption(row pgx.CollectableRow) (models.Redemption, error) {
	var r models.Redemption
	err := row.Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt, &r.UserID, &r.Amount, &r.Status, &r.Notes)
	return r, err
}
