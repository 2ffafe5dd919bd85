package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/crownplay/internal/apperrors"
	"github.com/nkiryanov/crownplay/internal/models"
	"github.com/nkiryanov/crownplay/internal/repository"
)

type TransactionRepo struct {
	DB DBTX
}

const transactionColumns = `id, created_at, user_id, type, amount, currency, metadata`

const createTransaction = `-- name: CreateTransaction
INSERT INTO transactions (id, created_at, user_id, type, amount, currency, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + transactionColumns

func (r *TransactionRepo) CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	if t.Metadata == nil {
		t.Metadata = map[string]any{}
	}

	rows, _ := r.DB.Query(ctx, createTransaction, t.ID, t.CreatedAt, t.UserID, t.Type, t.Amount, t.Currency, t.Metadata)
	created, err := pgx.CollectOneRow(rows, rowToTransaction)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return created, apperrors.ErrUserNotFound
		}

		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const transactionsWhere = `
WHERE ($1::uuid IS NULL OR user_id = $1)
  AND (coalesce(cardinality($2::text[]), 0) = 0 OR type = ANY($2))
`

const listTransactions = `-- name: ListTransactions
SELECT ` + transactionColumns + ` FROM transactions` + transactionsWhere + `
ORDER BY created_at DESC, id DESC
LIMIT $3 OFFSET $4
`

const countTransactions = `-- name: CountTransactions
SELECT count(*) FROM transactions` + transactionsWhere

func (r *TransactionRepo) ListTransactions(ctx context.Context, filter repository.TransactionFilter, page repository.Page) ([]models.Transaction, int64, error) {
	rows, _ := r.DB.Query(ctx, listTransactions, filter.UserID, filter.Types, page.Limit, page.Offset)
	transactions, err := pgx.CollectRows(rows, rowToTransaction)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	var total int64
	err = r.DB.QueryRow(ctx, countTransactions, filter.UserID, filter.Types).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return transactions, total, nil
}

const sumByUser = `-- name: SumByUser
SELECT
	w.user_id,
	coalesce(sum(t.amount) FILTER (WHERE t.currency = 'GOLD'), 0),
	coalesce(sum(t.amount) FILTER (WHERE t.currency = 'SWEEP'), 0),
	w.gold_coins,
	w.sweep_coins
FROM wallets w
LEFT JOIN transactions t ON t.user_id = w.user_id
GROUP BY w.id
ORDER BY w.user_id
`

func (r *TransactionRepo) SumByUser(ctx context.Context) ([]models.LedgerSum, error) {
	rows, _ := r.DB.Query(ctx, sumByUser)
	sums, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.LedgerSum, error) {
		var s models.LedgerSum
		err := row.Scan(&s.UserID, &s.GoldCoins, &s.SweepCoins, &s.Wallet.Gold, &s.Wallet.Sweep)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return sums, nil
}

func rowToTransaction(row pgx.CollectableRow) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.CreatedAt, &t.UserID, &t.Type, &t.Amount, &t.Currency, &t.Metadata)
	return t, err
}
