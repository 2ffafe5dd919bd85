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
)

type WalletRepo struct {
	DB DBTX
}

const walletColumns = `id, user_id, gold_coins, sweep_coins, updated_at`

const createWallet = `-- name: CreateWallet
INSERT INTO wallets (id, user_id, gold_coins, sweep_coins)
VALUES ($1, $2, 0, 0)
RETURNING ` + walletColumns

func (r *WalletRepo) CreateWallet(ctx context.Context, userID uuid.UUID) (models.Wallet, error) {
	rows, _ := r.DB.Query(ctx, createWallet, uuid.New(), userID)
	wallet, err := pgx.CollectOneRow(rows, rowToWallet)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return wallet, fmt.Errorf("user wallet already exists: %w", err)
		}
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return wallet, apperrors.ErrUserNotFound
		}

		return wallet, fmt.Errorf("db error: %w", err)
	}

	return wallet, nil
}

const getWallet = `-- name: GetWallet
SELECT ` + walletColumns + ` FROM wallets
WHERE user_id = $1
`

func (r *WalletRepo) GetWallet(ctx context.Context, userID uuid.UUID, forUpdate bool) (models.Wallet, error) {
	query := getWallet
	if forUpdate {
		query += " FOR UPDATE"
	}

	rows, _ := r.DB.Query(ctx, query, userID)
	return collectWallet(rows)
}

// Increments are computed by the database so concurrent adjustments never lose updates
const adjustBalance = `-- name: AdjustBalance
UPDATE wallets
SET gold_coins = gold_coins + $2, sweep_coins = sweep_coins + $3, updated_at = clock_timestamp()
WHERE user_id = $1
RETURNING ` + walletColumns

func (r *WalletRepo) AdjustBalance(ctx context.Context, userID uuid.UUID, delta models.BalanceDelta) (models.Wallet, error) {
	rows, _ := r.DB.Query(ctx, adjustBalance, userID, delta.Gold, delta.Sweep)
	return collectWallet(rows)
}

func (r *WalletRepo) Debit(ctx context.Context, userID uuid.UUID, currency string, amount decimal.Decimal) (models.Wallet, error) {
	wallet, err := r.GetWallet(ctx, userID, true)
	if err != nil {
		return wallet, err
	}

	if wallet.Balance(currency).LessThan(amount) {
		return wallet, apperrors.ErrBalanceInsufficient
	}

	delta := models.BalanceDelta{Gold: decimal.Zero, Sweep: decimal.Zero}
	switch currency {
	case models.CurrencyGold:
		delta.Gold = amount.Neg()
	case models.CurrencySweep:
		delta.Sweep = amount.Neg()
	default:
		return wallet, fmt.Errorf("unknown currency %q", currency)
	}

	return r.AdjustBalance(ctx, userID, delta)
}

func collectWallet(rows pgx.Rows) (models.Wallet, error) {
	wallet, err := pgx.CollectOneRow(rows, rowToWallet)

	switch {
	case err == nil:
		return wallet, nil
	case errors.Is(err, pgx.ErrNoRows):
		return wallet, apperrors.ErrWalletNotFound
	default:
		return wallet, fmt.Errorf("db error: %w", err)
	}
}

func rowToWallet(row pgx.CollectableRow) (models.Wallet, error) {
	var w models.Wallet
	err := row.Scan(&w.ID, &w.UserID, &w.GoldCoins, &w.SweepCoins, &w.UpdatedAt)
	return w, err
}
