package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/crownplay/internal/apperrors"
	"github.com/nkiryanov/crownplay/internal/models"
	"github.com/nkiryanov/crownplay/internal/repository"
)

type UserRepo struct {
	DB DBTX
}

const userColumns = `id, created_at, email, password_hash, name, role, status`

const createUser = `-- name: CreateUser
INSERT INTO users (id, email, password_hash, name, role)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + userColumns

func (r *UserRepo) CreateUser(ctx context.Context, params repository.CreateUserParams) (models.User, error) {
	role := params.Role
	if role == "" {
		role = models.RolePlayer
	}

	rows, _ := r.DB.Query(ctx, createUser, uuid.New(), params.Email, params.HashedPassword, params.Name, role)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return user, apperrors.ErrUserAlreadyExists
		}

		return user, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const getUserByID = `-- name: GetUserByID
SELECT ` + userColumns + ` FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, id)
	return collectUser(rows)
}

const getUserByEmail = `-- name: GetUserByEmail
SELECT ` + userColumns + ` FROM users
WHERE lower(email) = lower($1)
`

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByEmail, email)
	return collectUser(rows)
}

const setUserStatus = `-- name: SetUserStatus
UPDATE users SET status = $2
WHERE id = $1
RETURNING ` + userColumns

func (r *UserRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, setUserStatus, id, status)
	return collectUser(rows)
}

const setUserRole = `-- name: SetUserRole
UPDATE users SET role = $2
WHERE id = $1
RETURNING ` + userColumns

func (r *UserRepo) SetRole(ctx context.Context, id uuid.UUID, role string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, setUserRole, id, role)
	return collectUser(rows)
}

const listUsers = `-- name: ListUsers
SELECT
	u.id, u.created_at, u.email, u.password_hash, u.name, u.role, u.status,
	w.id, w.user_id, w.gold_coins, w.sweep_coins, w.updated_at,
	count(*) OVER () AS total
FROM users u
JOIN wallets w ON w.user_id = u.id
WHERE $1 = '' OR u.email ILIKE '%' || $1 || '%' OR u.name ILIKE '%' || $1 || '%'
ORDER BY u.created_at DESC, u.id DESC
LIMIT $2 OFFSET $3
`

const countUsers = `-- name: CountUsers
SELECT count(*) FROM users u
JOIN wallets w ON w.user_id = u.id
WHERE $1 = '' OR u.email ILIKE '%' || $1 || '%' OR u.name ILIKE '%' || $1 || '%'
`

func (r *UserRepo) ListUsers(ctx context.Context, search string, page repository.Page) ([]models.UserWithWallet, int64, error) {
	var total int64

	rows, _ := r.DB.Query(ctx, listUsers, search, page.Limit, page.Offset)
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.UserWithWallet, error) {
		var u models.UserWithWallet
		err := row.Scan(
			&u.ID, &u.CreatedAt, &u.Email, &u.HashedPassword, &u.Name, &u.Role, &u.Status,
			&u.Wallet.ID, &u.Wallet.UserID, &u.Wallet.GoldCoins, &u.Wallet.SweepCoins, &u.Wallet.UpdatedAt,
			&total,
		)
		return u, err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	// Window count is absent when the offset is past the last row
	if len(users) == 0 {
		err = r.DB.QueryRow(ctx, countUsers, search).Scan(&total)
		if err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
	}

	return users, total, nil
}

func collectUser(rows pgx.Rows) (models.User, error) {
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Email, &u.HashedPassword, &u.Name, &u.Role, &u.Status)
	return u, err
}
