package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/crownplay/internal/models"
)

// Page of listed rows. Lists are always ordered newest first
type Page struct {
	Limit  int
	Offset int
}

// Storage gives access to every repository over the same connection.
// InTx runs fn with storage bound to a new transaction (or savepoint when already in one):
// committed if fn returns nil and rolled back otherwise
type Storage interface {
	User() UserRepo
	Wallet() WalletRepo
	Transaction() TransactionRepo
	Catalog() CatalogRepo
	Payment() PaymentRepo
	Redemption() RedemptionRepo
	Audit() AuditRepo
	Stats() StatsRepo

	InTx(ctx context.Context, fn func(Storage) error) error
}

type CreateUserParams struct {
	Email          string
	HashedPassword string
	Name           string
	Role           string
}

type UserRepo interface {
	// Create user with ACTIVE status
	// If user with the email exists (case insensitive) must return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, params CreateUserParams) (models.User, error)

	// Get user by id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Set user status or role. Returns apperrors.ErrUserNotFound if no such user
	SetStatus(ctx context.Context, userID uuid.UUID, status string) (models.User, error)
	SetRole(ctx context.Context, userID uuid.UUID, role string) (models.User, error)

	// Users with wallets filtered by email or name substring (case insensitive), newest first
	ListUsers(ctx context.Context, search string, page Page) ([]models.UserWithWallet, int64, error)
}

type WalletRepo interface {
	// Create zero wallet. Fails if the user already has one
	CreateWallet(ctx context.Context, userID uuid.UUID) (models.Wallet, error)

	// Get wallet of the user. If forUpdate is set the row is locked until transaction ends
	// Must return apperrors.ErrWalletNotFound if no wallet exists
	GetWallet(ctx context.Context, userID uuid.UUID, forUpdate bool) (models.Wallet, error)

	// Add signed deltas to the balances in one statement
	// Balances may become negative. Returns apperrors.ErrWalletNotFound if no wallet exists
	AdjustBalance(ctx context.Context, userID uuid.UUID, delta models.BalanceDelta) (models.Wallet, error)

	// Subtract amount from the currency balance if it is covered
	// Must return apperrors.ErrBalanceInsufficient otherwise, wallet stays unchanged
	Debit(ctx context.Context, userID uuid.UUID, currency string, amount decimal.Decimal) (models.Wallet, error)

}

type TransactionFilter struct {
	UserID *uuid.UUID
	Types  []string
}

type TransactionRepo interface {
	// Append ledger entry. Zero ID and CreatedAt are generated
	CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error)

	ListTransactions(ctx context.Context, filter TransactionFilter, page Page) ([]models.Transaction, int64, error)

	// Ledger totals per user and currency along with wallet balances.
	// Both come from one statement so concurrent postings can't split them
	SumByUser(ctx context.Context) ([]models.LedgerSum, error)
}

type CatalogRepo interface {
	// Package by id. Must return apperrors.ErrPackageNotFound if it not exists
	GetPackage(ctx context.Context, packageID uuid.UUID) (models.Package, error)

	ListActivePackages(ctx context.Context) ([]models.Package, error)
	ListActiveGames(ctx context.Context) ([]models.Game, error)
	ListActivePromotions(ctx context.Context, at time.Time) ([]models.Promotion, error)
}

type PaymentRepo interface {
	// Store payment keyed by its external id
	// If payment with the external id exists return it as is with apperrors.ErrPaymentDuplicate
	CreatePayment(ctx context.Context, p models.Payment) (models.Payment, error)

	ListPayments(ctx context.Context, userID uuid.UUID, page Page) ([]models.Payment, int64, error)
}

type RedemptionFilter struct {
	UserID *uuid.UUID
	Status string
}

type RedemptionRepo interface {
	CreateRedemption(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (models.Redemption, error)

	// Get request. Must return apperrors.ErrRedemptionNotFound if it not exists
	GetRedemption(ctx context.Context, id uuid.UUID, forUpdate bool) (models.Redemption, error)

	// Set status. Notes are replaced only if not nil
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, notes *string) (models.Redemption, error)

	ListRedemptions(ctx context.Context, filter RedemptionFilter, page Page) ([]models.Redemption, int64, error)
}

type AuditRepo interface {
	CreateAuditLog(ctx context.Context, log models.AuditLog) (models.AuditLog, error)
	ListAuditLogs(ctx context.Context, targetType string, targetID uuid.UUID) ([]models.AuditLog, error)
}

type StatsRepo interface {
	// Dashboard figures. Active users are the ones with ledger entries after activeSince
	KPIs(ctx context.Context, activeSince time.Time) (models.KPIs, error)
}
