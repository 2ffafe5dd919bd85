package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/crownplay/internal/handlers/middleware"
	"github.com/nkiryanov/crownplay/internal/handlers/render"
	"github.com/nkiryanov/crownplay/internal/logger"
	"github.com/nkiryanov/crownplay/internal/metrics"
	"github.com/nkiryanov/crownplay/internal/models"
	"github.com/nkiryanov/crownplay/internal/repository"
	"github.com/nkiryanov/crownplay/internal/service/admin"
	"github.com/nkiryanov/crownplay/internal/service/purchase"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

// Services the API is served by
type Services struct {
	Auth       authService
	Users      userService
	Wallet     walletService
	Purchase   purchaseService
	Redemption redemptionService
	Catalog    catalogService
	Admin      adminService
}

func NewRouter(s Services, m *metrics.Metrics, l logger.Logger) http.Handler {
	withAuth := middleware.AuthMiddleware(s.Auth, l)
	withAdmin := func(h http.Handler) http.Handler {
		return withAuth(middleware.AdminOnly(h))
	}

	mux := http.NewServeMux()

	mux.Handle("GET /api/ping", handlePing())
	mux.Handle("GET /metrics", m.Handler())

	mux.Handle("POST /api/auth/signup", handleSignup(s.Auth, l))
	mux.Handle("POST /api/auth/login", handleLogin(s.Auth, l))
	mux.Handle("POST /api/auth/logout", handleLogout())
	mux.Handle("GET /api/auth/me", withAuth(handleMe(s.Users, l)))

	mux.Handle("GET /api/games", handleListGames(s.Catalog, l))
	mux.Handle("GET /api/promotions", handleListPromotions(s.Catalog, l))
	mux.Handle("GET /api/packages", handleListPackages(s.Catalog, l))

	mux.Handle("GET /api/player/balance", withAuth(handleBalance(s.Wallet, l)))
	mux.Handle("GET /api/player/transactions", withAuth(handleListTransactions(s.Wallet, l)))
	mux.Handle("POST /api/player/purchase", withAuth(handlePurchase(s.Purchase, l)))
	mux.Handle("POST /api/player/redemption/request", withAuth(handleRedemptionRequest(s.Redemption, l)))
	mux.Handle("GET /api/player/redemptions", withAuth(handleListPlayerRedemptions(s.Redemption, l)))

	mux.Handle("POST /api/payment/create", withAuth(handleCreatePayment(s.Purchase, l)))
	mux.Handle("GET /api/payment/history", withAuth(handlePaymentHistory(s.Purchase, l)))

	mux.Handle("GET /api/admin/dashboard/kpis", withAdmin(handleKPIs(s.Admin, l)))
	mux.Handle("GET /api/admin/users", withAdmin(handleListUsers(s.Admin, l)))
	mux.Handle("PATCH /api/admin/users/{id}/balance", withAdmin(handleAdjustBalance(s.Admin, l)))
	mux.Handle("PATCH /api/admin/users/{id}/status", withAdmin(handleSetUserStatus(s.Admin, l)))
	mux.Handle("GET /api/admin/users/{id}/audit", withAdmin(handleUserAudit(s.Admin, l)))
	mux.Handle("GET /api/admin/transactions", withAdmin(handleListAllTransactions(s.Wallet, l)))
	mux.Handle("GET /api/admin/redemptions", withAdmin(handleListRedemptions(s.Redemption, l)))
	mux.Handle("PATCH /api/admin/redemptions/{id}", withAdmin(handleUpdateRedemption(s.Redemption, l)))
	mux.Handle("GET /api/admin/redemptions/{id}/audit", withAdmin(handleRedemptionAudit(s.Redemption, l)))

	// Metrics middleware has to wrap mux directly to see matched pattern
	handler := chain(mux,
		middleware.LoggerMiddleware(l),
		middleware.MetricsMiddleware(m),
	)

	return handler
}

func handlePing() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, map[string]string{"status": "ok"})
	})
}

type authService interface {
	// Create player with zero wallet and issue access token
	// Has to return apperrors.ErrUserAlreadyExists if email is taken
	Signup(ctx context.Context, email string, password string, name string) (models.User, models.IssuedToken, error)

	// Has to return apperrors.ErrInvalidCredentials on unknown email or wrong password
	// and apperrors.ErrUserLocked if user may not log in
	Login(ctx context.Context, email string, password string) (models.User, models.IssuedToken, error)

	// Get request and return user if it authenticated or error
	Auth(ctx context.Context, r *http.Request) (models.User, error)
}

type userService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (models.UserWithWallet, error)
}

type walletService interface {
	GetWallet(ctx context.Context, userID uuid.UUID) (models.Wallet, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, page repository.Page) ([]models.Transaction, int64, error)
	ListAllTransactions(ctx context.Context, page repository.Page) ([]models.Transaction, int64, error)
}

type purchaseService interface {
	Purchase(ctx context.Context, req purchase.Request) (purchase.Receipt, error)
	ListPayments(ctx context.Context, userID uuid.UUID, page repository.Page) ([]models.Payment, int64, error)
}

type redemptionService interface {
	Request(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (models.Redemption, error)
	UpdateStatus(ctx context.Context, adminID uuid.UUID, id uuid.UUID, status string, notes *string) (models.Redemption, error)
	ListForUser(ctx context.Context, userID uuid.UUID, page repository.Page) ([]models.Redemption, int64, error)
	List(ctx context.Context, status string, page repository.Page) ([]models.Redemption, int64, error)
	History(ctx context.Context, id uuid.UUID) ([]models.AuditLog, error)
}

type catalogService interface {
	Packages(ctx context.Context) ([]models.Package, error)
	Games(ctx context.Context) ([]models.Game, error)
	Promotions(ctx context.Context) ([]models.Promotion, error)
}

type adminService interface {
	AdjustBalance(ctx context.Context, adminID uuid.UUID, userID uuid.UUID, adj admin.Adjustment) (models.Wallet, error)
	SetUserStatus(ctx context.Context, adminID uuid.UUID, userID uuid.UUID, status string) (models.User, error)
	KPIs(ctx context.Context) (models.KPIs, error)
	ListUsers(ctx context.Context, search string, page repository.Page) ([]models.UserWithWallet, int64, error)
	UserHistory(ctx context.Context, userID uuid.UUID) ([]models.AuditLog, error)
}
