package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nkiryanov/crownplay/internal/apperrors"
	"github.com/nkiryanov/crownplay/internal/events"
	"github.com/nkiryanov/crownplay/internal/logger"
	"github.com/nkiryanov/crownplay/internal/metrics"
	"github.com/nkiryanov/crownplay/internal/models"
	"github.com/nkiryanov/crownplay/internal/repository"
	"github.com/nkiryanov/crownplay/internal/service/audit"
	"github.com/nkiryanov/crownplay/internal/service/wallet"
	"github.com/nkiryanov/crownplay/internal/tracing"
)

const (
	tracerName = "crownplay/admin"

	// Users with ledger entries within the window are counted as active
	activeWindow = 30 * 24 * time.Hour
)

// Manual balance change. Nil delta leaves the currency untouched
type Adjustment struct {
	Gold   *decimal.Decimal
	Sweep  *decimal.Decimal
	Reason string
}

type AdminService struct {
	storage   repository.Storage
	auditor   *audit.Auditor
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    logger.Logger
	now       func() time.Time
}

func NewService(storage repository.Storage, publisher events.Publisher, m *metrics.Metrics, l logger.Logger) *AdminService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &AdminService{
		storage:   storage,
		auditor:   audit.New(storage, l),
		publisher: publisher,
		metrics:   m,
		logger:    l,
		now:       time.Now,
	}
}

// Apply deltas to the user wallet. Fractions are truncated toward zero.
// Balances may go negative. Every call with a reason is audited
func (s *AdminService) AdjustBalance(ctx context.Context, adminID uuid.UUID, userID uuid.UUID, adj Adjustment) (w models.Wallet, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "AdjustBalance",
		attribute.String("admin.id", adminID.String()),
		attribute.String("user.id", userID.String()),
	)
	defer func() { tracing.End(span, err) }()

	reason := strings.TrimSpace(adj.Reason)
	if reason == "" {
		return w, apperrors.ErrReasonRequired
	}

	// Zero deltas leave the wallet as is but the call is still audited
	gold := truncated(adj.Gold)
	sweep := truncated(adj.Sweep)

	entry := models.AuditLog{
		AdminID:    adminID,
		Action:     models.AuditActionUpdateBalance,
		TargetType: models.AuditTargetUser,
		TargetID:   userID,
		Metadata: map[string]any{
			"goldCoins":  gold.String(),
			"sweepCoins": sweep.String(),
			"reason":     reason,
		},
	}
	meta := map[string]any{"reason": reason, "adminId": adminID.String()}

	err = s.auditor.Run(ctx, entry, func(storage repository.Storage, _ map[string]any) error {
		var err error
		w, err = wallet.Post(ctx, storage, userID,
			wallet.Entry{Type: models.TransactionTypeAdminAdjustment, Currency: models.CurrencyGold, Amount: gold, Metadata: meta},
			wallet.Entry{Type: models.TransactionTypeAdminAdjustment, Currency: models.CurrencySweep, Amount: sweep, Metadata: meta},
		)
		return err
	})
	if err != nil {
		s.metrics.Adjustment(models.AuditOutcomeFailed)
		return w, err
	}

	s.metrics.Adjustment(models.AuditOutcomeSucceeded)
	s.logger.Info("Balance adjusted", "admin_id", adminID, "user_id", userID, "gold", gold, "sweep", sweep)
	s.publish(ctx, events.New(events.TypeBalanceAdjusted, userID, map[string]any{
		"goldCoins":  gold.String(),
		"sweepCoins": sweep.String(),
		"reason":     reason,
	}))

	return w, nil
}

// Change user status. Locked users can't log in and their tokens are rejected
func (s *AdminService) SetUserStatus(ctx context.Context, adminID uuid.UUID, userID uuid.UUID, status string) (u models.User, err error) {
	switch status {
	case models.UserStatusActive, models.UserStatusLocked, models.UserStatusSuspended:
	default:
		return u, fmt.Errorf("%w: %q", apperrors.ErrInvalidStatus, status)
	}

	entry := models.AuditLog{
		AdminID:    adminID,
		Action:     models.AuditActionUpdateStatus,
		TargetType: models.AuditTargetUser,
		TargetID:   userID,
		Metadata:   map[string]any{"newStatus": status},
	}

	err = s.auditor.Run(ctx, entry, func(storage repository.Storage, meta map[string]any) error {
		old, err := storage.User().GetUserByID(ctx, userID)
		if err != nil {
			return err
		}
		meta["oldStatus"] = old.Status

		u, err = storage.User().SetStatus(ctx, userID, status)
		return err
	})
	if err != nil {
		return u, err
	}

	s.logger.Info("User status changed", "admin_id", adminID, "user_id", userID, "status", status)
	return u, nil
}

func (s *AdminService) KPIs(ctx context.Context) (models.KPIs, error) {
	return s.storage.Stats().KPIs(ctx, s.now().Add(-activeWindow))
}

func (s *AdminService) ListUsers(ctx context.Context, search string, page repository.Page) ([]models.UserWithWallet, int64, error) {
	return s.storage.User().ListUsers(ctx, strings.TrimSpace(search), page)
}

// Audit trail of the user, newest first
func (s *AdminService) UserHistory(ctx context.Context, userID uuid.UUID) ([]models.AuditLog, error) {
	return s.auditor.List(ctx, models.AuditTargetUser, userID)
}

func (s *AdminService) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("Event not published", "type", e.Type, "user_id", e.UserID, "error", err)
	}
}

func truncated(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return d.Truncate(0)
}
