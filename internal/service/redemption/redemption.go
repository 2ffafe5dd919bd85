package redemption

import (
	"context"
	"fmt"

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

const tracerName = "crownplay/redemption"

// Sweep coins are reserved when the request is created and given back if it is rejected
type RedemptionService struct {
	storage   repository.Storage
	auditor   *audit.Auditor
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    logger.Logger
}

func NewService(storage repository.Storage, publisher events.Publisher, m *metrics.Metrics, l logger.Logger) *RedemptionService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &RedemptionService{
		storage:   storage,
		auditor:   audit.New(storage, l),
		publisher: publisher,
		metrics:   m,
		logger:    l,
	}
}

// Reserve sweep coins and create pending request
// Returns apperrors.ErrBalanceInsufficient if the balance does not cover the amount, nothing is stored then
func (s *RedemptionService) Request(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (r models.Redemption, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "Request",
		attribute.String("user.id", userID.String()),
		attribute.String("amount", amount.String()),
	)
	defer func() { tracing.End(span, err) }()

	if !amount.IsPositive() || !amount.IsInteger() {
		return r, apperrors.ErrInvalidAmount
	}

	err = s.storage.InTx(ctx, func(storage repository.Storage) error {
		var err error

		if _, err = storage.Wallet().Debit(ctx, userID, models.CurrencySweep, amount); err != nil {
			return err
		}

		if r, err = storage.Redemption().CreateRedemption(ctx, userID, amount); err != nil {
			return err
		}

		_, err = storage.Transaction().CreateTransaction(ctx, models.Transaction{
			UserID:   userID,
			Type:     models.TransactionTypeRedemption,
			Amount:   amount.Neg(),
			Currency: models.CurrencySweep,
			Metadata: map[string]any{"redemptionId": r.ID.String()},
		})
		return err
	})
	if err != nil {
		return r, err
	}

	s.metrics.Redemption(r.Status)
	s.logger.Info("Redemption requested", "user_id", userID, "redemption_id", r.ID, "amount", amount)
	s.publish(ctx, events.New(events.TypeRedemptionRequested, userID, map[string]any{
		"redemptionId": r.ID.String(),
		"amount":       amount.String(),
	}))

	return r, nil
}

// Change request status on behalf of admin. Rejection gives reserved coins back.
// Every call is audited, failed ones too
func (s *RedemptionService) UpdateStatus(ctx context.Context, adminID uuid.UUID, id uuid.UUID, status string, notes *string) (r models.Redemption, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "UpdateStatus",
		attribute.String("redemption.id", id.String()),
		attribute.String("status", status),
	)
	defer func() { tracing.End(span, err) }()

	if !models.IsRedemptionStatus(status) {
		return r, fmt.Errorf("%w: %q", apperrors.ErrInvalidStatus, status)
	}

	meta := map[string]any{"newStatus": status}
	if notes != nil {
		meta["notes"] = *notes
	}

	entry := models.AuditLog{
		AdminID:    adminID,
		Action:     models.AuditActionUpdateRedemption,
		TargetType: models.AuditTargetRedemption,
		TargetID:   id,
		Metadata:   meta,
	}

	var old models.Redemption
	err = s.auditor.Run(ctx, entry, func(storage repository.Storage, meta map[string]any) error {
		var err error

		if old, err = storage.Redemption().GetRedemption(ctx, id, true); err != nil {
			return err
		}
		meta["oldStatus"] = old.Status

		if !old.CanTransit(status) {
			return fmt.Errorf("%w: %s -> %s", apperrors.ErrRedemptionTransition, old.Status, status)
		}

		if r, err = storage.Redemption().UpdateStatus(ctx, id, status, notes); err != nil {
			return err
		}

		if status != models.RedemptionStatusRejected {
			return nil
		}

		_, err = wallet.Post(ctx, storage, old.UserID, wallet.Entry{
			Type:     models.TransactionTypeRedemptionRefund,
			Currency: models.CurrencySweep,
			Amount:   old.Amount,
			Metadata: map[string]any{"redemptionId": id.String(), "adminId": adminID.String()},
		})
		return err
	})
	if err != nil {
		return r, err
	}

	s.metrics.Redemption(status)
	s.logger.Info("Redemption status changed", "admin_id", adminID, "redemption_id", id, "from", old.Status, "to", status)
	s.publish(ctx, events.New(events.TypeRedemptionStatusChanged, r.UserID, map[string]any{
		"redemptionId": id.String(),
		"oldStatus":    old.Status,
		"newStatus":    status,
	}))

	return r, nil
}

func (s *RedemptionService) ListForUser(ctx context.Context, userID uuid.UUID, page repository.Page) ([]models.Redemption, int64, error) {
	return s.storage.Redemption().ListRedemptions(ctx, repository.RedemptionFilter{UserID: &userID}, page)
}

// Requests of all users, status filter is optional
func (s *RedemptionService) List(ctx context.Context, status string, page repository.Page) ([]models.Redemption, int64, error) {
	if status != "" && !models.IsRedemptionStatus(status) {
		return nil, 0, fmt.Errorf("%w: %q", apperrors.ErrInvalidStatus, status)
	}
	return s.storage.Redemption().ListRedemptions(ctx, repository.RedemptionFilter{Status: status}, page)
}

func (s *RedemptionService) History(ctx context.Context, id uuid.UUID) ([]models.AuditLog, error) {
	return s.auditor.List(ctx, models.AuditTargetRedemption, id)
}

func (s *RedemptionService) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("Event not published", "type", e.Type, "user_id", e.UserID, "error", err)
	}
}
