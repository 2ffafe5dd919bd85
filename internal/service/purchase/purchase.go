package purchase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nkiryanov/crownplay/internal/apperrors"
	"github.com/nkiryanov/crownplay/internal/events"
	"github.com/nkiryanov/crownplay/internal/logger"
	"github.com/nkiryanov/crownplay/internal/metrics"
	"github.com/nkiryanov/crownplay/internal/models"
	"github.com/nkiryanov/crownplay/internal/repository"
	"github.com/nkiryanov/crownplay/internal/service/payment"
	"github.com/nkiryanov/crownplay/internal/service/wallet"
	"github.com/nkiryanov/crownplay/internal/tracing"
)

const tracerName = "crownplay/purchase"

type Request struct {
	UserID    uuid.UUID
	PackageID uuid.UUID
	SourceID  string

	// Price the client believes it pays. Checked against the package if set
	AmountCents *int64
}

type Receipt struct {
	Wallet  models.Wallet
	Payment models.Payment

	// Payment was already processed before, nothing credited this time
	Duplicate bool
}

type Processor struct {
	storage   repository.Storage
	authority payment.Authority
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    logger.Logger
}

func NewProcessor(storage repository.Storage, authority payment.Authority, publisher events.Publisher, m *metrics.Metrics, l logger.Logger) *Processor {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &Processor{
		storage:   storage,
		authority: authority,
		publisher: publisher,
		metrics:   m,
		logger:    l,
	}
}

// Charge the player for the package and credit coins with bonus.
// The same external payment is never credited twice
func (p *Processor) Purchase(ctx context.Context, req Request) (receipt Receipt, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "Purchase",
		attribute.String("user.id", req.UserID.String()),
		attribute.String("package.id", req.PackageID.String()),
	)
	defer func() { tracing.End(span, err) }()

	pkg, err := p.storage.Catalog().GetPackage(ctx, req.PackageID)
	if err != nil {
		return receipt, err
	}
	if !pkg.IsActive {
		return receipt, apperrors.ErrPackageNotFound
	}
	if req.AmountCents != nil && *req.AmountCents != pkg.PriceCents {
		return receipt, apperrors.ErrAmountMismatch
	}

	charge, err := p.authority.Charge(ctx, payment.ChargeRequest{
		SourceID:       req.SourceID,
		AmountCents:    pkg.PriceCents,
		Currency:       payment.DefaultCurrency,
		IdempotencyKey: uuid.NewString(),
		CustomerID:     req.UserID.String(),
		Note:           "Purchase of " + pkg.Name,
	})
	if err != nil {
		return receipt, p.chargeFailed(ctx, req, pkg, err)
	}
	if !charge.Completed() {
		return receipt, p.chargeFailed(ctx, req, pkg, fmt.Errorf("payment status %s", charge.Status))
	}
	if charge.AmountCents != pkg.PriceCents {
		return receipt, p.chargeFailed(ctx, req, pkg, fmt.Errorf("payment %s charged %d cents instead of %d", charge.ID, charge.AmountCents, pkg.PriceCents))
	}

	grant := pkg.Grant()
	meta := map[string]any{
		"packageId":       pkg.ID.String(),
		"packageName":     pkg.Name,
		"bonusPercentage": pkg.BonusPercentage,
		"paymentId":       charge.ID,
		"provider":        p.authority.Name(),
	}

	err = p.storage.InTx(ctx, func(storage repository.Storage) error {
		var err error

		receipt.Payment, err = storage.Payment().CreatePayment(ctx, models.Payment{
			UserID:            req.UserID,
			PackageID:         pkg.ID,
			Provider:          p.authority.Name(),
			ExternalID:        charge.ID,
			ExternalOrderID:   charge.OrderID,
			AmountCents:       charge.AmountCents,
			Status:            models.PaymentStatusCompleted,
			GoldCoinsAwarded:  grant.Gold(),
			SweepCoinsAwarded: grant.Sweep(),
			Metadata:          charge.Raw,
		})
		if err != nil {
			return err
		}

		receipt.Wallet, err = wallet.Post(ctx, storage, req.UserID,
			wallet.Entry{Type: models.TransactionTypePurchase, Currency: models.CurrencyGold, Amount: grant.BaseGold, Metadata: meta},
			wallet.Entry{Type: models.TransactionTypeBonus, Currency: models.CurrencyGold, Amount: grant.BonusGold, Metadata: meta},
			wallet.Entry{Type: models.TransactionTypePurchase, Currency: models.CurrencySweep, Amount: grant.BaseSweep, Metadata: meta},
			wallet.Entry{Type: models.TransactionTypeBonus, Currency: models.CurrencySweep, Amount: grant.BonusSweep, Metadata: meta},
		)
		return err
	})

	switch {
	case errors.Is(err, apperrors.ErrPaymentDuplicate):
		return p.duplicate(ctx, req, receipt.Payment)
	case err != nil:
		p.logger.Error("Charged payment not credited", "user_id", req.UserID, "payment_id", charge.ID, "error", err)
		return Receipt{}, fmt.Errorf("can't credit payment %s. Err: %w", charge.ID, err)
	}

	p.metrics.Purchase(p.authority.Name(), "completed")
	p.logger.Info("Package purchased", "user_id", req.UserID, "package", pkg.Name, "payment_id", charge.ID)
	p.publish(ctx, events.New(events.TypePurchaseCompleted, req.UserID, map[string]any{
		"paymentId":   receipt.Payment.ID.String(),
		"packageId":   pkg.ID.String(),
		"amountCents": receipt.Payment.AmountCents,
		"goldCoins":   grant.Gold().String(),
		"sweepCoins":  grant.Sweep().String(),
	}))

	return receipt, nil
}

func (p *Processor) ListPayments(ctx context.Context, userID uuid.UUID, page repository.Page) ([]models.Payment, int64, error) {
	return p.storage.Payment().ListPayments(ctx, userID, page)
}

// Existing receipt and current wallet, nothing is credited
func (p *Processor) duplicate(ctx context.Context, req Request, existing models.Payment) (Receipt, error) {
	if existing.UserID != req.UserID {
		p.logger.Warn("Payment of another user reused", "user_id", req.UserID, "payment_id", existing.ExternalID)
		return Receipt{}, fmt.Errorf("%w: payment belongs to another user", apperrors.ErrPaymentDeclined)
	}

	w, err := p.storage.Wallet().GetWallet(ctx, req.UserID, false)
	if err != nil {
		return Receipt{}, err
	}

	p.metrics.Purchase(p.authority.Name(), "duplicate")
	p.logger.Info("Payment already processed", "user_id", req.UserID, "payment_id", existing.ExternalID)
	return Receipt{Wallet: w, Payment: existing, Duplicate: true}, nil
}

// Map authority failure to apperrors and report declined charges
func (p *Processor) chargeFailed(ctx context.Context, req Request, pkg models.Package, err error) error {
	var payErr *payment.Error
	if errors.As(err, &payErr) && payErr.Code != payment.CodeDeclined {
		p.metrics.Purchase(p.authority.Name(), "unavailable")
		p.logger.Error("Payment authority unavailable", "user_id", req.UserID, "error", err)
		return fmt.Errorf("%w: %w", apperrors.ErrPaymentUnavailable, err)
	}

	p.metrics.Purchase(p.authority.Name(), "declined")
	p.logger.Warn("Payment declined", "user_id", req.UserID, "package", pkg.Name, "error", err)
	p.publish(ctx, events.New(events.TypePurchaseDeclined, req.UserID, map[string]any{
		"packageId": pkg.ID.String(),
		"reason":    err.Error(),
	}))

	return fmt.Errorf("%w: %w", apperrors.ErrPaymentDeclined, err)
}

func (p *Processor) publish(ctx context.Context, e events.Event) {
	if err := p.publisher.Publish(ctx, e); err != nil {
		p.logger.Warn("Event not published", "type", e.Type, "user_id", e.UserID, "error", err)
	}
}
