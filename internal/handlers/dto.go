package handlers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/crownplay/internal/models"
)

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func newUserResponse(u models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}

type walletResponse struct {
	GoldCoins  decimal.Decimal `json:"goldCoins"`
	SweepCoins decimal.Decimal `json:"sweepCoins"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

func newWalletResponse(w models.Wallet) walletResponse {
	return walletResponse{
		GoldCoins:  w.GoldCoins,
		SweepCoins: w.SweepCoins,
		UpdatedAt:  w.UpdatedAt,
	}
}

type userWithWalletResponse struct {
	userResponse
	Wallet walletResponse `json:"wallet"`
}

func newUserWithWalletResponse(u models.UserWithWallet) userWithWalletResponse {
	return userWithWalletResponse{
		userResponse: newUserResponse(u.User),
		Wallet:       newWalletResponse(u.Wallet),
	}
}

type transactionResponse struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"userId"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Metadata  map[string]any  `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

func newTransactionsResponse(txs []models.Transaction) []transactionResponse {
	res := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		res = append(res, transactionResponse{
			ID:        t.ID,
			UserID:    t.UserID,
			Type:      t.Type,
			Amount:    t.Amount,
			Currency:  t.Currency,
			Metadata:  t.Metadata,
			CreatedAt: t.CreatedAt,
		})
	}
	return res
}

type paymentResponse struct {
	ID                uuid.UUID       `json:"id"`
	PackageID         uuid.UUID       `json:"packageId"`
	Provider          string          `json:"provider"`
	ExternalID        string          `json:"externalId"`
	AmountCents       int64           `json:"amountCents"`
	Status            string          `json:"status"`
	GoldCoinsAwarded  decimal.Decimal `json:"goldCoinsAwarded"`
	SweepCoinsAwarded decimal.Decimal `json:"sweepCoinsAwarded"`
	CreatedAt         time.Time       `json:"createdAt"`
}

func newPaymentResponse(p models.Payment) paymentResponse {
	return paymentResponse{
		ID:                p.ID,
		PackageID:         p.PackageID,
		Provider:          p.Provider,
		ExternalID:        p.ExternalID,
		AmountCents:       p.AmountCents,
		Status:            p.Status,
		GoldCoinsAwarded:  p.GoldCoinsAwarded,
		SweepCoinsAwarded: p.SweepCoinsAwarded,
		CreatedAt:         p.CreatedAt,
	}
}

type redemptionResponse struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"userId"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	Notes     *string         `json:"notes"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func newRedemptionResponse(r models.Redemption) redemptionResponse {
	return redemptionResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		Amount:    r.Amount,
		Status:    r.Status,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func newRedemptionsResponse(rs []models.Redemption) []redemptionResponse {
	res := make([]redemptionResponse, 0, len(rs))
	for _, r := range rs {
		res = append(res, newRedemptionResponse(r))
	}
	return res
}

type auditLogResponse struct {
	ID         uuid.UUID      `json:"id"`
	AdminID    uuid.UUID      `json:"adminId"`
	Action     string         `json:"action"`
	TargetType string         `json:"targetType"`
	TargetID   uuid.UUID      `json:"targetId"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func newAuditLogsResponse(logs []models.AuditLog) []auditLogResponse {
	res := make([]auditLogResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, auditLogResponse{
			ID:         l.ID,
			AdminID:    l.AdminID,
			Action:     l.Action,
			TargetType: l.TargetType,
			TargetID:   l.TargetID,
			Metadata:   l.Metadata,
			CreatedAt:  l.CreatedAt,
		})
	}
	return res
}
