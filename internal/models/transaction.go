package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TransactionTypePurchase         = "PURCHASE"
	TransactionTypeBonus            = "BONUS"
	TransactionTypeRedemption       = "REDEMPTION"
	TransactionTypeRedemptionRefund = "REDEMPTION_REFUND"
	TransactionTypeAdminAdjustment  = "ADMIN_ADJUSTMENT"
)

// Ledger entry. Never updated once stored.
// Amount is signed: credits are positive and debits are negative
type Transaction struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UserID    uuid.UUID
	Type      string
	Amount    decimal.Decimal
	Currency  string
	Metadata  map[string]any
}

// Ledger totals of the user, used to reconcile wallets
type LedgerSum struct {
	UserID     uuid.UUID
	GoldCoins  decimal.Decimal
	SweepCoins decimal.Decimal

	// Wallet balance read from the same snapshot as the totals
	Wallet BalanceDelta
}
