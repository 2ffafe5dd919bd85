package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const PaymentStatusCompleted = "COMPLETED"

// Confirmed payment from the payment authority. One per external payment
type Payment struct {
	ID                uuid.UUID
	CreatedAt         time.Time
	UserID            uuid.UUID
	PackageID         uuid.UUID
	Provider          string
	ExternalID        string
	ExternalOrderID   string
	AmountCents       int64
	Status            string
	GoldCoinsAwarded  decimal.Decimal
	SweepCoinsAwarded decimal.Decimal
	Metadata          map[string]any
}
