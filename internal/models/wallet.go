package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CurrencyGold  = "GOLD"
	CurrencySweep = "SWEEP"
)

type Wallet struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	GoldCoins  decimal.Decimal
	SweepCoins decimal.Decimal
	UpdatedAt  time.Time
}

// Balance of the currency
func (w Wallet) Balance(currency string) decimal.Decimal {
	if currency == CurrencyGold {
		return w.GoldCoins
	}
	return w.SweepCoins
}

// Signed change applied to wallet balances at once
type BalanceDelta struct {
	Gold  decimal.Decimal
	Sweep decimal.Decimal
}

func (d BalanceDelta) IsZero() bool {
	return d.Gold.IsZero() && d.Sweep.IsZero()
}
