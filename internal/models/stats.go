package models

import "github.com/shopspring/decimal"

// Platform figures for the admin dashboard
type KPIs struct {
	TotalUsers         int64
	ActiveUsers        int64
	TotalGoldCoins     decimal.Decimal
	TotalSweepCoins    decimal.Decimal
	PendingRedemptions int64
}
