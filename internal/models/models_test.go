package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestPackage_Grant(t *testing.T) {
	tests := []struct {
		name       string
		gold       int64
		sweep      int64
		pct        int
		totalGold  int64
		totalSweep int64
	}{
		{"bronze", 1000, 500, 10, 1100, 550},
		{"bonus rounded down", 999, 15, 15, 1148, 17},
		{"no bonus", 1000, 0, 0, 1000, 0},
		{"platinum", 15000, 7500, 25, 18750, 9375},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := Package{
				GoldAmount:      decimal.NewFromInt(tc.gold),
				SweepAmount:     decimal.NewFromInt(tc.sweep),
				BonusPercentage: tc.pct,
			}

			g := p.Grant()

			require.Equal(t, tc.totalGold, g.Gold().IntPart())
			require.Equal(t, tc.totalSweep, g.Sweep().IntPart())
			require.True(t, g.BaseGold.Equal(p.GoldAmount), "base is the package amount")
			require.True(t, g.BonusGold.Equal(g.BonusGold.Floor()), "bonus is whole coins")
		})
	}
}

func TestRedemption_CanTransit(t *testing.T) {
	allowed := map[string][]string{
		RedemptionStatusPending:   {RedemptionStatusApproved, RedemptionStatusRejected, RedemptionStatusCompleted},
		RedemptionStatusApproved:  {RedemptionStatusRejected, RedemptionStatusCompleted},
		RedemptionStatusRejected:  {},
		RedemptionStatusCompleted: {},
	}
	all := []string{RedemptionStatusPending, RedemptionStatusApproved, RedemptionStatusRejected, RedemptionStatusCompleted}

	for from, to := range allowed {
		for _, next := range all {
			r := Redemption{Status: from}

			require.Equalf(t, contains(to, next), r.CanTransit(next), "%s -> %s", from, next)
		}
	}
}

func TestIsRedemptionStatus(t *testing.T) {
	require.True(t, IsRedemptionStatus(RedemptionStatusApproved))
	require.False(t, IsRedemptionStatus("approved"), "statuses are case sensitive")
	require.False(t, IsRedemptionStatus(""))
}

func TestWallet_Balance(t *testing.T) {
	w := Wallet{GoldCoins: decimal.NewFromInt(10), SweepCoins: decimal.NewFromInt(3)}

	require.True(t, w.Balance(CurrencyGold).Equal(decimal.NewFromInt(10)))
	require.True(t, w.Balance(CurrencySweep).Equal(decimal.NewFromInt(3)))
	require.True(t, BalanceDelta{}.IsZero())
	require.False(t, BalanceDelta{Sweep: decimal.NewFromInt(-1)}.IsZero())
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
