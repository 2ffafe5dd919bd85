package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Coin package sold for real money
type Package struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	PriceCents      int64           `json:"priceCents"`
	GoldAmount      decimal.Decimal `json:"goldAmount"`
	SweepAmount     decimal.Decimal `json:"sweepAmount"`
	BonusPercentage int             `json:"bonusPercentage"`
	IsActive        bool            `json:"isActive"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Coins granted by the package purchase
type Grant struct {
	BaseGold   decimal.Decimal
	BaseSweep  decimal.Decimal
	BonusGold  decimal.Decimal
	BonusSweep decimal.Decimal
}

func (g Grant) Gold() decimal.Decimal {
	return g.BaseGold.Add(g.BonusGold)
}

func (g Grant) Sweep() decimal.Decimal {
	return g.BaseSweep.Add(g.BonusSweep)
}

var hundred = decimal.NewFromInt(100)

// Grant with the bonus rounded down to whole coins
func (p Package) Grant() Grant {
	pct := decimal.NewFromInt(int64(p.BonusPercentage))
	bonus := func(base decimal.Decimal) decimal.Decimal {
		return base.Mul(pct).Div(hundred).Floor()
	}

	return Grant{
		BaseGold:   p.GoldAmount,
		BaseSweep:  p.SweepAmount,
		BonusGold:  bonus(p.GoldAmount),
		BonusSweep: bonus(p.SweepAmount),
	}
}

type Game struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Thumbnail   string          `json:"thumbnail"`
	MinWager    decimal.Decimal `json:"minWager"`
	MaxWager    decimal.Decimal `json:"maxWager"`
	RTP         decimal.Decimal `json:"rtp"`
	IsActive    bool            `json:"isActive"`
}

const (
	BonusTypeSweepCoins = "SWEEP_COINS"
	BonusTypeGoldCoins  = "GOLD_COINS"
	BonusTypePercentage = "PERCENTAGE"
)

type Promotion struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Code        string          `json:"code"`
	Description string          `json:"description"`
	BonusType   string          `json:"bonusType"`
	BonusValue  decimal.Decimal `json:"bonusValue"`
	StartAt     time.Time       `json:"startAt"`
	EndAt       time.Time       `json:"endAt"`
	MaxUses     *int            `json:"maxUses,omitempty"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
}
