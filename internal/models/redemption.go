package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	RedemptionStatusPending   = "PENDING"
	RedemptionStatusApproved  = "APPROVED"
	RedemptionStatusRejected  = "REJECTED"
	RedemptionStatusCompleted = "COMPLETED"
)

var redemptionTransitions = map[string][]string{
	RedemptionStatusPending:  {RedemptionStatusApproved, RedemptionStatusRejected, RedemptionStatusCompleted},
	RedemptionStatusApproved: {RedemptionStatusRejected, RedemptionStatusCompleted},
}

// Request to exchange sweep coins for a prize
type Redemption struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uuid.UUID
	Amount    decimal.Decimal
	Status    string
	Notes     *string
}

// Whether status may be changed to the next one
// Rejected and completed requests are final
func (r Redemption) CanTransit(next string) bool {
	for _, s := range redemptionTransitions[r.Status] {
		if s == next {
			return true
		}
	}
	return false
}

func IsRedemptionStatus(s string) bool {
	switch s {
	case RedemptionStatusPending, RedemptionStatusApproved, RedemptionStatusRejected, RedemptionStatusCompleted:
		return true
	default:
		return false
	}
}
