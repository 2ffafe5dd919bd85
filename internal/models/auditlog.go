package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AuditActionUpdateBalance    = "UPDATE_BALANCE"
	AuditActionUpdateStatus     = "UPDATE_STATUS"
	AuditActionUpdateRedemption = "UPDATE_REDEMPTION"

	AuditTargetUser       = "USER"
	AuditTargetRedemption = "REDEMPTION"

	AuditOutcomeSucceeded = "succeeded"
	AuditOutcomeFailed    = "failed"
)

type AuditLog struct {
	ID         uuid.UUID
	CreatedAt  time.Time
	AdminID    uuid.UUID
	Action     string
	TargetType string
	TargetID   uuid.UUID
	Metadata   map[string]any
}
