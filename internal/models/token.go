package models

import (
	"time"

	"github.com/google/uuid"
)

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Claims extracted from valid access token
type TokenClaims struct {
	UserID uuid.UUID
	Role   string
}
