package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RolePlayer = "PLAYER"
	RoleAdmin  = "ADMIN"
)

const (
	UserStatusActive    = "ACTIVE"
	UserStatusLocked    = "LOCKED"
	UserStatusSuspended = "SUSPENDED"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Email          string
	HashedPassword string
	Name           string
	Role           string
	Status         string
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// User with it's wallet, as admin console shows it
type UserWithWallet struct {
	User
	Wallet Wallet
}
