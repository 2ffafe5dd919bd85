package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserLocked         = errors.New("user is locked")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")

	ErrWalletNotFound      = errors.New("wallet not found")
	ErrBalanceInsufficient = errors.New("insufficient balance")

	ErrPackageNotFound    = errors.New("package not found")
	ErrAmountMismatch     = errors.New("amount does not match package price")
	ErrPaymentDeclined    = errors.New("payment declined")
	ErrPaymentUnavailable = errors.New("payment authority unavailable")
	ErrPaymentDuplicate   = errors.New("payment already processed")

	ErrRedemptionNotFound   = errors.New("redemption request not found")
	ErrRedemptionTransition = errors.New("redemption status transition not allowed")

	ErrInvalidAmount     = errors.New("amount must be a positive whole number")
	ErrReasonRequired    = errors.New("reason is required")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidPagination = errors.New("invalid pagination")
)
