// Package payment talks to the external payment authorities that charge players for coin packages
package payment

import (
	"context"
	"fmt"
	"time"
)

const (
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"

	DefaultCurrency = "USD"
)

const (
	CodeDeclined    = "declined"
	CodeRetryAfter  = "retry-after"
	CodeUnavailable = "unavailable"
)

// Error returned by authorities. Code tells declined charges from transient failures
type Error struct {
	Code string

	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("code: %s, retry_after: %s, error: %v", e.Code, e.RetryAfter, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(code string, retryAfter int, err error) *Error {
	return &Error{
		Code:       code,
		RetryAfter: time.Duration(retryAfter) * time.Second,
		Err:        err,
	}
}

type ChargeRequest struct {
	// Card nonce or payment id created on the client side
	SourceID       string
	AmountCents    int64
	Currency       string
	IdempotencyKey string
	CustomerID     string
	Note           string
}

type Charge struct {
	ID          string
	OrderID     string
	Status      string
	AmountCents int64
	Provider    string
	Raw         map[string]any
}

func (c Charge) Completed() bool {
	return c.Status == StatusCompleted
}

type Authority interface {
	Charge(ctx context.Context, req ChargeRequest) (Charge, error)
	Name() string
}

// Adapter to use ordinary function as Authority
type AuthorityFunc func(ctx context.Context, req ChargeRequest) (Charge, error)

func (f AuthorityFunc) Charge(ctx context.Context, req ChargeRequest) (Charge, error) {
	return f(ctx, req)
}

func (f AuthorityFunc) Name() string {
	return "func"
}
