// Package events publishes wallet domain events for downstream consumers
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TypePurchaseCompleted       = "purchase.completed"
	TypePurchaseDeclined        = "purchase.declined"
	TypeRedemptionRequested     = "redemption.requested"
	TypeRedemptionStatusChanged = "redemption.status_changed"
	TypeBalanceAdjusted         = "balance.adjusted"
)

type Event struct {
	Type       string         `json:"type"`
	UserID     uuid.UUID      `json:"userId"`
	OccurredAt time.Time      `json:"occurredAt"`
	Data       map[string]any `json:"data"`
}

func New(typ string, userID uuid.UUID, data map[string]any) Event {
	return Event{
		Type:       typ,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Publisher that drops everything. Used when no brokers are configured
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }

// Adapter to use ordinary function as Publisher
type PublisherFunc func(ctx context.Context, e Event) error

func (f PublisherFunc) Publish(ctx context.Context, e Event) error { return f(ctx, e) }
func (f PublisherFunc) Close() error                               { return nil }
