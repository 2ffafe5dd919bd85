package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type writerFunc func(ctx context.Context, msgs ...kafka.Message) error

func (f writerFunc) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	return f(ctx, msgs...)
}

func (f writerFunc) Close() error { return nil }

func TestKafkaPublisher(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("message keyed by user", func(t *testing.T) {
		var got []kafka.Message
		p := &KafkaPublisher{topic: DefaultTopic, writer: writerFunc(func(_ context.Context, msgs ...kafka.Message) error {
			got = append(got, msgs...)
			return nil
		})}

		err := p.Publish(t.Context(), New(TypeBalanceAdjusted, userID, map[string]any{"reason": "bonus"}))

		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, userID.String(), string(got[0].Key))
		require.Equal(t, "type", got[0].Headers[0].Key)
		require.Equal(t, TypeBalanceAdjusted, string(got[0].Headers[0].Value))

		var decoded Event
		require.NoError(t, json.Unmarshal(got[0].Value, &decoded))
		require.Equal(t, TypeBalanceAdjusted, decoded.Type)
		require.Equal(t, userID, decoded.UserID)
		require.Equal(t, "bonus", decoded.Data["reason"])
	})

	t.Run("write error wrapped", func(t *testing.T) {
		brokerErr := errors.New("broker not available")
		p := &KafkaPublisher{topic: DefaultTopic, writer: writerFunc(func(context.Context, ...kafka.Message) error {
			return brokerErr
		})}

		err := p.Publish(t.Context(), New(TypePurchaseCompleted, userID, nil))

		require.ErrorIs(t, err, brokerErr)
	})

	t.Run("default topic", func(t *testing.T) {
		p := NewKafkaPublisher([]string{"localhost:9092"}, "")
		t.Cleanup(func() { _ = p.Close() })

		require.Equal(t, DefaultTopic, p.topic)
	})
}
