package payment

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSquareClient(t *testing.T) {
	t.Parallel()

	chargeReq := ChargeRequest{
		SourceID:       "cnon:card-nonce-ok",
		AmountCents:    999,
		IdempotencyKey: "idem-key",
		CustomerID:     "user-1",
		Note:           "Silver Pack",
	}

	newClient := func(t *testing.T, h http.HandlerFunc) *SquareClient {
		srv := httptest.NewServer(h)
		t.Cleanup(srv.Close)

		return NewSquareClient(SquareConfig{BaseURL: srv.URL, AccessToken: "sq-token", LocationID: "loc-1"}, nil)
	}

	t.Run("completed payment", func(t *testing.T) {
		var got squarePaymentRequest

		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/v2/payments", r.URL.Path)
			require.Equal(t, "Bearer sq-token", r.Header.Get("Authorization"))
			require.NotEmpty(t, r.Header.Get("Square-Version"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"payment": {"id": "sq-pay-1", "status": "COMPLETED", "order_id": "sq-order-1", "amount_money": {"amount": 999, "currency": "USD"}}}`))
		})

		charge, err := c.Charge(t.Context(), chargeReq)

		require.NoError(t, err)
		require.True(t, charge.Completed())
		require.Equal(t, "sq-pay-1", charge.ID)
		require.Equal(t, "sq-order-1", charge.OrderID)
		require.EqualValues(t, 999, charge.AmountCents)
		require.Equal(t, "square", charge.Provider)

		require.Equal(t, "cnon:card-nonce-ok", got.SourceID)
		require.Equal(t, "idem-key", got.IdempotencyKey)
		require.Equal(t, squareMoney{Amount: 999, Currency: "USD"}, got.AmountMoney, "currency defaults to USD")
		require.Equal(t, "loc-1", got.LocationID)
	})

	t.Run("not completed payment returned as is", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"payment": {"id": "sq-pay-2", "status": "PENDING", "amount_money": {"amount": 999, "currency": "USD"}}}`))
		})

		charge, err := c.Charge(t.Context(), chargeReq)

		require.NoError(t, err)
		require.False(t, charge.Completed())
	})

	t.Run("card declined", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusPaymentRequired)
			_, _ = w.Write([]byte(`{"errors": [{"category": "PAYMENT_METHOD_ERROR", "code": "CARD_DECLINED", "detail": "Card declined."}]}`))
		})

		_, err := c.Charge(t.Context(), chargeReq)

		var payErr *Error
		require.True(t, errors.As(err, &payErr))
		require.Equal(t, CodeDeclined, payErr.Code)
		require.ErrorContains(t, err, "CARD_DECLINED")
	})

	t.Run("throttled", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "17")
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := c.Charge(t.Context(), chargeReq)

		var payErr *Error
		require.True(t, errors.As(err, &payErr))
		require.Equal(t, CodeRetryAfter, payErr.Code)
		require.Equal(t, 17*time.Second, payErr.RetryAfter)
	})

	t.Run("server error", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := c.Charge(t.Context(), chargeReq)

		var payErr *Error
		require.True(t, errors.As(err, &payErr))
		require.Equal(t, CodeUnavailable, payErr.Code)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		t.Cleanup(srv.Close)
		c := NewSquareClient(SquareConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, nil)

		_, err := c.Charge(t.Context(), chargeReq)

		var payErr *Error
		require.True(t, errors.As(err, &payErr))
		require.Equal(t, CodeUnavailable, payErr.Code)
	})
}
