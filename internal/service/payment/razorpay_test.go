package payment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeRazorpay struct {
	payment  map[string]interface{}
	fetchErr error

	captured []int
}

func (f *fakeRazorpay) Fetch(paymentID string, _ map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.payment, nil
}

func (f *fakeRazorpay) Capture(paymentID string, amount int, _ map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	f.captured = append(f.captured, amount)

	captured := map[string]interface{}{}
	for k, v := range f.payment {
		captured[k] = v
	}
	captured["status"] = "captured"
	return captured, nil
}

func TestRazorpayClient(t *testing.T) {
	t.Parallel()

	req := ChargeRequest{SourceID: "pay_1", AmountCents: 1999}

	t.Run("authorized payment captured", func(t *testing.T) {
		fake := &fakeRazorpay{payment: map[string]interface{}{
			"id": "pay_1", "order_id": "order_1", "status": "authorized", "amount": float64(1999),
		}}
		c := newRazorpayClient(fake, nil)

		charge, err := c.Charge(t.Context(), req)

		require.NoError(t, err)
		require.True(t, charge.Completed())
		require.Equal(t, "pay_1", charge.ID)
		require.Equal(t, "order_1", charge.OrderID)
		require.Equal(t, "razorpay", charge.Provider)
		require.Equal(t, []int{1999}, fake.captured)
	})

	t.Run("already captured payment", func(t *testing.T) {
		fake := &fakeRazorpay{payment: map[string]interface{}{"id": "pay_1", "status": "captured", "amount": float64(1999)}}
		c := newRazorpayClient(fake, nil)

		charge, err := c.Charge(t.Context(), req)

		require.NoError(t, err)
		require.True(t, charge.Completed())
		require.Empty(t, fake.captured, "captured payment should not be captured again")
	})

	t.Run("declined", func(t *testing.T) {
		tests := []struct {
			name    string
			payment map[string]interface{}
		}{
			{"failed status", map[string]interface{}{"id": "pay_1", "status": "failed", "amount": float64(1999)}},
			{"amount mismatch", map[string]interface{}{"id": "pay_1", "status": "authorized", "amount": float64(100)}},
			{"no amount", map[string]interface{}{"id": "pay_1", "status": "captured"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				c := newRazorpayClient(&fakeRazorpay{payment: tt.payment}, nil)

				_, err := c.Charge(t.Context(), req)

				var payErr *Error
				require.True(t, errors.As(err, &payErr))
				require.Equal(t, CodeDeclined, payErr.Code)
			})
		}
	})

	t.Run("fetch failed", func(t *testing.T) {
		c := newRazorpayClient(&fakeRazorpay{fetchErr: errors.New("connection reset")}, nil)

		_, err := c.Charge(t.Context(), req)

		var payErr *Error
		require.True(t, errors.As(err, &payErr))
		require.Equal(t, CodeUnavailable, payErr.Code)
	})
}
