package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/razorpay/razorpay-go"

	"github.com/nkiryanov/crownplay/internal/logger"
)

// Subset of razorpay payments resource the client needs
type razorpayPayments interface {
	Fetch(paymentID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
	Capture(paymentID string, amount int, data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Razorpay captures payments authorized by the checkout widget.
// SourceID of the charge request is the razorpay payment id
type RazorpayClient struct {
	payments razorpayPayments
	logger   logger.Logger
}

func NewRazorpayClient(keyID string, keySecret string, l logger.Logger) *RazorpayClient {
	client := razorpay.NewClient(keyID, keySecret)
	return newRazorpayClient(client.Payment, l)
}

func newRazorpayClient(payments razorpayPayments, l logger.Logger) *RazorpayClient {
	if l == nil {
		l = logger.NewNoOpLogger()
	}
	return &RazorpayClient{payments: payments, logger: l}
}

func (c *RazorpayClient) Name() string {
	return "razorpay"
}

func (c *RazorpayClient) Charge(ctx context.Context, req ChargeRequest) (Charge, error) {
	var charge Charge

	if err := ctx.Err(); err != nil {
		return charge, NewError(CodeUnavailable, 0, err)
	}

	currency := req.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	p, err := c.payments.Fetch(req.SourceID, nil, nil)
	if err != nil {
		c.logger.Warn("Razorpay fetch failed", "payment_id", req.SourceID, "error", err)
		return charge, NewError(CodeUnavailable, 0, fmt.Errorf("failed to fetch payment: %w", err))
	}

	if amount := razorpayAmount(p); amount != req.AmountCents {
		return charge, NewError(CodeDeclined, 0, fmt.Errorf("payment amount %d, expected %d", amount, req.AmountCents))
	}

	if stringField(p, "status") == "authorized" {
		p, err = c.payments.Capture(req.SourceID, int(req.AmountCents), map[string]interface{}{"currency": currency}, nil)
		if err != nil {
			c.logger.Warn("Razorpay capture failed", "payment_id", req.SourceID, "error", err)
			return charge, NewError(CodeUnavailable, 0, fmt.Errorf("failed to capture payment: %w", err))
		}
	}

	status := stringField(p, "status")
	if status != "captured" {
		return charge, NewError(CodeDeclined, 0, errors.New("payment status "+status))
	}

	charge = Charge{
		ID:          stringField(p, "id"),
		OrderID:     stringField(p, "order_id"),
		Status:      StatusCompleted,
		AmountCents: razorpayAmount(p),
		Provider:    c.Name(),
		Raw:         map[string]any{"status": status, "method": stringField(p, "method")},
	}

	c.logger.Debug("Razorpay payment", "id", charge.ID, "status", status, "amount", charge.AmountCents)
	return charge, nil
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

// Amounts are decoded from json into map, so they usually come as float64
func razorpayAmount(m map[string]interface{}) int64 {
	switch v := m["amount"].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	default:
		return -1
	}
}
