package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nkiryanov/crownplay/internal/logger"
)

const (
	SquareSandboxURL    = "https://connect.squareupsandbox.com"
	SquareProductionURL = "https://connect.squareup.com"

	squareVersion = "2024-06-04"
)

type SquareConfig struct {
	BaseURL     string
	AccessToken string
	LocationID  string
	Timeout     time.Duration
}

// Square payments API client
type SquareClient struct {
	baseURL     string
	accessToken string
	locationID  string
	timeout     time.Duration

	client *http.Client
	logger logger.Logger
}

type squareMoney struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type squarePaymentRequest struct {
	SourceID       string      `json:"source_id"`
	IdempotencyKey string      `json:"idempotency_key"`
	AmountMoney    squareMoney `json:"amount_money"`
	LocationID     string      `json:"location_id,omitempty"`
	ReferenceID    string      `json:"reference_id,omitempty"`
	Note           string      `json:"note,omitempty"`
}

type squarePayment struct {
	ID          string      `json:"id"`
	Status      string      `json:"status"`
	OrderID     string      `json:"order_id"`
	AmountMoney squareMoney `json:"amount_money"`
	ReceiptURL  string      `json:"receipt_url"`
}

type squareError struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
}

type squareResponse struct {
	Payment *squarePayment `json:"payment"`
	Errors  []squareError  `json:"errors"`
}

func NewSquareClient(cfg SquareConfig, l logger.Logger) *SquareClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = SquareSandboxURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &SquareClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accessToken: cfg.AccessToken,
		locationID:  cfg.LocationID,
		timeout:     cfg.Timeout,
		client:      &http.Client{},
		logger:      l,
	}
}

func (c *SquareClient) Name() string {
	return "square"
}

func (c *SquareClient) Charge(ctx context.Context, req ChargeRequest) (Charge, error) {
	var charge Charge

	if req.Currency == "" {
		req.Currency = DefaultCurrency
	}

	body, err := json.Marshal(squarePaymentRequest{
		SourceID:       req.SourceID,
		IdempotencyKey: req.IdempotencyKey,
		AmountMoney:    squareMoney{Amount: req.AmountCents, Currency: req.Currency},
		LocationID:     c.locationID,
		ReferenceID:    req.CustomerID,
		Note:           req.Note,
	})
	if err != nil {
		return charge, NewError(CodeUnavailable, 0, fmt.Errorf("failed to encode request: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/payments", bytes.NewReader(body))
	if err != nil {
		return charge, NewError(CodeUnavailable, 0, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	httpReq.Header.Set("Square-Version", squareVersion)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return charge, NewError(CodeUnavailable, 0, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close() // nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return charge, c.processTooManyRequests(resp)
	case resp.StatusCode >= http.StatusInternalServerError:
		c.logger.Warn("Square unavailable", "status_code", resp.StatusCode)
		return charge, NewError(CodeUnavailable, 0, fmt.Errorf("unexpected status code %d", resp.StatusCode))
	}

	var parsed squareResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.logger.Warn("Failed to decode Square response", "status_code", resp.StatusCode, "error", err)
		return charge, NewError(CodeUnavailable, 0, fmt.Errorf("failed to decode response: %w", err))
	}

	if len(parsed.Errors) > 0 || parsed.Payment == nil {
		err := squareErrors(parsed.Errors)
		c.logger.Info("Square declined payment", "status_code", resp.StatusCode, "error", err)
		return charge, NewError(CodeDeclined, 0, err)
	}

	p := parsed.Payment
	charge = Charge{
		ID:          p.ID,
		OrderID:     p.OrderID,
		Status:      p.Status,
		AmountCents: p.AmountMoney.Amount,
		Provider:    c.Name(),
		Raw: map[string]any{
			"status":      p.Status,
			"receipt_url": p.ReceiptURL,
		},
	}

	c.logger.Debug("Square payment", "id", p.ID, "status", p.Status, "amount", p.AmountMoney.Amount)
	return charge, nil
}

func (c *SquareClient) processTooManyRequests(resp *http.Response) error {
	header := resp.Header.Get("Retry-After")
	retryAfter, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil {
		retryAfter = 60
	}

	c.logger.Warn("Square throttled", "retry_after", retryAfter)
	return NewError(CodeRetryAfter, retryAfter, fmt.Errorf("retry after %d seconds", retryAfter))
}

func squareErrors(list []squareError) error {
	if len(list) == 0 {
		return errors.New("no payment in response")
	}

	msgs := make([]string, 0, len(list))
	for _, e := range list {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Code, e.Detail))
	}
	return errors.New(strings.Join(msgs, "; "))
}
