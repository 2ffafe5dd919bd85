package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/nkiryanov/crownplay/internal/handlers/render"
	"github.com/nkiryanov/crownplay/internal/logger"
	"github.com/nkiryanov/crownplay/internal/service/purchase"
)

// Checkout flow: client sends the price it showed, in cents, so stale prices are refused
func handleCreatePayment(purchaseService purchaseService, l logger.Logger) http.Handler {
	type request struct {
		SourceID  string `json:"sourceId" validate:"required,notblank"`
		PackageID string `json:"packageId" validate:"required,uuid"`
		Amount    int64  `json:"amount" validate:"required,gt=0"`
	}

	type paymentSummary struct {
		ID     uuid.UUID `json:"id"`
		Status string    `json:"status"`
	}

	type response struct {
		Success bool           `json:"success"`
		Message string         `json:"message"`
		Wallet  walletResponse `json:"wallet"`
		Payment paymentSummary `json:"payment"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		receipt, err := purchaseService.Purchase(r.Context(), purchase.Request{
			UserID:      user.ID,
			PackageID:   uuid.MustParse(data.PackageID),
			SourceID:    data.SourceID,
			AmountCents: &data.Amount,
		})
		if err != nil {
			renderError(w, err, l)
			return
		}

		message := "Payment successful"
		if receipt.Duplicate {
			message = "Payment already processed"
		}

		render.JSON(w, response{
			Success: true,
			Message: message,
			Wallet:  newWalletResponse(receipt.Wallet),
			Payment: paymentSummary{ID: receipt.Payment.ID, Status: receipt.Payment.Status},
		})
	})
}

func handlePaymentHistory(purchaseService purchaseService, l logger.Logger) http.Handler {
	type response struct {
		Payments []paymentResponse `json:"payments"`
		Total    int64             `json:"total"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}

		page, err := parsePage(r)
		if err != nil {
			renderError(w, err, l)
			return
		}

		payments, total, err := purchaseService.ListPayments(r.Context(), user.ID, page)
		if err != nil {
			renderError(w, err, l)
			return
		}

		res := response{Payments: make([]paymentResponse, 0, len(payments)), Total: total}
		for _, p := range payments {
			res.Payments = append(res.Payments, newPaymentResponse(p))
		}
		render.JSON(w, res)
	})
}
