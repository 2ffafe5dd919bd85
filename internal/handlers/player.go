package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/crownplay/internal/handlers/render"
	"github.com/nkiryanov/crownplay/internal/logger"
	"github.com/nkiryanov/crownplay/internal/service/purchase"
)

func handleBalance(walletService walletService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}

		wallet, err := walletService.GetWallet(r.Context(), user.ID)
		if err != nil {
			renderError(w, err, l)
			return
		}

		render.JSON(w, newWalletResponse(wallet))
	})
}

func handleListTransactions(walletService walletService, l logger.Logger) http.Handler {
	type response struct {
		Transactions []transactionResponse `json:"transactions"`
		Total        int64                 `json:"total"`
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

		txs, total, err := walletService.ListTransactions(r.Context(), user.ID, page)
		if err != nil {
			renderError(w, err, l)
			return
		}

		render.JSON(w, response{Transactions: newTransactionsResponse(txs), Total: total})
	})
}

func handlePurchase(purchaseService purchaseService, l logger.Logger) http.Handler {
	type request struct {
		PackageID string `json:"packageId" validate:"required,uuid"`
		SourceID  string `json:"sourceId" validate:"required,notblank"`
	}

	type response struct {
		Message string          `json:"message"`
		Wallet  walletResponse  `json:"wallet"`
		Payment paymentResponse `json:"payment"`
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
			UserID:    user.ID,
			PackageID: uuid.MustParse(data.PackageID),
			SourceID:  data.SourceID,
		})
		if err != nil {
			renderError(w, err, l)
			return
		}

		message := "Purchase successful"
		if receipt.Duplicate {
			message = "Purchase already processed"
		}

		render.JSON(w, response{
			Message: message,
			Wallet:  newWalletResponse(receipt.Wallet),
			Payment: newPaymentResponse(receipt.Payment),
		})
	})
}

func handleRedemptionRequest(redemptionService redemptionService, l logger.Logger) http.Handler {
	type request struct {
		Amount *decimal.Decimal `json:"amount" validate:"required"`
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

		redemption, err := redemptionService.Request(r.Context(), user.ID, *data.Amount)
		if err != nil {
			renderError(w, err, l)
			return
		}

		render.JSONWithStatus(w, newRedemptionResponse(redemption), http.StatusCreated)
	})
}

func handleListPlayerRedemptions(redemptionService redemptionService, l logger.Logger) http.Handler {
	type response struct {
		Redemptions []redemptionResponse `json:"redemptions"`
		Total       int64                `json:"total"`
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

		redemptions, total, err := redemptionService.ListForUser(r.Context(), user.ID, page)
		if err != nil {
			renderError(w, err, l)
			return
		}

		render.JSON(w, response{Redemptions: newRedemptionsResponse(redemptions), Total: total})
	})
}
