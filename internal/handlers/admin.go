package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/crownplay/internal/handlers/render"
	"github.com/nkiryanov/crownplay/internal/logger"
	"github.com/nkiryanov/crownplay/internal/service/admin"
)

// Read {id} path value. Writes 400 if it is not uuid
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.ValidationError(w, "Invalid identifier")
		return uuid.Nil, false
	}
	return id, true
}

func handleKPIs(adminService adminService, l logger.Logger) http.Handler {
	type response struct {
		TotalUsers         int64           `json:"totalUsers"`
		ActiveUsers        int64           `json:"activeUsers"`
		TotalGoldCoins     decimal.Decimal `json:"totalGoldCoins"`
		TotalSweepCoins    decimal.Decimal `json:"totalSweepCoins"`
		PendingRedemptions int64           `json:"pendingRedemptions"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		kpis, err := adminService.KPIs(r.Context())
		if err != nil {
			renderError(w, err, l)
			return
		}

		render.JSON(w, response{
			TotalUsers:         kpis.TotalUsers,
			ActiveUsers:        kpis.ActiveUsers,
			TotalGoldCoins:     kpis.TotalGoldCoins,
			TotalSweepCoins:    kpis.TotalSweepCoins,
			PendingRedemptions: kpis.PendingRedemptions,
		})
	})
}

func handleListUsers(adminService adminService, l logger.Logger) http.Handler {
	type response struct {
		Users []userWithWalletResponse `json:"users"`
		Total int64                    `json:"total"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, err := parsePage(r)
		if err != nil {
			renderError(w, err, l)
			return
		}

		users, total, err := adminService.ListUsers(r.Context(), r.URL.Query().Get("search"), page)
		if err != nil {
			renderError(w, err, l)
			return
		}

		res := response{Users: make([]userWithWalletResponse, 0, len(users)), Total: total}
		for _, u := range users {
			res.Users = append(res.Users, newUserWithWalletResponse(u))
		}
		render.JSON(w, res)
	})
}

func handleAdjustBalance(adminService adminService, l logger.Logger) http.Handler {
	type request struct {
		GoldCoins  *decimal.Decimal `json:"goldCoins"`
		SweepCoins *decimal.Decimal `json:"sweepCoins"`
		Reason     string           `json:"reason"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		adminUser, ok := currentUser(w, r)
		if !ok {
			return
		}
		userID, ok := pathID(w, r)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		wallet, err := adminService.AdjustBalance(r.Context(), adminUser.ID, userID, admin.Adjustment{
			Gold:   data.GoldCoins,
			Sweep:  data.SweepCoins,
			Reason: data.Reason,
		})
		if err != nil {
			renderError(w, err, l)
			return
		}

		render.JSON(w, newWalletResponse(wallet))
	})
}

func handleSetUserStatus(adminService adminService, l logger.Logger) http.Handler {
	type request struct {
		Status string `json:"status" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		adminUser, ok := currentUser(w, r)
		if !ok {
			return
		}
		userID, ok := pathID(w, r)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, err := adminService.SetUserStatus(r.Context(), adminUser.ID, userID, data.Status)
		if err != nil {
			renderError(w, err, l)
			return
		}

		render.JSON(w, newUserResponse(user))
	})
}

func handleUserAudit(adminService adminService, l logger.Logger) http.Handler {
	type response struct {
		AuditLogs []auditLogResponse `json:"auditLogs"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(w, r)
		if !ok {
			return
		}

		logs, err := adminService.UserHistory(r.Context(), userID)
		if err != nil {
			renderError(w, err, l)
			return
		}

		render.JSON(w, response{AuditLogs: newAuditLogsResponse(logs)})
	})
}

func handleListAllTransactions(walletService walletService, l logger.Logger) http.Handler {
	type response struct {
		Transactions []transactionResponse `json:"transactions"`
		Total        int64                 `json:"total"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, err := parsePage(r)
		if err != nil {
			renderError(w, err, l)
			return
		}

		txs, total, err := walletService.ListAllTransactions(r.Context(), page)
		if err != nil {
			renderError(w, err, l)
			return
		}

		render.JSON(w, response{Transactions: newTransactionsResponse(txs), Total: total})
	})
}

func handleListRedemptions(redemptionService redemptionService, l logger.Logger) http.Handler {
	type response struct {
		Redemptions []redemptionResponse `json:"redemptions"`
		Total       int64                `json:"total"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, err := parsePage(r)
		if err != nil {
			renderError(w, err, l)
			return
		}

		redemptions, total, err := redemptionService.List(r.Context(), r.URL.Query().Get("status"), page)
		if err != nil {
			renderError(w, err, l)
			return
		}

		render.JSON(w, response{Redemptions: newRedemptionsResponse(redemptions), Total: total})
	})
}

func handleUpdateRedemption(redemptionService redemptionService, l logger.Logger) http.Handler {
	type request struct {
		Status string  `json:"status" validate:"required"`
		Notes  *string `json:"notes" validate:"omitempty,max=1000"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		adminUser, ok := currentUser(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		redemption, err := redemptionService.UpdateStatus(r.Context(), adminUser.ID, id, data.Status, data.Notes)
		if err != nil {
			renderError(w, err, l)
			return
		}

		render.JSON(w, newRedemptionResponse(redemption))
	})
}

func handleRedemptionAudit(redemptionService redemptionService, l logger.Logger) http.Handler {
	type response struct {
		AuditLogs []auditLogResponse `json:"auditLogs"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		logs, err := redemptionService.History(r.Context(), id)
		if err != nil {
			renderError(w, err, l)
			return
		}

		render.JSON(w, response{AuditLogs: newAuditLogsResponse(logs)})
	})
}
