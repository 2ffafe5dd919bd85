package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/crownplay/internal/apperrors"
	"github.com/nkiryanov/crownplay/internal/handlers/render"
	"github.com/nkiryanov/crownplay/internal/logger"
)

type errorMapping struct {
	err     error
	kind    string
	code    int
	message string
}

// Service errors exposed to clients
var errorMappings = []errorMapping{
	{apperrors.ErrInvalidAmount, render.ValidationErrorType, http.StatusBadRequest, "Amount must be a positive whole number"},
	{apperrors.ErrReasonRequired, render.ValidationErrorType, http.StatusBadRequest, "Reason is required"},
	{apperrors.ErrInvalidStatus, render.ValidationErrorType, http.StatusBadRequest, "Invalid status"},
	{apperrors.ErrInvalidPagination, render.ValidationErrorType, http.StatusBadRequest, "Invalid pagination"},

	{apperrors.ErrInvalidCredentials, render.AuthenticationErrorType, http.StatusUnauthorized, "Invalid email or password"},
	{apperrors.ErrUnauthorized, render.AuthenticationErrorType, http.StatusUnauthorized, "Unauthorized"},
	{apperrors.ErrUserLocked, render.AuthorizationErrorType, http.StatusForbidden, "Account is locked"},
	{apperrors.ErrForbidden, render.AuthorizationErrorType, http.StatusForbidden, "Forbidden"},

	{apperrors.ErrUserNotFound, render.NotFoundErrorType, http.StatusNotFound, "User not found"},
	{apperrors.ErrWalletNotFound, render.NotFoundErrorType, http.StatusNotFound, "Wallet not found"},
	{apperrors.ErrPackageNotFound, render.NotFoundErrorType, http.StatusNotFound, "Package not found"},
	{apperrors.ErrRedemptionNotFound, render.NotFoundErrorType, http.StatusNotFound, "Redemption request not found"},

	{apperrors.ErrUserAlreadyExists, render.ConflictErrorType, http.StatusBadRequest, "User already exists"},
	{apperrors.ErrAmountMismatch, render.ConflictErrorType, http.StatusBadRequest, "Amount does not match package price"},
	{apperrors.ErrRedemptionTransition, render.ConflictErrorType, http.StatusConflict, "Redemption status transition not allowed"},
	{apperrors.ErrBalanceInsufficient, render.ServiceErrorType, http.StatusBadRequest, "Insufficient balance"},

	{apperrors.ErrPaymentDeclined, render.PaymentErrorType, http.StatusBadRequest, "Payment declined"},
	{apperrors.ErrPaymentUnavailable, render.PaymentErrorType, http.StatusBadGateway, "Payment provider unavailable"},
}

// Render service error. Unknown errors are logged and hidden behind 500
func renderError(w http.ResponseWriter, err error, l logger.Logger) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			render.Error(w, m.kind, m.message, m.code)
			return
		}
	}

	l.Error("Request failed", "error", err)
	render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
}
