package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/nkiryanov/crownplay/internal/apperrors"
	"github.com/nkiryanov/crownplay/internal/handlers/render"
	"github.com/nkiryanov/crownplay/internal/handlers/userctx"
	"github.com/nkiryanov/crownplay/internal/models"
)

type authService interface {
	Auth(ctx context.Context, r *http.Request) (models.User, error)
}

type errorLogger interface {
	Error(msg string, args ...any)
}

// AuthMiddleware puts authenticated user to request context
// Locked users get 403, unauthenticated 401. Unexpected failures are logged and hidden behind 500
func AuthMiddleware(as authService, l errorLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := as.Auth(r.Context(), r)
			switch {
			case err == nil:
			case errors.Is(err, apperrors.ErrUserLocked):
				render.Error(w, render.AuthorizationErrorType, "Account is locked", http.StatusForbidden)
				return
			case errors.Is(err, apperrors.ErrUnauthorized):
				render.Error(w, render.AuthenticationErrorType, "Unauthorized", http.StatusUnauthorized)
				return
			default:
				l.Error("Authentication failed", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			ctx := userctx.New(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly has to be applied after AuthMiddleware
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok || !user.IsAdmin() {
			render.Error(w, render.AuthorizationErrorType, "Admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
