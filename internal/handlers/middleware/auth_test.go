package middleware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/crownplay/internal/apperrors"
	"github.com/nkiryanov/crownplay/internal/handlers/userctx"
	"github.com/nkiryanov/crownplay/internal/models"
)

// Allow to use a function as auth service
type authFunc func(ctx context.Context, r *http.Request) (models.User, error)

func (f authFunc) Auth(ctx context.Context, r *http.Request) (models.User, error) {
	return f(ctx, r)
}

type errorLoggerFunc func(string, ...any)

func (f errorLoggerFunc) Error(msg string, v ...any) { f(msg, v...) }

var discardErrors = errorLoggerFunc(func(string, ...any) {})

// Handler writing email of the user from context
var echoUser = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.FromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	_, _ = w.Write([]byte(user.Email))
})

func get(t *testing.T, h http.Handler) (int, string) {
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/test")
	require.NoError(t, err, "should make request to test server")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "should read response body")
	defer resp.Body.Close() // nolint:errcheck

	return resp.StatusCode, string(body)
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("auth ok", func(t *testing.T) {
		middleware := AuthMiddleware(authFunc(func(ctx context.Context, r *http.Request) (models.User, error) {
			return models.User{Email: "player@example.com"}, nil
		}), discardErrors)

		code, body := get(t, middleware(echoUser))

		require.Equalf(t, http.StatusOK, code, "should return status OK. Resp: %s", body)
		require.Equal(t, "player@example.com", body)
	})

	tests := []struct {
		name     string
		err      error
		code     int
		expected string
		logged   bool
	}{
		{
			name:     "unauthorized",
			err:      fmt.Errorf("%w: token expired", apperrors.ErrUnauthorized),
			code:     http.StatusUnauthorized,
			expected: `{"error": "authentication_failed", "message": "Unauthorized"}`,
		},
		{
			name:     "unexpected error",
			err:      errors.New("db is gone"),
			code:     http.StatusInternalServerError,
			expected: `{"error": "service_error", "message": "Internal server error"}`,
			logged:   true,
		},
		{
			name:     "locked",
			err:      fmt.Errorf("auth: %w", apperrors.ErrUserLocked),
			code:     http.StatusForbidden,
			expected: `{"error": "forbidden", "message": "Account is locked"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			logged := false
			l := errorLoggerFunc(func(string, ...any) { logged = true })
			middleware := AuthMiddleware(authFunc(func(ctx context.Context, r *http.Request) (models.User, error) {
				return models.User{}, tc.err
			}), l)

			code, body := get(t, middleware(echoUser))

			require.Equalf(t, tc.code, code, "unexpected code. Resp: %s", body)
			require.JSONEq(t, tc.expected, body)
			require.Equal(t, tc.logged, logged, "only unexpected errors are logged")
		})
	}
}

func TestAdminOnly(t *testing.T) {
	withUser := func(u models.User) http.Handler {
		return AuthMiddleware(authFunc(func(ctx context.Context, r *http.Request) (models.User, error) {
			return u, nil
		}), discardErrors)(AdminOnly(echoUser))
	}

	t.Run("admin passes", func(t *testing.T) {
		code, body := get(t, withUser(models.User{Email: "admin@example.com", Role: models.RoleAdmin}))

		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "admin@example.com", body)
	})

	t.Run("player forbidden", func(t *testing.T) {
		code, body := get(t, withUser(models.User{Email: "player@example.com", Role: models.RolePlayer}))

		require.Equal(t, http.StatusForbidden, code)
		require.JSONEq(t, `{"error": "forbidden", "message": "Admin access required"}`, body)
	})

	t.Run("no user in context", func(t *testing.T) {
		code, _ := get(t, AdminOnly(echoUser))

		require.Equal(t, http.StatusForbidden, code)
	})
}
