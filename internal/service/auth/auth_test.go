package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nkiryanov/crownplay/internal/apperrors"
	"github.com/nkiryanov/crownplay/internal/models"
	"github.com/nkiryanov/crownplay/internal/repository"
	"github.com/nkiryanov/crownplay/internal/repository/postgres"
	"github.com/nkiryanov/crownplay/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/crownplay/internal/service/user"
	"github.com/nkiryanov/crownplay/internal/testutil"
)

func Test_Auth(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	tokens, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret-key"})
	require.NoError(t, err, "token manager should be created without errors")

	// AuthService bound to rollback-only transaction
	inTx := func(t *testing.T, fn func(s *AuthService, storage repository.Storage)) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			users := user.NewService(user.BcryptHasher{Cost: bcrypt.MinCost}, storage)

			s, err := NewService(Config{}, tokens, users)
			require.NoError(t, err, "auth service could't be started")

			fn(s, storage)
		})
	}

	bearer := func(token string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		return r
	}

	t.Run("new auth service defaults", func(t *testing.T) {
		s, err := NewService(Config{}, nil, nil)
		require.NoError(t, err, "auth service should be created without errors")

		require.Equal(t, defaultAccessHeaderName, s.accessHeaderName, "default access header name should be set")
		require.Equal(t, defaultAccessAuthScheme, s.accessAuthScheme, "default access auth scheme should be set")
	})

	t.Run("Signup", func(t *testing.T) {
		t.Run("new user ok", func(t *testing.T) {
			inTx(t, func(s *AuthService, _ repository.Storage) {
				u, token, err := s.Signup(t.Context(), "player@example.com", "password", "John")

				require.NoError(t, err, "signup of new user should be ok")
				require.Equal(t, models.RolePlayer, u.Role)
				require.NotEmpty(t, token.Value, "access token should not be empty")
			})
		})

		t.Run("fail if user exists", func(t *testing.T) {
			inTx(t, func(s *AuthService, _ repository.Storage) {
				_, _, err := s.Signup(t.Context(), "player@example.com", "password", "")
				require.NoError(t, err, "no error should happen if user not exists")

				_, _, err = s.Signup(t.Context(), "player@example.com", "other-pwd", "")

				require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
			})
		})
	})

	t.Run("Login", func(t *testing.T) {
		inTx(t, func(s *AuthService, storage repository.Storage) {
			created, _, err := s.Signup(t.Context(), "player@example.com", "password", "")
			require.NoError(t, err)

			t.Run("ok", func(t *testing.T) {
				u, token, err := s.Login(t.Context(), "player@example.com", "password")

				require.NoError(t, err)
				require.Equal(t, created.ID, u.ID)

				authenticated, err := s.Auth(t.Context(), bearer(token.Value))
				require.NoError(t, err, "issued token should authenticate requests")
				require.Equal(t, created.ID, authenticated.ID)
			})

			t.Run("wrong password", func(t *testing.T) {
				_, _, err := s.Login(t.Context(), "player@example.com", "wrong")
				require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
			})

			t.Run("locked user", func(t *testing.T) {
				_, token, err := s.Login(t.Context(), "player@example.com", "password")
				require.NoError(t, err)

				_, err = storage.User().SetStatus(t.Context(), created.ID, models.UserStatusLocked)
				require.NoError(t, err)

				_, _, err = s.Login(t.Context(), "player@example.com", "password")
				require.ErrorIs(t, err, apperrors.ErrUserLocked)

				_, err = s.Auth(t.Context(), bearer(token.Value))
				require.ErrorIs(t, err, apperrors.ErrUserLocked, "issued tokens of locked user are rejected")
			})
		})
	})

	t.Run("Auth fails", func(t *testing.T) {
		inTx(t, func(s *AuthService, _ repository.Storage) {
			tests := []struct {
				name   string
				header string
			}{
				{"no header", ""},
				{"no scheme", "token"},
				{"wrong scheme", "Basic dXNlcjpwd2Q="},
				{"empty token", "Bearer "},
				{"garbage token", "Bearer not-a-jwt"},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					r := httptest.NewRequest(http.MethodGet, "/", nil)
					if tt.header != "" {
						r.Header.Set("Authorization", tt.header)
					}

					_, err := s.Auth(t.Context(), r)

					require.ErrorIs(t, err, apperrors.ErrUnauthorized)
				})
			}

			t.Run("token of deleted user", func(t *testing.T) {
				token, err := tokens.Issue(models.User{Role: models.RolePlayer})
				require.NoError(t, err)

				_, err = s.Auth(t.Context(), bearer(token.Value))

				require.ErrorIs(t, err, apperrors.ErrUnauthorized)
			})
		})
	})
}
