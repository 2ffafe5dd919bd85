package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/crownplay/internal/apperrors"
	"github.com/nkiryanov/crownplay/internal/models"
	"github.com/nkiryanov/crownplay/internal/repository"
	"github.com/nkiryanov/crownplay/internal/testutil"
)

func Test_UserRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create user ok", func(t *testing.T) {
		inTx(t, pg.Pool, func(_ pgx.Tx, storage repository.Storage) {
			user, err := storage.User().CreateUser(t.Context(), repository.CreateUserParams{
				Email:          "player@example.com",
				HashedPassword: "hashedpassword123",
				Name:           "John Doe",
			})

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, user.ID)
			assert.Equal(t, "player@example.com", user.Email)
			assert.Equal(t, "hashedpassword123", user.HashedPassword)
			assert.Equal(t, "John Doe", user.Name)
			assert.Equal(t, models.RolePlayer, user.Role, "role should default to player")
			assert.Equal(t, models.UserStatusActive, user.Status, "new users should be active")
			assert.WithinDuration(t, time.Now(), user.CreatedAt, 2*time.Second)
		})
	})

	t.Run("create duplicate email fail", func(t *testing.T) {
		inTx(t, pg.Pool, func(_ pgx.Tx, storage repository.Storage) {
			_, err := storage.User().CreateUser(t.Context(), repository.CreateUserParams{Email: "player@example.com", HashedPassword: "a"})
			require.NoError(t, err)

			_, err = storage.User().CreateUser(t.Context(), repository.CreateUserParams{Email: "PLAYER@example.com", HashedPassword: "b"})

			require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists, "email has to be unique regardless of case")
		})
	})

	t.Run("get user", func(t *testing.T) {
		inTx(t, pg.Pool, func(_ pgx.Tx, storage repository.Storage) {
			created, err := storage.User().CreateUser(t.Context(), repository.CreateUserParams{Email: "Player@Example.com", HashedPassword: "a"})
			require.NoError(t, err)

			byID, err := storage.User().GetUserByID(t.Context(), created.ID)
			require.NoError(t, err)
			require.Equal(t, created, byID)

			byEmail, err := storage.User().GetUserByEmail(t.Context(), "player@example.com")
			require.NoError(t, err, "email lookup should be case insensitive")
			require.Equal(t, created.ID, byEmail.ID)

			_, err = storage.User().GetUserByID(t.Context(), uuid.New())
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)

			_, err = storage.User().GetUserByEmail(t.Context(), "nobody@example.com")
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("set status and role", func(t *testing.T) {
		inTx(t, pg.Pool, func(_ pgx.Tx, storage repository.Storage) {
			user := createPlayer(t, storage)

			locked, err := storage.User().SetStatus(t.Context(), user.ID, models.UserStatusLocked)
			require.NoError(t, err)
			require.Equal(t, models.UserStatusLocked, locked.Status)

			admin, err := storage.User().SetRole(t.Context(), user.ID, models.RoleAdmin)
			require.NoError(t, err)
			require.True(t, admin.IsAdmin())

			_, err = storage.User().SetStatus(t.Context(), uuid.New(), models.UserStatusLocked)
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("list users", func(t *testing.T) {
		inTx(t, pg.Pool, func(_ pgx.Tx, storage repository.Storage) {
			for _, p := range []repository.CreateUserParams{
				{Email: "alice@example.com", Name: "Alice"},
				{Email: "bob@example.com", Name: "Bob Smith"},
				{Email: "carol@sample.org", Name: "Carol"},
			} {
				p.HashedPassword = "hash"
				u, err := storage.User().CreateUser(t.Context(), p)
				require.NoError(t, err)
				_, err = storage.Wallet().CreateWallet(t.Context(), u.ID)
				require.NoError(t, err)
			}

			users, total, err := storage.User().ListUsers(t.Context(), "SMITH", repository.Page{Limit: 10})
			require.NoError(t, err)
			require.EqualValues(t, 1, total, "search should match name case insensitive")
			require.Len(t, users, 1)
			require.Equal(t, "bob@example.com", users[0].Email)
			require.True(t, users[0].Wallet.GoldCoins.IsZero())

			users, total, err = storage.User().ListUsers(t.Context(), "example.com", repository.Page{Limit: 1, Offset: 1})
			require.NoError(t, err)
			require.EqualValues(t, 2, total, "total counts all matches")
			require.Len(t, users, 1, "users are limited to page")

			users, total, err = storage.User().ListUsers(t.Context(), "example.com", repository.Page{Limit: 10, Offset: 100})
			require.NoError(t, err)
			require.EqualValues(t, 2, total, "total is known even past the last page")
			require.Empty(t, users)
		})
	})
}
