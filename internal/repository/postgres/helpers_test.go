package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/crownplay/internal/models"
	"github.com/nkiryanov/crownplay/internal/repository"
	"github.com/nkiryanov/crownplay/internal/testutil"
)

// Run fn with storage bound to rollback-only transaction
// May be called several times (aka transaction in transaction)
func inTx(t *testing.T, outer DBTX, fn func(pgx.Tx, repository.Storage)) {
	testutil.InTx(outer, t, func(tx pgx.Tx) {
		fn(tx, NewStorage(tx))
	})
}

// Create user with zero wallet
func createPlayer(t *testing.T, storage repository.Storage) models.User {
	t.Helper()

	user, err := storage.User().CreateUser(t.Context(), repository.CreateUserParams{
		Email:          uuid.NewString() + "@example.com",
		HashedPassword: "hash",
		Name:           "Player",
	})
	require.NoError(t, err, "player should be created")

	_, err = storage.Wallet().CreateWallet(t.Context(), user.ID)
	require.NoError(t, err, "player wallet should be created")

	return user
}
