package tokenmanager

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/crownplay/internal/models"
)

func mustParseTime(value string) time.Time {
	dt, err := time.Parse("2006-01-02 15:04:05Z07:00", value)
	if err != nil {
		panic(err)
	}
	return dt
}

func Test_TokenManager(t *testing.T) {
	t.Parallel()

	testUser := models.User{
		ID:    uuid.New(),
		Email: "admin@example.com",
		Role:  models.RoleAdmin,
	}

	t.Run("new defaults", func(t *testing.T) {
		m, err := New(Config{SecretKey: "test-secret-key"})

		require.NoError(t, err)
		assert.Equal(t, defaultAccessTokenTTL, m.accessTTL)
		assert.Equal(t, jwt.SigningMethodHS256, m.alg)
	})

	t.Run("new fails", func(t *testing.T) {
		_, err := New(Config{})
		require.Error(t, err, "secret key is required")

		_, err = New(Config{SecretKey: "key", Alg: "RS256"})
		require.Error(t, err, "only hmac methods are supported")
	})

	t.Run("issue and parse", func(t *testing.T) {
		m, err := New(Config{SecretKey: "test-secret-key", AccessTTL: time.Hour})
		require.NoError(t, err)
		m.now = func() time.Time { return time.Now().Add(-30 * time.Minute) }

		token, err := m.Issue(testUser)
		require.NoError(t, err)
		require.NotEmpty(t, token.Value)
		require.WithinDuration(t, time.Now().Add(30*time.Minute), token.ExpiresAt, 2*time.Second)

		m.now = time.Now
		claims, err := m.Parse(token.Value)

		require.NoError(t, err)
		require.Equal(t, testUser.ID, claims.UserID)
		require.Equal(t, models.RoleAdmin, claims.Role)
	})

	t.Run("expired token", func(t *testing.T) {
		m, err := New(Config{SecretKey: "test-secret-key", AccessTTL: time.Minute})
		require.NoError(t, err)
		m.now = func() time.Time { return mustParseTime("2024-01-01 19:00:01Z") }

		token, err := m.Issue(testUser)
		require.NoError(t, err)

		m.now = func() time.Time { return mustParseTime("2024-01-01 19:01:02Z") }
		_, err = m.Parse(token.Value)

		require.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("signed with other key", func(t *testing.T) {
		issuer, err := New(Config{SecretKey: "other-key"})
		require.NoError(t, err)
		token, err := issuer.Issue(testUser)
		require.NoError(t, err)

		m, err := New(Config{SecretKey: "test-secret-key"})
		require.NoError(t, err)
		_, err = m.Parse(token.Value)

		require.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("none algorithm rejected", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, AccessTokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
			UserID:           testUser.ID,
			Role:             models.RoleAdmin,
		})
		value, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		m, err := New(Config{SecretKey: "test-secret-key"})
		require.NoError(t, err)
		_, err = m.Parse(value)

		require.Error(t, err)
		require.True(t, strings.Contains(err.Error(), "signing method"), "got %v", err)
	})
}
