package main

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/crownplay/internal/testutil"
)

func Test_run(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	port, err := testutil.RandomPort()
	require.NoError(t, err, "failed to get random port to start server")
	listenAddr := fmt.Sprintf("localhost:%d", port)

	noEnv := func(string) string { return "" }

	t.Run("stop with signal", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond) // Half Second
		t.Cleanup(cancel)

		err := run(ctx, noEnv, os.Getwd, []string{
			"--address", listenAddr,
			"--log-level", "debug",
			"--environment", "test",
			"--database", pg.DSN,
			"--secret-key", "secret",
		})

		require.NoError(t, err, "on correct stop should not return error")
	})

	t.Run("admin ensured on start", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		t.Cleanup(cancel)

		env := map[string]string{"ADMIN_EMAIL": "root@example.com", "ADMIN_PASSWORD": "root-password"}

		err := run(ctx, func(key string) string { return env[key] }, os.Getwd, []string{
			"--address", listenAddr,
			"--environment", "test",
			"--database", pg.DSN,
			"--secret-key", "secret",
		})
		require.NoError(t, err)

		var role string
		err = pg.Pool.QueryRow(t.Context(), "SELECT role FROM users WHERE email = $1", "root@example.com").Scan(&role)
		require.NoError(t, err)
		require.Equal(t, "ADMIN", role)
	})

	t.Run("fail without secret key", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond) // Half Second
		t.Cleanup(cancel)

		err := run(ctx, noEnv, os.Getwd, []string{
			"--address", listenAddr,
			"--database", pg.DSN,
		})

		require.ErrorContains(t, err, "secret key is required")
	})

	t.Run("fail with unreachable redis", func(t *testing.T) {
		t.Setenv("CROWNPLAY_REDIS_ADDR", "localhost:1")

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		t.Cleanup(cancel)

		err := run(ctx, noEnv, os.Getwd, []string{
			"--address", listenAddr,
			"--environment", "test",
			"--database", pg.DSN,
			"--secret-key", "secret",
		})

		require.ErrorContains(t, err, "redis")
	})
}
