package middleware

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

type loggerFunc func(string, ...any)

func (f loggerFunc) Info(msg string, v ...any) { f(msg, v...) }

func TestLoggerMiddleware(t *testing.T) {
	called := 0
	var msg string
	var args []any

	logger := loggerFunc(func(m string, v ...any) {
		called++
		msg = m
		args = v
	})

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	code, body := get(t, LoggerMiddleware(logger)(h))

	require.Equal(t, http.StatusCreated, code)
	require.JSONEq(t, `{"ok":true}`, body)

	require.Equal(t, 1, called, "logger should be called once")
	require.Equal(t, "got HTTP request", msg)
	require.Len(t, args, 10, "logger should log 5 fields")
	require.Equal(t, []any{"method", "GET", "uri", "/test"}, args[:4])
	require.Equal(t, "duration", args[4])
	require.NotEmpty(t, args[5], "duration should not be empty")
	require.Equal(t, []any{"status", http.StatusCreated, "size", 11}, args[6:])
}
