package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/crownplay/internal/metrics"
)

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/games/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(MetricsMiddleware(m)(mux))
	defer srv.Close()

	for _, path := range []string{"/api/games/1", "/api/games/2", "/nowhere"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)

	require.Contains(t, string(body), `http_requests_total{method="GET",path="GET /api/games/{id}",status="204"} 2`, "labeled by pattern, not by url")
	require.Contains(t, string(body), `http_requests_total{method="GET",path="unmatched",status="404"} 1`)
}
