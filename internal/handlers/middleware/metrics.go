package middleware

import (
	"net/http"
	"time"

	"github.com/nkiryanov/crownplay/internal/metrics"
)

const unmatchedPath = "unmatched"

// MetricsMiddleware counts requests by the route pattern they matched
// Has to wrap the ServeMux itself so the pattern is known after serving
func MetricsMiddleware(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			path := r.Pattern
			if path == "" {
				path = unmatchedPath
			}
			m.ObserveRequest(r.Method, path, sw.status, time.Since(start))
		})
	}
}
