// Package metrics exports service counters in prometheus format.
// All methods are safe to call on nil *Metrics, so collectors are optional for callers
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	purchases          *prometheus.CounterVec
	redemptions        *prometheus.CounterVec
	adjustments        *prometheus.CounterVec
	ledgerMismatches   prometheus.Gauge
	reconciliationRuns *prometheus.CounterVec
}

// Create and register collectors
// Pass prometheus.NewRegistry() in tests to avoid duplicate registration
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		purchases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_purchases_total",
				Help: "Package purchases by outcome",
			},
			[]string{"provider", "outcome"},
		),
		redemptions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_redemptions_total",
				Help: "Redemption requests and status changes",
			},
			[]string{"status"},
		),
		adjustments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_admin_adjustments_total",
				Help: "Admin balance adjustments by outcome",
			},
			[]string{"outcome"},
		),
		ledgerMismatches: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "wallet_ledger_mismatches",
				Help: "Wallets whose balance differs from ledger sum on last reconciliation",
			},
		),
		reconciliationRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_reconciliation_runs_total",
				Help: "Reconciliation runs by result",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.purchases,
		m.redemptions,
		m.adjustments,
		m.ledgerMismatches,
		m.reconciliationRuns,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method string, path string, status int, took time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(took.Seconds())
}

func (m *Metrics) Purchase(provider string, outcome string) {
	if m == nil {
		return
	}
	m.purchases.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) Redemption(status string) {
	if m == nil {
		return
	}
	m.redemptions.WithLabelValues(status).Inc()
}

func (m *Metrics) Adjustment(outcome string) {
	if m == nil {
		return
	}
	m.adjustments.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Reconciled(mismatches int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.reconciliationRuns.WithLabelValues("error").Inc()
		return
	}
	m.reconciliationRuns.WithLabelValues("ok").Inc()
	m.ledgerMismatches.Set(float64(mismatches))
}
