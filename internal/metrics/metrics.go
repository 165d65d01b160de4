// Package metrics exposes scanner Prometheus metrics, the /healthz status
// and the HTTP server that hosts them alongside the webhook and
// WebSocket routes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the scanner.
type Metrics struct {
	CyclesTotal      prometheus.Counter
	CycleDuration    prometheus.Histogram
	LastCycle        prometheus.Gauge
	InstrumentsTotal *prometheus.CounterVec // labels: outcome
	AlertsTotal      prometheus.Counter
	NotifyFailures   *prometheus.CounterVec // labels: sink
	FetchDuration    *prometheus.HistogramVec // labels: kind=symbols|book|candles
}

// NewMetrics creates the scanner metrics and registers them on reg.
// Passing a fresh prometheus.NewRegistry() keeps tests independent.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_cycles_total",
			Help: "Total completed scan cycles",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scanner_cycle_duration_seconds",
			Help:    "Wall time of one scan cycle",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		LastCycle: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scanner_last_cycle_timestamp",
			Help: "Unix time the last scan cycle finished",
		}),
		InstrumentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scanner_instruments_total",
			Help: "Instruments processed per outcome (alerted or skip reason)",
		}, []string{"outcome"}),
		AlertsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_alerts_total",
			Help: "Opportunities detected",
		}),
		NotifyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scanner_notify_failures_total",
			Help: "Failed notification deliveries per sink",
		}, []string{"sink"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scanner_fetch_duration_seconds",
			Help:    "Market data request latency",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"kind"}),
	}

	reg.MustRegister(
		m.CyclesTotal,
		m.CycleDuration,
		m.LastCycle,
		m.InstrumentsTotal,
		m.AlertsTotal,
		m.NotifyFailures,
		m.FetchDuration,
	)

	return m
}
