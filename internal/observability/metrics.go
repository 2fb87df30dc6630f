// Package observability holds the Prometheus metrics for the ingestion
// pipeline and the query service.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters and histograms shared by the importers and
// the HTTP server.
type Metrics struct {
	RecordsRead     *prometheus.CounterVec // labels: source
	RecordsSkipped  *prometheus.CounterVec // labels: source, reason={location,normalize}
	RecordsInserted *prometheus.CounterVec // labels: source
	BatchSize       prometheus.Histogram

	HTTPRequests *prometheus.CounterVec   // labels: route, status
	HTTPDuration *prometheus.HistogramVec // labels: route
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "boardmap",
			Name:      "ingest_records_read_total",
			Help:      "Total source records read, by source tag.",
		}, []string{"source"}),
		RecordsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "boardmap",
			Name:      "ingest_records_skipped_total",
			Help:      "Records rejected during resolution or normalization.",
		}, []string{"source", "reason"}),
		RecordsInserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "boardmap",
			Name:      "ingest_records_inserted_total",
			Help:      "Canonical rows written to the store.",
		}, []string{"source"}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "boardmap",
			Name:      "ingest_batch_size",
			Help:      "Rows per bulk-insert batch.",
			Buckets:   []float64{1, 10, 25, 50, 75, 100},
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "boardmap",
			Name:      "http_requests_total",
			Help:      "API requests by route and status code.",
		}, []string{"route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "boardmap",
			Name:      "http_request_duration_seconds",
			Help:      "API request duration in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route"}),
	}
}

// NewMetrics creates and registers all metrics with the default registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RecordsRead,
		m.RecordsSkipped,
		m.RecordsInserted,
		m.BatchSize,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering, avoiding
// "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
