package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the aggregation service.
type Metrics struct {
	// Upstream call metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: endpoint={current,forecast}, outcome={success,error,circuit_open}
	UpstreamDuration *prometheus.HistogramVec // labels: endpoint

	// Aggregation metrics.
	Aggregations *prometheus.CounterVec // labels: outcome={success,missing_location,upstream_error}
	SampledDays  prometheus.Histogram
}

// NewMetrics creates all service metrics and registers them with the default registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.Aggregations,
		m.SampledDays,
	)
	return m
}

// NewMetricsForTesting creates unregistered metrics so tests can build as many as they need.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skycast",
			Name:      "upstream_requests_total",
			Help:      "Upstream provider requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "skycast",
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		Aggregations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skycast",
			Name:      "aggregations_total",
			Help:      "Aggregate weather lookups by outcome.",
		}, []string{"outcome"}),
		SampledDays: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "skycast",
			Name:      "sampled_forecast_days",
			Help:      "Number of daily entries left after sampling the forecast series.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 6},
		}),
	}
}
