package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics tracks metrics related to the upstream GraphQL service.
//
// Metrics:
//   - restql_upstream_duration_seconds: Upstream call latency by route
//   - restql_upstream_errors_total: Upstream failures by route and kind
//   - restql_upstream_up: Result of the last reachability probe (1=up, 0=down)
type UpstreamMetrics struct {
	latency *prometheus.HistogramVec
	errors  *prometheus.CounterVec
	up      prometheus.Gauge
}

// NewUpstreamMetrics creates and registers upstream metrics with the provided registry.
func NewUpstreamMetrics(namespace string, registry *prometheus.Registry) *UpstreamMetrics {
	um := &UpstreamMetrics{
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_duration_seconds",
				Help:      "Upstream GraphQL call latency in seconds",
				Buckets:   DefaultDurationBuckets,
			},
			[]string{"route"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_errors_total",
				Help:      "Total number of failed upstream calls by kind",
			},
			[]string{"route", "kind"},
		),

		up: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "upstream_up",
				Help:      "Upstream reachability from the last readiness probe (1=up, 0=down)",
			},
		),
	}

	registry.MustRegister(um.latency, um.errors, um.up)

	return um
}

// RecordLatency observes the duration of an upstream call.
func (um *UpstreamMetrics) RecordLatency(route string, latency time.Duration) {
	um.latency.WithLabelValues(route).Observe(latency.Seconds())
}

// RecordError increments the upstream error counter.
func (um *UpstreamMetrics) RecordError(route, kind string) {
	um.errors.WithLabelValues(route, kind).Inc()
}

// UpdateHealth sets the reachability gauge.
func (um *UpstreamMetrics) UpdateHealth(healthy bool) {
	if healthy {
		um.up.Set(1)
		return
	}
	um.up.Set(0)
}
