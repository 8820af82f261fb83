package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks metrics related to inbound gateway requests.
//
// Metrics:
//   - restql_requests_total: Total request count by route, method, status
//   - restql_request_duration_seconds: Request duration histogram by route
//   - restql_parameter_errors_total: Requests rejected during parameter resolution
//   - restql_partial_responses_total: Responses answered with 206
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	parameterErrors *prometheus.CounterVec
	partial         *prometheus.CounterVec
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(namespace string, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of gateway requests processed",
			},
			[]string{"route", "method", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Duration of gateway requests in seconds",
				Buckets:   DefaultDurationBuckets,
			},
			[]string{"route"},
		),

		parameterErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "parameter_errors_total",
				Help:      "Total number of requests rejected during parameter resolution",
			},
			[]string{"route", "kind"},
		),

		partial: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "partial_responses_total",
				Help:      "Total number of responses carrying both data and errors",
			},
			[]string{"route"},
		),
	}

	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.parameterErrors,
		rm.partial,
	)

	return rm
}

// RecordRequest increments the request counter and observes the duration.
func (rm *RequestMetrics) RecordRequest(route, method, status string, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(route, method, status).Inc()
	rm.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordParameterError increments the parameter error counter.
func (rm *RequestMetrics) RecordParameterError(route, kind string) {
	rm.parameterErrors.WithLabelValues(route, kind).Inc()
}

// RecordPartial increments the partial response counter.
func (rm *RequestMetrics) RecordPartial(route string) {
	rm.partial.WithLabelValues(route).Inc()
}
