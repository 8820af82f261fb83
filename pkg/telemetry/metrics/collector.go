package metrics

import (
	"strconv"
	"time"

	"mercator-hq/restql/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultDurationBuckets covers a gateway hop: sub-millisecond parameter
// failures up to slow upstream resolvers.
var DefaultDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// Collector is the main orchestrator for all Prometheus metrics in restql.
// It manages metric registration and provides a unified interface for
// recording gateway and upstream metrics.
//
// A nil *Collector and a collector built from a disabled configuration are
// both valid and record nothing.
type Collector struct {
	config   config.MetricsConfig
	registry *prometheus.Registry

	// Inbound request metrics
	requestMetrics *RequestMetrics

	// Upstream GraphQL metrics
	upstreamMetrics *UpstreamMetrics
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "restql",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		config:   *cfg,
		registry: registry,
	}
	if c.config.Namespace == "" {
		c.config.Namespace = config.DefaultMetricsNS
	}

	c.requestMetrics = NewRequestMetrics(c.config.Namespace, registry)
	c.upstreamMetrics = NewUpstreamMetrics(c.config.Namespace, registry)

	return c
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordRequest records metrics for a completed gateway request.
//
// Parameters:
//   - route: Route pattern (e.g., "GET /api/v1/users/{id}")
//   - method: Inbound HTTP method
//   - status: Outward HTTP status code
//   - duration: Total request duration
func (c *Collector) RecordRequest(route, method string, status int, duration time.Duration) {
	if !c.enabled() {
		return
	}

	c.requestMetrics.RecordRequest(route, method, strconv.Itoa(status), duration)
}

// RecordParameterError records a request rejected before the upstream call.
//
// Parameters:
//   - route: Route pattern
//   - kind: "missing", "coercion" or "body"
func (c *Collector) RecordParameterError(route, kind string) {
	if !c.enabled() {
		return
	}

	c.requestMetrics.RecordParameterError(route, kind)
}

// RecordPartialResponse records a response downgraded to 206 Partial Content.
func (c *Collector) RecordPartialResponse(route string) {
	if !c.enabled() {
		return
	}

	c.requestMetrics.RecordPartial(route)
}

// RecordUpstreamLatency records the duration of one upstream GraphQL call.
func (c *Collector) RecordUpstreamLatency(route string, latency time.Duration) {
	if !c.enabled() {
		return
	}

	c.upstreamMetrics.RecordLatency(route, latency)
}

// RecordUpstreamError records a failed upstream call.
//
// Parameters:
//   - route: Route pattern
//   - kind: "transport" or "decode"
func (c *Collector) RecordUpstreamError(route, kind string) {
	if !c.enabled() {
		return
	}

	c.upstreamMetrics.RecordError(route, kind)
}

// UpdateUpstreamHealth records the outcome of the last upstream reachability probe.
//
// The health metric is a gauge where 1=reachable, 0=unreachable.
func (c *Collector) UpdateUpstreamHealth(healthy bool) {
	if !c.enabled() {
		return
	}

	c.upstreamMetrics.UpdateHealth(healthy)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
