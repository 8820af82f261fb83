package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns an HTTP handler for the Prometheus metrics endpoint.
//
// It exposes every metric registered with the collector's registry and is
// mounted by the server at the configured metrics path (default "/metrics").
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(
		c.registry,
		promhttp.HandlerOpts{
			// Enable OpenMetrics encoding (preferred over Prometheus text format)
			EnableOpenMetrics: true,

			// Keep serving the metrics that could be gathered
			ErrorHandling: promhttp.ContinueOnError,
		},
	)
}
