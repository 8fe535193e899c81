package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusHandler returns an HTTP handler serving the engine's metrics in
// Prometheus exposition format, for an embedding host to mount at /metrics.
func PrometheusHandler() http.Handler {
	return promhttp.Handler()
}
