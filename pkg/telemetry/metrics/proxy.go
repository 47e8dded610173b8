package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/atlas/pkg/config"
)

// ProxyMetrics tracks edge proxy request processing.
//
// Metrics:
//   - atlas_proxy_requests_total: requests by service type, region, status
//   - atlas_proxy_request_duration_seconds: end-to-end duration histogram
//   - atlas_proxy_upstream_errors_total: upstream failures by service type
type ProxyMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	upstreamErrors  *prometheus.CounterVec
}

// NewProxyMetrics creates and registers proxy metrics with the registry.
func NewProxyMetrics(cfg config.MetricsConfig, registry *prometheus.Registry) *ProxyMetrics {
	pm := &ProxyMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "proxy",
				Name:      "requests_total",
				Help:      "Total number of proxy requests processed",
			},
			[]string{"service", "region", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "proxy",
				Name:      "request_duration_seconds",
				Help:      "Duration of proxy requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"service"},
		),

		upstreamErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "proxy",
				Name:      "upstream_errors_total",
				Help:      "Total number of upstream request failures",
			},
			[]string{"service"},
		),
	}

	registry.MustRegister(pm.requestsTotal, pm.requestDuration, pm.upstreamErrors)
	return pm
}

// RecordRequest records a completed proxy request.
func (pm *ProxyMetrics) RecordRequest(service, region, status string, duration time.Duration) {
	pm.requestsTotal.WithLabelValues(service, region, status).Inc()
	pm.requestDuration.WithLabelValues(service).Observe(duration.Seconds())
}

// RecordUpstreamError records an upstream failure.
func (pm *ProxyMetrics) RecordUpstreamError(service string) {
	pm.upstreamErrors.WithLabelValues(service).Inc()
}
