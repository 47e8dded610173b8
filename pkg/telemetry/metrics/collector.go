// Package metrics provides prometheus instrumentation for Atlas.
//
// The Collector owns a private registry so tests can create as many
// collectors as they like without duplicate-registration panics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mercator-hq/atlas/pkg/config"
)

// Collector bundles all Atlas metric groups behind one registry.
type Collector struct {
	registry *prometheus.Registry

	// Proxy tracks edge proxy request metrics.
	Proxy *ProxyMetrics

	// Cache tracks gateway cache metrics.
	Cache *CacheMetrics
}

// NewCollector creates a Collector with all metric groups registered.
func NewCollector(cfg config.MetricsConfig) *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Collector{
		registry: registry,
		Proxy:    NewProxyMetrics(cfg, registry),
		Cache:    NewCacheMetrics(cfg, registry),
	}
}

// Handler returns the HTTP handler for the metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
