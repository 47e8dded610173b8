package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/atlas/pkg/config"
)

// CacheMetrics tracks gateway cache performance.
//
// Metrics:
//   - atlas_cache_lookups_total: store lookups by strategy and outcome
//   - atlas_cache_stores_deleted_total: superseded stores removed
//   - atlas_cache_revalidations_total: background refreshes by outcome
type CacheMetrics struct {
	lookupsTotal       *prometheus.CounterVec
	storesDeleted      prometheus.Counter
	revalidationsTotal *prometheus.CounterVec
}

// NewCacheMetrics creates and registers cache metrics with the registry.
func NewCacheMetrics(cfg config.MetricsConfig, registry *prometheus.Registry) *CacheMetrics {
	cm := &CacheMetrics{
		lookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Total number of cache store lookups",
			},
			[]string{"strategy", "outcome"},
		),

		storesDeleted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "cache",
				Name:      "stores_deleted_total",
				Help:      "Total number of superseded cache stores deleted",
			},
		),

		revalidationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "cache",
				Name:      "revalidations_total",
				Help:      "Total number of background revalidation fetches",
			},
			[]string{"outcome"},
		),
	}

	registry.MustRegister(cm.lookupsTotal, cm.storesDeleted, cm.revalidationsTotal)
	return cm
}

// RecordLookup records a cache lookup. Outcome is "hit" or "miss".
func (cm *CacheMetrics) RecordLookup(strategy, outcome string) {
	cm.lookupsTotal.WithLabelValues(strategy, outcome).Inc()
}

// RecordStoreDeleted records removal of a superseded store.
func (cm *CacheMetrics) RecordStoreDeleted() {
	cm.storesDeleted.Inc()
}

// RecordRevalidation records a background refresh. Outcome is "success" or
// "failure".
func (cm *CacheMetrics) RecordRevalidation(outcome string) {
	cm.revalidationsTotal.WithLabelValues(outcome).Inc()
}
