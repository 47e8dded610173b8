package server

import (
	"encoding/json"
	"net/http"

	"mercator-hq/atlas/pkg/config"
	"mercator-hq/atlas/pkg/proxy/middleware"
	"mercator-hq/atlas/pkg/telemetry/logging"
	"mercator-hq/atlas/pkg/telemetry/metrics"
)

// ProxyRoutes assembles the edge proxy handler tree: the proxy endpoint,
// health and readiness, and the metrics endpoint, wrapped in the shared
// middleware chain.
func ProxyRoutes(proxyHandler http.Handler, tcfg config.TelemetryConfig, collector *metrics.Collector, logger *logging.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/proxy", proxyHandler)
	mux.Handle("/health", healthHandler())
	mux.Handle("/ready", readyHandler(func() error { return nil }))

	if tcfg.Metrics.Enabled && collector != nil {
		mux.Handle(tcfg.Metrics.Path, collector.Handler())
	}

	return middleware.Chain(mux,
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logging(logger),
		middleware.CORS(),
	)
}

// GatewayRoutes assembles the gateway handler tree. Every path not claimed
// by an operational endpoint goes to the strategy dispatcher.
func GatewayRoutes(gatewayHandler http.Handler, ready func() error, tcfg config.TelemetryConfig, collector *metrics.Collector, logger *logging.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/health", healthHandler())
	mux.Handle("/ready", readyHandler(ready))

	if tcfg.Metrics.Enabled && collector != nil {
		mux.Handle(tcfg.Metrics.Path, collector.Handler())
	}

	mux.Handle("/", gatewayHandler)

	return middleware.Chain(mux,
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logging(logger),
	)
}

// healthHandler reports process liveness.
func healthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
}

// readyHandler reports readiness via the supplied check.
func readyHandler(check func() error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := check(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"status": "not ready",
				"reason": err.Error(),
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})
}
