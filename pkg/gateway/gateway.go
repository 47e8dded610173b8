// Package gateway assembles the offline gateway: the static origin, the
// versioned cache lifecycle, and the per-class caching strategies, behind
// one HTTP handler.
package gateway

import (
	"context"
	"fmt"
	"time"

	"mercator-hq/atlas/pkg/cache"
	"mercator-hq/atlas/pkg/config"
	"mercator-hq/atlas/pkg/static"
	"mercator-hq/atlas/pkg/telemetry/logging"
	"mercator-hq/atlas/pkg/telemetry/metrics"
)

// Gateway is the offline gateway handler with its lifecycle attached.
type Gateway struct {
	*cache.Dispatcher

	manager  *cache.Manager
	provider cache.Provider
	sweeper  *cache.Sweeper
	manifest []string
	origin   cache.Origin
	logger   *logging.Logger
}

// New assembles a gateway from configuration. Metrics may be nil.
func New(cfg config.GatewayConfig, cacheCfg config.CacheConfig, logger *logging.Logger, cm *metrics.CacheMetrics) (*Gateway, error) {
	provider, err := newProvider(cacheCfg)
	if err != nil {
		return nil, err
	}

	version := cacheCfg.Version
	if version == "" {
		version = config.Version
	}

	manager := cache.NewManager(provider, version, logger, cm)

	staticServer := static.NewServer(cfg.StaticDir, cfg.ShellDocument, logger)
	org := newOrigin(staticServer, cfg.TileHostSuffixes, 30*time.Second)

	dispatcher := cache.NewDispatcher(provider, manager, org, cache.DispatcherConfig{
		ShellPaths:       cfg.ShellManifest,
		AssetExtensions:  cfg.AssetExtensions,
		TileHostSuffixes: cfg.TileHostSuffixes,
	}, logger, cm)

	sweeper, err := cache.NewSweeper(cacheCfg.SweepSchedule, manager, logger)
	if err != nil {
		return nil, err
	}

	return &Gateway{
		Dispatcher: dispatcher,
		manager:    manager,
		provider:   provider,
		sweeper:    sweeper,
		manifest:   cfg.ShellManifest,
		origin:     org,
		logger:     logger,
	}, nil
}

func newProvider(cfg config.CacheConfig) (cache.Provider, error) {
	switch cfg.Backend {
	case "memory", "":
		return cache.NewMemoryProvider(), nil
	case "sqlite":
		return cache.NewSQLiteProvider(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Start runs the cache lifecycle: install the shell manifest, activate the
// current version, and begin scheduled sweeps. An unreachable origin does
// not prevent startup; install is retried on demand by the network-first
// strategy repopulating the shell store.
func (g *Gateway) Start(ctx context.Context) error {
	if err := g.manager.Install(ctx, g.manifest, g.origin); err != nil {
		g.logger.Warn("shell install incomplete", "error", err)
	}
	if err := g.manager.Activate(ctx); err != nil {
		return fmt.Errorf("activating cache version: %w", err)
	}

	g.sweeper.Start()
	g.logger.Info("gateway started",
		"cache_version", g.manager.Version(),
		"state", string(g.manager.State()),
	)
	return nil
}

// Stop halts sweeps, waits for in-flight cache writes, and closes the
// store backend.
func (g *Gateway) Stop() error {
	g.sweeper.Stop()
	g.Flush()
	return g.provider.Close()
}

// Manager exposes the lifecycle manager for health reporting.
func (g *Gateway) Manager() *cache.Manager {
	return g.manager
}
