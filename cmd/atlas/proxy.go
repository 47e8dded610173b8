package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/atlas/pkg/cli"
	"mercator-hq/atlas/pkg/config"
	"mercator-hq/atlas/pkg/proxy"
	"mercator-hq/atlas/pkg/secrets"
	"mercator-hq/atlas/pkg/server"
	"mercator-hq/atlas/pkg/telemetry/logging"
	"mercator-hq/atlas/pkg/telemetry/metrics"
	"mercator-hq/atlas/pkg/upstream"
)

var proxyFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Start the Atlas edge proxy",
	Long: `Start the edge proxy that fronts the geospatial upstreams.

The proxy classifies each request by its query parameters, resolves the
target region from the bounding box, attaches the upstream API key
server-side, and rewrites style responses so clients only ever see proxy
URLs.

Examples:
  # Start with default config
  atlas proxy

  # Start with custom config
  atlas proxy --config /etc/atlas/config.yaml

  # Override listen address
  atlas proxy --listen 0.0.0.0:8080

  # Validate config without starting
  atlas proxy --dry-run`,
	RunE: runProxy,
}

func init() {
	rootCmd.AddCommand(proxyCmd)

	proxyCmd.Flags().StringVarP(&proxyFlags.listenAddress, "listen", "l", "", "override listen address")
	proxyCmd.Flags().StringVar(&proxyFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	proxyCmd.Flags().BoolVar(&proxyFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runProxy(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	if proxyFlags.listenAddress != "" {
		cfg.Proxy.ListenAddress = proxyFlags.listenAddress
	}
	if proxyFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = proxyFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(cfg.Telemetry.Logging, os.Stdout)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	logger.SetDefault()

	if proxyFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	provider, err := secrets.FromConfig(cfg.Credentials)
	if err != nil {
		return cli.NewConfigError("credentials", err.Error())
	}

	var collector *metrics.Collector
	var proxyMetrics *metrics.ProxyMetrics
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Telemetry.Metrics)
		proxyMetrics = collector.Proxy
	}

	table := upstream.NewTable(cfg.Upstreams)
	client := upstream.NewClient(cfg.Proxy.UpstreamTimeout, logger.Slog())
	handler := proxy.NewHandler(table, client, provider, cfg.Credentials.Name, logger, proxyMetrics)

	ctx := cli.SetupSignalHandler()

	// Hot-reload the upstream table when the config file changes.
	if _, statErr := os.Stat(cfgFile); statErr == nil {
		watcher, err := config.NewWatcher(cfgFile, logger.Slog())
		if err != nil {
			logger.Warn("config watcher unavailable", "error", err)
		} else {
			go func() {
				if err := watcher.Watch(ctx, func(updated *config.Config) {
					table.Reload(updated.Upstreams)
					logger.Info("upstream table reloaded")
				}); err != nil {
					logger.Warn("config watcher stopped", "error", err)
				}
			}()
			defer watcher.Stop()
		}
	}

	srv := server.New(
		server.ProxyRoutes(handler, cfg.Telemetry, collector, logger),
		server.Options{
			Name:            "proxy",
			ListenAddress:   cfg.Proxy.ListenAddress,
			ReadTimeout:     cfg.Proxy.ReadTimeout,
			WriteTimeout:    cfg.Proxy.WriteTimeout,
			IdleTimeout:     cfg.Proxy.IdleTimeout,
			ShutdownTimeout: cfg.Proxy.ShutdownTimeout,
			MaxHeaderBytes:  cfg.Proxy.MaxHeaderBytes,
			TLS:             cfg.Security.TLS,
		},
		logger,
	)

	fmt.Printf("✓ Edge proxy listening on %s\n", cfg.Proxy.ListenAddress)
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("proxy", err)
	}
	return nil
}
