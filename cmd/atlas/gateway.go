package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/atlas/pkg/cache"
	"mercator-hq/atlas/pkg/cli"
	"mercator-hq/atlas/pkg/config"
	"mercator-hq/atlas/pkg/gateway"
	"mercator-hq/atlas/pkg/server"
	"mercator-hq/atlas/pkg/telemetry/logging"
	"mercator-hq/atlas/pkg/telemetry/metrics"
)

var gatewayFlags struct {
	listenAddress string
	staticDir     string
	logLevel      string
	dryRun        bool
}

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Start the Atlas offline gateway",
	Long: `Start the offline gateway that fronts the map application origin.

On startup the gateway installs the shell manifest into the current
versioned cache store and prunes stores from superseded versions. Requests
are then served per resource class: navigation network-first, static
assets cache-first, tile origin stale-while-revalidate.

Examples:
  # Start with default config
  atlas gateway

  # Serve a specific build of the application
  atlas gateway --static-dir ./dist

  # Override listen address
  atlas gateway --listen 0.0.0.0:8081`,
	RunE: runGateway,
}

func init() {
	rootCmd.AddCommand(gatewayCmd)

	gatewayCmd.Flags().StringVarP(&gatewayFlags.listenAddress, "listen", "l", "", "override listen address")
	gatewayCmd.Flags().StringVar(&gatewayFlags.staticDir, "static-dir", "", "override static files directory")
	gatewayCmd.Flags().StringVar(&gatewayFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	gatewayCmd.Flags().BoolVar(&gatewayFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runGateway(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	if gatewayFlags.listenAddress != "" {
		cfg.Gateway.ListenAddress = gatewayFlags.listenAddress
	}
	if gatewayFlags.staticDir != "" {
		cfg.Gateway.StaticDir = gatewayFlags.staticDir
	}
	if gatewayFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = gatewayFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(cfg.Telemetry.Logging, os.Stdout)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	logger.SetDefault()

	if gatewayFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	var collector *metrics.Collector
	var cacheMetrics *metrics.CacheMetrics
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Telemetry.Metrics)
		cacheMetrics = collector.Cache
	}

	gw, err := gateway.New(cfg.Gateway, cfg.Cache, logger, cacheMetrics)
	if err != nil {
		return cli.NewCommandError("gateway", err)
	}

	ctx := cli.SetupSignalHandler()
	if err := gw.Start(ctx); err != nil {
		return cli.NewCommandError("gateway", err)
	}

	ready := func() error {
		if gw.Manager().State() != cache.StateActive {
			return errors.New("cache version not active")
		}
		return nil
	}

	srv := server.New(
		server.GatewayRoutes(gw, ready, cfg.Telemetry, collector, logger),
		server.Options{
			Name:            "gateway",
			ListenAddress:   cfg.Gateway.ListenAddress,
			ShutdownTimeout: cfg.Gateway.ShutdownTimeout,
			TLS:             cfg.Security.TLS,
			OnStop:          gw.Stop,
		},
		logger,
	)

	fmt.Printf("✓ Offline gateway listening on %s (cache version %s)\n",
		cfg.Gateway.ListenAddress, gw.Manager().Version())
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("gateway", err)
	}
	return nil
}
