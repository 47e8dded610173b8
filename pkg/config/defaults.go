package config

import "time"

// Version is the Atlas build version. Overridden at build time with
// -ldflags "-X mercator-hq/atlas/pkg/config.Version=...".
var Version = "dev"

// Default upstream endpoints. Every region currently resolves to the same
// physical LiDAR upstream; the table stays per-region on purpose.
const (
	DefaultTilesBaseURL    = "https://api.os.uk/maps/vector/ngd/ota/v1"
	DefaultFeaturesBaseURL = "https://api.os.uk/features/ngd/ofa/v2"
	DefaultLiDARBaseURL    = "https://environment.data.gov.uk/spatialdata/lidar-composite-dsm-1m/wms"
	DefaultLiDARLayer      = "lidar_composite_dsm_1m"
)

// ApplyDefaults fills in default values for any unset configuration fields.
func ApplyDefaults(cfg *Config) {
	// Proxy defaults
	if cfg.Proxy.ListenAddress == "" {
		cfg.Proxy.ListenAddress = "127.0.0.1:8080"
	}
	if cfg.Proxy.ReadTimeout == 0 {
		cfg.Proxy.ReadTimeout = 30 * time.Second
	}
	if cfg.Proxy.WriteTimeout == 0 {
		cfg.Proxy.WriteTimeout = 60 * time.Second
	}
	if cfg.Proxy.IdleTimeout == 0 {
		cfg.Proxy.IdleTimeout = 120 * time.Second
	}
	if cfg.Proxy.ShutdownTimeout == 0 {
		cfg.Proxy.ShutdownTimeout = 30 * time.Second
	}
	if cfg.Proxy.MaxHeaderBytes == 0 {
		cfg.Proxy.MaxHeaderBytes = 1 << 20
	}
	if cfg.Proxy.UpstreamTimeout == 0 {
		cfg.Proxy.UpstreamTimeout = 30 * time.Second
	}

	// Gateway defaults
	if cfg.Gateway.ListenAddress == "" {
		cfg.Gateway.ListenAddress = "127.0.0.1:8081"
	}
	if cfg.Gateway.StaticDir == "" {
		cfg.Gateway.StaticDir = "./dist"
	}
	if cfg.Gateway.ShellDocument == "" {
		cfg.Gateway.ShellDocument = "index.html"
	}
	if len(cfg.Gateway.ShellManifest) == 0 {
		cfg.Gateway.ShellManifest = []string{"/", "/manifest.webmanifest"}
	}
	if len(cfg.Gateway.TileHostSuffixes) == 0 {
		cfg.Gateway.TileHostSuffixes = []string{"api.os.uk"}
	}
	if len(cfg.Gateway.AssetExtensions) == 0 {
		cfg.Gateway.AssetExtensions = []string{
			".css", ".js", ".mjs", ".png", ".svg", ".ico", ".json", ".woff2", ".webp",
		}
	}
	if cfg.Gateway.ShutdownTimeout == 0 {
		cfg.Gateway.ShutdownTimeout = 30 * time.Second
	}

	// Upstream defaults
	if cfg.Upstreams.Tiles.BaseURL == "" {
		cfg.Upstreams.Tiles.BaseURL = DefaultTilesBaseURL
	}
	if cfg.Upstreams.Features.BaseURL == "" {
		cfg.Upstreams.Features.BaseURL = DefaultFeaturesBaseURL
	}
	if cfg.Upstreams.LiDAR == nil {
		cfg.Upstreams.LiDAR = make(map[string]WMSEndpointConfig)
	}
	for _, region := range []string{"england", "scotland", "wales", "northern_ireland"} {
		if _, ok := cfg.Upstreams.LiDAR[region]; !ok {
			cfg.Upstreams.LiDAR[region] = WMSEndpointConfig{
				BaseURL: DefaultLiDARBaseURL,
				Layer:   DefaultLiDARLayer,
			}
		}
	}

	// Credential defaults
	if cfg.Credentials.Source == "" {
		cfg.Credentials.Source = "env"
	}
	if cfg.Credentials.Name == "" {
		cfg.Credentials.Name = "os-api-key"
	}
	if cfg.Credentials.EnvPrefix == "" {
		cfg.Credentials.EnvPrefix = "ATLAS_SECRET_"
	}

	// Cache defaults
	if cfg.Cache.Version == "" {
		cfg.Cache.Version = Version
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.SQLitePath == "" {
		cfg.Cache.SQLitePath = "data/atlas-cache.db"
	}
	if cfg.Cache.SweepSchedule == "" {
		cfg.Cache.SweepSchedule = "0 3 * * *"
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "json"
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = "/metrics"
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = "atlas"
	}
}

// NewDefault returns a Config populated entirely with defaults.
func NewDefault() *Config {
	cfg := &Config{}
	cfg.Telemetry.Logging.RedactSecrets = true
	cfg.Telemetry.Metrics.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}
