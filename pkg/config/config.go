package config

import "time"

// Config is the root configuration structure for Atlas.
// It covers both deployable subsystems: the edge proxy that fronts the
// geospatial upstreams, and the offline gateway that caches the map
// application's own traffic.
type Config struct {
	// Proxy contains HTTP server configuration for the edge proxy.
	Proxy ProxyConfig `yaml:"proxy"`

	// Gateway contains configuration for the offline caching gateway.
	Gateway GatewayConfig `yaml:"gateway"`

	// Upstreams contains the upstream endpoints for each service type and
	// the per-region LiDAR WMS table.
	Upstreams UpstreamsConfig `yaml:"upstreams"`

	// Credentials configures where the upstream API key is loaded from.
	// The key itself never appears in configuration files.
	Credentials CredentialsConfig `yaml:"credentials"`

	// Cache contains configuration for the versioned cache stores.
	Cache CacheConfig `yaml:"cache"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Security contains TLS settings for both servers.
	Security SecurityConfig `yaml:"security"`
}

// ProxyConfig contains configuration for the edge proxy HTTP server.
type ProxyConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out response writes.
	// Default: 60s (tile payloads can be large on slow links)
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// UpstreamTimeout is the per-request timeout for upstream calls.
	// Default: 30s
	UpstreamTimeout time.Duration `yaml:"upstream_timeout"`
}

// GatewayConfig contains configuration for the offline caching gateway.
type GatewayConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8081"
	ListenAddress string `yaml:"listen_address"`

	// StaticDir is the directory the static origin serves the application
	// shell and assets from.
	// Default: "./dist"
	StaticDir string `yaml:"static_dir"`

	// ShellDocument is the navigation shell document, relative to StaticDir.
	// Navigation requests that miss the filesystem fall back to it.
	// Default: "index.html"
	ShellDocument string `yaml:"shell_document"`

	// ShellManifest lists the request paths precached into the app store on
	// install. Default: ["/", "/manifest.webmanifest"]
	ShellManifest []string `yaml:"shell_manifest"`

	// TileHostSuffixes lists host suffixes identifying the remote tile
	// origin; matching requests get the stale-while-revalidate strategy.
	// Default: ["api.os.uk"]
	TileHostSuffixes []string `yaml:"tile_host_suffixes"`

	// AssetExtensions is the extension allow-list for the cache-first
	// static asset strategy.
	// Default: [".css", ".js", ".mjs", ".png", ".svg", ".ico", ".json",
	// ".woff2", ".webp"]
	AssetExtensions []string `yaml:"asset_extensions"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// UpstreamsConfig contains the upstream endpoints for each service type.
type UpstreamsConfig struct {
	// Tiles is the vector tile API base URL.
	// Default: "https://api.os.uk/maps/vector/ngd/ota/v1"
	Tiles EndpointConfig `yaml:"tiles"`

	// Features is the features API base URL.
	// Default: "https://api.os.uk/features/ngd/ofa/v2"
	Features EndpointConfig `yaml:"features"`

	// LiDAR maps region names to WMS endpoints. All four UK regions are
	// present in the defaults and currently point at the same physical
	// upstream; the per-region structure is deliberate so a divergence only
	// touches configuration.
	LiDAR map[string]WMSEndpointConfig `yaml:"lidar"`
}

// EndpointConfig describes a plain HTTP upstream endpoint.
type EndpointConfig struct {
	// BaseURL is the endpoint base URL, without trailing slash.
	BaseURL string `yaml:"base_url"`
}

// WMSEndpointConfig describes a WMS upstream endpoint with its layer.
type WMSEndpointConfig struct {
	// BaseURL is the WMS endpoint base URL.
	BaseURL string `yaml:"base_url"`

	// Layer is the WMS LAYERS value the proxy forces for this region,
	// regardless of what the caller requested.
	Layer string `yaml:"layer"`
}

// CredentialsConfig configures the upstream API key source.
type CredentialsConfig struct {
	// Source selects the secret provider: "env" or "file".
	// Default: "env"
	Source string `yaml:"source"`

	// Name is the secret name, resolved by the provider.
	// Default: "os-api-key" (env provider reads ATLAS_SECRET_OS_API_KEY)
	Name string `yaml:"name"`

	// EnvPrefix is the environment variable prefix for the env provider.
	// Default: "ATLAS_SECRET_"
	EnvPrefix string `yaml:"env_prefix"`

	// File is the secrets file path for the file provider.
	File string `yaml:"file"`
}

// CacheConfig contains configuration for the versioned cache stores.
type CacheConfig struct {
	// Version is the cache generation tag. The two live store names are
	// derived from it: "app-<version>" and "runtime-<version>".
	// Default: the build version string.
	Version string `yaml:"version"`

	// Backend selects the store provider: "memory" or "sqlite".
	// Default: "memory"
	Backend string `yaml:"backend"`

	// SQLitePath is the database file path for the sqlite backend.
	// Default: "data/atlas-cache.db"
	SQLitePath string `yaml:"sqlite_path"`

	// SweepSchedule is a cron expression for the periodic superseded-store
	// sweep. The sweep applies the same version-based criterion as
	// activation; there is no other eviction policy. Empty disables it.
	// Default: "0 3 * * *"
	SweepSchedule string `yaml:"sweep_schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format ("json" or "text").
	// Default: "json"
	Format string `yaml:"format"`

	// RedactSecrets enables redaction of API keys and other sensitive
	// values in log fields.
	// Default: true
	RedactSecrets bool `yaml:"redact_secrets"`
}

// MetricsConfig contains prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the metrics endpoint path.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the prometheus metric namespace.
	// Default: "atlas"
	Namespace string `yaml:"namespace"`
}

// SecurityConfig contains security-related configuration.
type SecurityConfig struct {
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig contains TLS settings.
type TLSConfig struct {
	// Enabled controls whether the servers terminate TLS.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// CertFile is the PEM certificate file path.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the PEM private key file path.
	KeyFile string `yaml:"key_file"`
}
