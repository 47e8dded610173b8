package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses raw YAML configuration bytes, applies defaults, and
// validates the result.
func ParseConfig(data []byte) (*Config, error) {
	// Booleans that default to true must be set before unmarshalling so an
	// explicit false in the file is honored.
	cfg := Config{}
	cfg.Telemetry.Logging.RedactSecrets = true
	cfg.Telemetry.Metrics.Enabled = true

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Environment variables follow the
// naming convention ATLAS_SECTION_FIELD (e.g. ATLAS_PROXY_LISTEN_ADDRESS)
// and always take precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file (applies defaults)
//  2. Apply environment variable overrides
//  3. Re-validate the final configuration
//
// A missing file is not an error: defaults plus environment variables form
// a complete configuration, which keeps container deployments file-free.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	var err error

	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		cfg = NewDefault()
	} else {
		cfg, err = LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Variables use the format ATLAS_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Proxy overrides
	if val := os.Getenv("ATLAS_PROXY_LISTEN_ADDRESS"); val != "" {
		cfg.Proxy.ListenAddress = val
	}
	if val := os.Getenv("ATLAS_PROXY_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Proxy.ReadTimeout = d
		}
	}
	if val := os.Getenv("ATLAS_PROXY_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Proxy.WriteTimeout = d
		}
	}
	if val := os.Getenv("ATLAS_PROXY_UPSTREAM_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Proxy.UpstreamTimeout = d
		}
	}

	// Gateway overrides
	if val := os.Getenv("ATLAS_GATEWAY_LISTEN_ADDRESS"); val != "" {
		cfg.Gateway.ListenAddress = val
	}
	if val := os.Getenv("ATLAS_GATEWAY_STATIC_DIR"); val != "" {
		cfg.Gateway.StaticDir = val
	}
	if val := os.Getenv("ATLAS_GATEWAY_TILE_HOST_SUFFIXES"); val != "" {
		cfg.Gateway.TileHostSuffixes = splitAndTrim(val)
	}

	// Upstream overrides
	if val := os.Getenv("ATLAS_UPSTREAMS_TILES_BASE_URL"); val != "" {
		cfg.Upstreams.Tiles.BaseURL = val
	}
	if val := os.Getenv("ATLAS_UPSTREAMS_FEATURES_BASE_URL"); val != "" {
		cfg.Upstreams.Features.BaseURL = val
	}

	// Credential overrides
	if val := os.Getenv("ATLAS_CREDENTIALS_SOURCE"); val != "" {
		cfg.Credentials.Source = val
	}
	if val := os.Getenv("ATLAS_CREDENTIALS_NAME"); val != "" {
		cfg.Credentials.Name = val
	}
	if val := os.Getenv("ATLAS_CREDENTIALS_FILE"); val != "" {
		cfg.Credentials.File = val
	}

	// Cache overrides
	if val := os.Getenv("ATLAS_CACHE_VERSION"); val != "" {
		cfg.Cache.Version = val
	}
	if val := os.Getenv("ATLAS_CACHE_BACKEND"); val != "" {
		cfg.Cache.Backend = val
	}
	if val := os.Getenv("ATLAS_CACHE_SQLITE_PATH"); val != "" {
		cfg.Cache.SQLitePath = val
	}
	if val := os.Getenv("ATLAS_CACHE_SWEEP_SCHEDULE"); val != "" {
		cfg.Cache.SweepSchedule = val
	}

	// Telemetry overrides
	if val := os.Getenv("ATLAS_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("ATLAS_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("ATLAS_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}

	// Security overrides (env-driven TLS bootstrap)
	if val := os.Getenv("ATLAS_SECURITY_TLS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Security.TLS.Enabled = b
		}
	}
	if val := os.Getenv("ATLAS_SECURITY_TLS_CERT_FILE"); val != "" {
		cfg.Security.TLS.CertFile = val
	}
	if val := os.Getenv("ATLAS_SECURITY_TLS_KEY_FILE"); val != "" {
		cfg.Security.TLS.KeyFile = val
	}
}

// splitAndTrim splits a comma-separated list and trims whitespace.
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
