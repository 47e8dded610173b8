package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns the first error found.
func Validate(cfg *Config) error {
	if err := validateListenAddress("proxy.listen_address", cfg.Proxy.ListenAddress); err != nil {
		return err
	}
	if err := validateListenAddress("gateway.listen_address", cfg.Gateway.ListenAddress); err != nil {
		return err
	}

	if err := validateBaseURL("upstreams.tiles.base_url", cfg.Upstreams.Tiles.BaseURL); err != nil {
		return err
	}
	if err := validateBaseURL("upstreams.features.base_url", cfg.Upstreams.Features.BaseURL); err != nil {
		return err
	}
	for region, ep := range cfg.Upstreams.LiDAR {
		field := fmt.Sprintf("upstreams.lidar.%s.base_url", region)
		if err := validateBaseURL(field, ep.BaseURL); err != nil {
			return err
		}
		if ep.Layer == "" {
			return fmt.Errorf("upstreams.lidar.%s.layer must not be empty", region)
		}
	}

	switch cfg.Credentials.Source {
	case "env", "file":
	default:
		return fmt.Errorf("credentials.source must be \"env\" or \"file\", got %q", cfg.Credentials.Source)
	}
	if cfg.Credentials.Source == "file" && cfg.Credentials.File == "" {
		return fmt.Errorf("credentials.file is required when credentials.source is \"file\"")
	}

	switch cfg.Cache.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("cache.backend must be \"memory\" or \"sqlite\", got %q", cfg.Cache.Backend)
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("telemetry.logging.level must be one of debug/info/warn/error, got %q", cfg.Telemetry.Logging.Level)
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("telemetry.logging.format must be \"json\" or \"text\", got %q", cfg.Telemetry.Logging.Format)
	}

	if cfg.Security.TLS.Enabled {
		if cfg.Security.TLS.CertFile == "" {
			return fmt.Errorf("security.tls.cert_file is required when TLS is enabled")
		}
		if cfg.Security.TLS.KeyFile == "" {
			return fmt.Errorf("security.tls.key_file is required when TLS is enabled")
		}
	}

	return nil
}

func validateListenAddress(field, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s must not be empty", field)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s is not a valid host:port address: %w", field, err)
	}
	return nil
}

func validateBaseURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s must not be empty", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", field, u.Scheme)
	}
	if strings.HasSuffix(u.Path, "/") {
		return fmt.Errorf("%s must not end with a trailing slash", field)
	}
	return nil
}
