package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("{}"))
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}

	if cfg.Proxy.ListenAddress != "127.0.0.1:8080" {
		t.Errorf("Proxy.ListenAddress = %q, want default", cfg.Proxy.ListenAddress)
	}
	if cfg.Proxy.UpstreamTimeout != 30*time.Second {
		t.Errorf("Proxy.UpstreamTimeout = %v, want 30s", cfg.Proxy.UpstreamTimeout)
	}
	if cfg.Upstreams.Tiles.BaseURL != DefaultTilesBaseURL {
		t.Errorf("Upstreams.Tiles.BaseURL = %q, want default", cfg.Upstreams.Tiles.BaseURL)
	}
	if len(cfg.Upstreams.LiDAR) != 4 {
		t.Errorf("len(Upstreams.LiDAR) = %d, want 4 regions", len(cfg.Upstreams.LiDAR))
	}
	for _, region := range []string{"england", "scotland", "wales", "northern_ireland"} {
		ep, ok := cfg.Upstreams.LiDAR[region]
		if !ok {
			t.Errorf("missing default LiDAR entry for %s", region)
			continue
		}
		if ep.Layer == "" {
			t.Errorf("LiDAR entry for %s has empty layer", region)
		}
	}
	if !cfg.Telemetry.Logging.RedactSecrets {
		t.Error("Telemetry.Logging.RedactSecrets should default to true")
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("Telemetry.Metrics.Enabled should default to true")
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("Cache.Backend = %q, want memory", cfg.Cache.Backend)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	yaml := `
proxy:
  listen_address: "0.0.0.0:9090"
  upstream_timeout: 5s
upstreams:
  tiles:
    base_url: "https://tiles.example.com/v1"
  lidar:
    scotland:
      base_url: "https://wms.example.scot"
      layer: "dsm_scotland"
telemetry:
  logging:
    redact_secrets: false
cache:
  backend: sqlite
  version: v2
`
	cfg, err := ParseConfig([]byte(yaml))
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}

	if cfg.Proxy.ListenAddress != "0.0.0.0:9090" {
		t.Errorf("Proxy.ListenAddress = %q", cfg.Proxy.ListenAddress)
	}
	if cfg.Proxy.UpstreamTimeout != 5*time.Second {
		t.Errorf("Proxy.UpstreamTimeout = %v, want 5s", cfg.Proxy.UpstreamTimeout)
	}
	if cfg.Upstreams.Tiles.BaseURL != "https://tiles.example.com/v1" {
		t.Errorf("Upstreams.Tiles.BaseURL = %q", cfg.Upstreams.Tiles.BaseURL)
	}
	if got := cfg.Upstreams.LiDAR["scotland"].Layer; got != "dsm_scotland" {
		t.Errorf("scotland layer = %q, want dsm_scotland", got)
	}
	// Other regions still get defaults.
	if got := cfg.Upstreams.LiDAR["wales"].BaseURL; got != DefaultLiDARBaseURL {
		t.Errorf("wales base URL = %q, want default", got)
	}
	if cfg.Telemetry.Logging.RedactSecrets {
		t.Error("explicit redact_secrets: false should be honored")
	}
	if cfg.Cache.Backend != "sqlite" || cfg.Cache.Version != "v2" {
		t.Errorf("cache = %+v, want sqlite/v2", cfg.Cache)
	}
}

func TestParseConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "bad listen address",
			yaml:    "proxy:\n  listen_address: \"not-an-address\"\n",
			wantErr: "listen_address",
		},
		{
			name:    "bad upstream scheme",
			yaml:    "upstreams:\n  tiles:\n    base_url: \"ftp://example.com\"\n",
			wantErr: "http or https",
		},
		{
			name:    "trailing slash",
			yaml:    "upstreams:\n  features:\n    base_url: \"https://example.com/api/\"\n",
			wantErr: "trailing slash",
		},
		{
			name:    "bad cache backend",
			yaml:    "cache:\n  backend: redis\n",
			wantErr: "cache.backend",
		},
		{
			name:    "bad credentials source",
			yaml:    "credentials:\n  source: vault\n",
			wantErr: "credentials.source",
		},
		{
			name:    "file source without path",
			yaml:    "credentials:\n  source: file\n",
			wantErr: "credentials.file",
		},
		{
			name:    "tls without cert",
			yaml:    "security:\n  tls:\n    enabled: true\n",
			wantErr: "cert_file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("proxy:\n  listen_address: \"127.0.0.1:7000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("ATLAS_PROXY_LISTEN_ADDRESS", "127.0.0.1:7001")
	t.Setenv("ATLAS_CACHE_VERSION", "v9")
	t.Setenv("ATLAS_GATEWAY_TILE_HOST_SUFFIXES", "tiles.example.com, api.os.uk")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Proxy.ListenAddress != "127.0.0.1:7001" {
		t.Errorf("env override lost: ListenAddress = %q", cfg.Proxy.ListenAddress)
	}
	if cfg.Cache.Version != "v9" {
		t.Errorf("Cache.Version = %q, want v9", cfg.Cache.Version)
	}
	want := []string{"tiles.example.com", "api.os.uk"}
	if len(cfg.Gateway.TileHostSuffixes) != 2 || cfg.Gateway.TileHostSuffixes[0] != want[0] || cfg.Gateway.TileHostSuffixes[1] != want[1] {
		t.Errorf("TileHostSuffixes = %v, want %v", cfg.Gateway.TileHostSuffixes, want)
	}
}

func TestLoadConfigWithEnvOverridesMissingFile(t *testing.T) {
	cfg, err := LoadConfigWithEnvOverrides(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should fall back to defaults, got error: %v", err)
	}
	if cfg.Proxy.ListenAddress == "" {
		t.Error("defaults not applied for missing file")
	}
}
