//go:build integration

package test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mercator-hq/atlas/pkg/config"
	"mercator-hq/atlas/pkg/proxy"
	"mercator-hq/atlas/pkg/secrets"
	"mercator-hq/atlas/pkg/server"
	"mercator-hq/atlas/pkg/telemetry/logging"
	"mercator-hq/atlas/pkg/upstream"
)

// TestProxyIntegration exercises the full edge proxy stack: middleware
// chain, classification, credential injection, and response rewriting.
func TestProxyIntegration(t *testing.T) {
	t.Setenv("ATLAS_SECRET_OS_API_KEY", "INTEGRATION-KEY")

	style := `{"version":8,"center":[0,0],"zoom":5,"sources":{"ngd-base":{"type":"vector","url":"https://api.os.uk/tilejson?key=UPSTREAM"}}}`
	tilesUpstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "INTEGRATION-KEY" {
			http.Error(w, "missing key", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, style)
	}))
	defer tilesUpstream.Close()

	cfg := config.NewDefault()
	cfg.Upstreams.Tiles.BaseURL = tilesUpstream.URL

	logger, err := logging.New(cfg.Telemetry.Logging, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	table := upstream.NewTable(cfg.Upstreams)
	client := upstream.NewClient(5*time.Second, logger.Slog())
	provider := secrets.NewEnvProvider(cfg.Credentials.EnvPrefix)
	handler := proxy.NewHandler(table, client, provider, cfg.Credentials.Name, logger, nil)

	routes := server.ProxyRoutes(handler, cfg.Telemetry, nil, logger)
	front := httptest.NewServer(routes)
	defer front.Close()

	t.Run("style request end to end", func(t *testing.T) {
		resp, err := http.Get(front.URL + "/proxy?service=tiles")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Access-Control-Allow-Origin = %q", got)
		}
		if got := resp.Header.Get("X-Request-ID"); got == "" {
			t.Error("no request id on response")
		}

		body, _ := io.ReadAll(resp.Body)
		if strings.Contains(string(body), "key=") {
			t.Errorf("credential leaked: %s", body)
		}
		if !strings.Contains(string(body), front.URL+"/proxy?service=tiles&collection=ngd-base") {
			t.Errorf("tiles not repointed at proxy: %s", body)
		}
	})

	t.Run("preflight", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodOptions, front.URL+"/proxy", nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusNoContent {
			t.Errorf("status = %d, want 204", resp.StatusCode)
		}
		if got := resp.Header.Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
			t.Errorf("Access-Control-Allow-Methods = %q", got)
		}
	})

	t.Run("unroutable request", func(t *testing.T) {
		resp, err := http.Get(front.URL + "/proxy?foo=bar")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", resp.StatusCode)
		}

		var body proxy.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decoding error body: %v", err)
		}
		if len(body.ValidTypes) != 3 {
			t.Errorf("validTypes = %v", body.ValidTypes)
		}
	})

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(front.URL + "/health")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d", resp.StatusCode)
		}
	})
}
