//go:build integration

package test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"mercator-hq/atlas/pkg/cache"
	"mercator-hq/atlas/pkg/config"
	"mercator-hq/atlas/pkg/gateway"
	"mercator-hq/atlas/pkg/server"
	"mercator-hq/atlas/pkg/telemetry/logging"
)

// TestGatewayIntegration exercises the full gateway stack on the sqlite
// backend: install, activation pruning, and the three strategies.
func TestGatewayIntegration(t *testing.T) {
	staticDir := t.TempDir()
	for name, content := range map[string]string{
		"index.html":           "<html>shell</html>",
		"manifest.webmanifest": `{"name":"atlas"}`,
		"app.js":               "console.log(1)",
	} {
		if err := os.WriteFile(filepath.Join(staticDir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	tile := []byte{0x1a, 0x02, 0x03}
	tileUpstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.mapbox-vector-tile")
		_, _ = w.Write(tile)
	}))
	defer tileUpstream.Close()
	tileHost, _ := url.Parse(tileUpstream.URL)

	dbPath := filepath.Join(t.TempDir(), "cache.db")

	// Seed a store from an older version; activation must remove it.
	seed, err := cache.NewSQLiteProvider(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := seed.Put(context.Background(), "app-v0", "k", cache.NewEntry(200, http.Header{}, []byte("old"))); err != nil {
		t.Fatal(err)
	}
	if err := seed.Close(); err != nil {
		t.Fatal(err)
	}

	cfg := config.NewDefault()
	cfg.Gateway.StaticDir = staticDir
	cfg.Gateway.TileHostSuffixes = []string{tileHost.Hostname()}
	cfg.Cache.Version = "v1"
	cfg.Cache.Backend = "sqlite"
	cfg.Cache.SQLitePath = dbPath

	logger, err := logging.New(cfg.Telemetry.Logging, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	gw, err := gateway.New(cfg.Gateway, cfg.Cache, logger, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := gw.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := gw.Stop(); err != nil {
			t.Errorf("Stop: %v", err)
		}
	}()

	ready := func() error { return nil }
	routes := server.GatewayRoutes(gw, ready, cfg.Telemetry, nil, logger)
	front := httptest.NewServer(routes)
	defer front.Close()

	t.Run("activation pruned the old version", func(t *testing.T) {
		p, err := cache.NewSQLiteProvider(dbPath)
		if err != nil {
			t.Fatal(err)
		}
		defer p.Close()

		_, found, err := p.Get(context.Background(), "app-v0", "k")
		if err != nil {
			t.Fatal(err)
		}
		if found {
			t.Error("superseded store survived activation")
		}
	})

	t.Run("shell", func(t *testing.T) {
		resp, err := http.Get(front.URL + "/")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if string(body) != "<html>shell</html>" {
			t.Errorf("body = %q", body)
		}
	})

	t.Run("asset", func(t *testing.T) {
		resp, err := http.Get(front.URL + "/app.js")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if string(body) != "console.log(1)" {
			t.Errorf("body = %q", body)
		}
	})

	t.Run("tile fetched then served after origin loss", func(t *testing.T) {
		get := func() []byte {
			req, _ := http.NewRequest(http.MethodGet, front.URL+"/tiles/3857/6/20/31", nil)
			req.Host = tileHost.Host
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			return body
		}

		if got := get(); string(got) != string(tile) {
			t.Fatalf("first fetch body = %v", got)
		}

		gw.Flush()
		tileUpstream.Close()

		if got := get(); string(got) != string(tile) {
			t.Errorf("offline body = %v, want cached tile", got)
		}
		gw.Flush()
	})
}
