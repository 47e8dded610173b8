package gateway

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
	"mercator-hq/atlas/pkg/telemetry/logging"
)

func newTestGateway(t *testing.T, tileSuffixes []string) *Gateway {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"index.html":           "<html>shell</html>",
		"manifest.webmanifest": `{"name":"atlas"}`,
		"app.js":               "console.log(1)",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	logger, err := logging.New(config.LoggingConfig{Level: "error"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	g, err := New(config.GatewayConfig{
		StaticDir:        dir,
		ShellDocument:    "index.html",
		ShellManifest:    []string{"/", "/manifest.webmanifest"},
		TileHostSuffixes: tileSuffixes,
		AssetExtensions:  []string{".js", ".css"},
	}, config.CacheConfig{
		Version:       "test",
		Backend:       "memory",
		SweepSchedule: "0 3 * * *",
	}, logger, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := g.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		if err := g.Stop(); err != nil {
			t.Errorf("Stop: %v", err)
		}
	})
	return g
}

func TestGatewayStartInstallsShell(t *testing.T) {
	g := newTestGateway(t, nil)

	if g.Manager().State() != cache.StateActive {
		t.Errorf("state = %q, want active", g.Manager().State())
	}

	rec := httptest.NewRecorder()
	g.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://app.local/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "<html>shell</html>" {
		t.Errorf("body = %q", rec.Body)
	}
}

func TestGatewayServesAssets(t *testing.T) {
	g := newTestGateway(t, nil)

	rec := httptest.NewRecorder()
	g.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://app.local/app.js", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "console.log(1)" {
		t.Errorf("body = %q", rec.Body)
	}
}

func TestGatewayShellFallbackForRoutes(t *testing.T) {
	g := newTestGateway(t, nil)

	req := httptest.NewRequest(http.MethodGet, "http://app.local/map/view", nil)
	req.Header.Set("Accept", "text/html")

	rec := httptest.NewRecorder()
	g.ServeHTTP(rec, req)

	if rec.Body.String() != "<html>shell</html>" {
		t.Errorf("body = %q, want shell document", rec.Body)
	}
}

func TestGatewayFetchesTilesRemotely(t *testing.T) {
	tile := []byte{0x1a, 0x02}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.mapbox-vector-tile")
		_, _ = w.Write(tile)
	}))
	defer srv.Close()

	host, _, _ := splitHostPort(srv.URL)
	g := newTestGateway(t, []string{host})

	req := httptest.NewRequest(http.MethodGet, srv.URL+"/tiles/3857/6/20/31", nil)

	// First request misses and hits the network.
	rec := httptest.NewRecorder()
	g.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != string(tile) {
		t.Errorf("body = %v", rec.Body.Bytes())
	}

	// The write-back is asynchronous; wait, then serve with the origin gone.
	g.Flush()
	srv.Close()

	rec = httptest.NewRecorder()
	g.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("offline status = %d", rec.Code)
	}
	if rec.Body.String() != string(tile) {
		t.Errorf("offline body = %v, want cached tile", rec.Body.Bytes())
	}
	g.Flush()
}

func splitHostPort(rawURL string) (host, port string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", err
	}
	return u.Hostname(), u.Port(), nil
}
