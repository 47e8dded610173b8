package cache

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// countingOrigin records fetches and can be switched to fail.
type countingOrigin struct {
	mu    sync.Mutex
	calls int
	fail  bool
	body  string
}

func (o *countingOrigin) Fetch(ctx context.Context, r *http.Request) (*Entry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	if o.fail {
		return nil, errors.New("origin unreachable")
	}
	return NewEntry(http.StatusOK, http.Header{"Content-Type": []string{"text/plain"}}, []byte(o.body)), nil
}

func (o *countingOrigin) setFail(fail bool) {
	o.mu.Lock()
	o.fail = fail
	o.mu.Unlock()
}

func (o *countingOrigin) fetches() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls
}

func newTestDispatcher(t *testing.T, origin Origin) (*Dispatcher, *MemoryProvider, *Manager) {
	t.Helper()

	provider := NewMemoryProvider()
	manager := NewManager(provider, "v1", testLogger(t), nil)

	d := NewDispatcher(provider, manager, origin, DispatcherConfig{
		ShellPaths:       []string{"/", "/manifest.webmanifest"},
		AssetExtensions:  []string{".js", ".css", ".png"},
		TileHostSuffixes: []string{"api.os.uk"},
	}, testLogger(t), nil)

	return d, provider, manager
}

func TestClassify(t *testing.T) {
	d, _, _ := newTestDispatcher(t, &countingOrigin{body: "x"})

	tests := []struct {
		name   string
		target string
		accept string
		want   Class
	}{
		{name: "root navigation", target: "http://app.local/", want: ClassShell},
		{name: "manifest", target: "http://app.local/manifest.webmanifest", want: ClassShell},
		{name: "html accept", target: "http://app.local/map/view", accept: "text/html,*/*", want: ClassShell},
		{name: "script asset", target: "http://app.local/static/app.js", want: ClassAsset},
		{name: "stylesheet asset", target: "http://app.local/static/app.css", want: ClassAsset},
		{name: "tile host", target: "https://api.os.uk/maps/vector/ngd/ota/v1/tiles/3857/6/20/31", want: ClassTile},
		{name: "tile host beats asset extension", target: "https://api.os.uk/sprites/sprite.png", want: ClassTile},
		{name: "unmatched", target: "http://app.local/api/session", want: ClassNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.accept != "" {
				r.Header.Set("Accept", tt.accept)
			}
			if got := d.Classify(r); got != tt.want {
				t.Errorf("Classify(%s) = %q, want %q", tt.target, got, tt.want)
			}
		})
	}
}

func TestNetworkFirstStoresAndFallsBack(t *testing.T) {
	origin := &countingOrigin{body: "shell-v1"}
	d, _, _ := newTestDispatcher(t, origin)

	// Online: the network copy is served and stored.
	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://app.local/", nil))
	if rec.Body.String() != "shell-v1" {
		t.Fatalf("online body = %q", rec.Body)
	}

	// Offline: the stored copy backs the shell.
	origin.setFail(true)
	rec = httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://app.local/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("offline status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "shell-v1" {
		t.Errorf("offline body = %q, want stored shell", rec.Body)
	}
}

func TestNetworkFirstOfflineWithoutCache(t *testing.T) {
	origin := &countingOrigin{fail: true}
	d, _, _ := newTestDispatcher(t, origin)

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://app.local/", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestCacheFirstFetchesOnce(t *testing.T) {
	origin := &countingOrigin{body: "asset"}
	d, _, _ := newTestDispatcher(t, origin)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://app.local/static/app.js", nil))
		if rec.Body.String() != "asset" {
			t.Fatalf("body = %q on request %d", rec.Body, i)
		}
	}

	if got := origin.fetches(); got != 1 {
		t.Errorf("origin fetches = %d, want 1", got)
	}
}

func TestStaleWhileRevalidate(t *testing.T) {
	origin := &countingOrigin{body: "tile-new"}
	d, provider, manager := newTestDispatcher(t, origin)

	ctx := context.Background()
	req := httptest.NewRequest(http.MethodGet, "https://api.os.uk/tiles/3857/6/20/31", nil)
	key := RequestKey(req)

	stale := NewEntry(http.StatusOK, http.Header{}, []byte("tile-stale"))
	if err := provider.Put(ctx, manager.RuntimeStore(), key, stale); err != nil {
		t.Fatal(err)
	}

	// The stored copy wins the race; the network result is not awaited.
	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, req)
	if rec.Body.String() != "tile-stale" {
		t.Fatalf("body = %q, want stale copy", rec.Body)
	}

	// The background refresh still lands in the store.
	d.Flush()
	refreshed, found, err := provider.Get(ctx, manager.RuntimeStore(), key)
	if err != nil || !found {
		t.Fatalf("refreshed entry missing (found=%v, err=%v)", found, err)
	}
	if string(refreshed.Body) != "tile-new" {
		t.Errorf("stored body = %q, want network result", refreshed.Body)
	}
}

func TestStaleWhileRevalidateMiss(t *testing.T) {
	origin := &countingOrigin{body: "tile-fresh"}
	d, provider, manager := newTestDispatcher(t, origin)

	req := httptest.NewRequest(http.MethodGet, "https://api.os.uk/tiles/3857/6/20/31", nil)

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, req)
	if rec.Body.String() != "tile-fresh" {
		t.Fatalf("body = %q, want network result", rec.Body)
	}

	d.Flush()
	_, found, _ := provider.Get(context.Background(), manager.RuntimeStore(), RequestKey(req))
	if !found {
		t.Error("fetched tile was not written back")
	}
}

func TestPassthroughDoesNotCache(t *testing.T) {
	origin := &countingOrigin{body: "live"}
	d, provider, _ := newTestDispatcher(t, origin)

	req := httptest.NewRequest(http.MethodGet, "http://app.local/api/session", nil)

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, req)
	if rec.Body.String() != "live" {
		t.Fatalf("body = %q", rec.Body)
	}

	names, _ := provider.Stores(context.Background())
	if len(names) != 0 {
		t.Errorf("passthrough created stores: %v", names)
	}
}
