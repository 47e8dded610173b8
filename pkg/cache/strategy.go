package cache

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"mercator-hq/atlas/pkg/telemetry/logging"
	"mercator-hq/atlas/pkg/telemetry/metrics"
)

// Class is the resource class a request falls into, which decides the
// caching strategy applied to it.
type Class string

const (
	// ClassShell is an application navigation request: network-first.
	ClassShell Class = "shell"

	// ClassAsset is a static asset: cache-first.
	ClassAsset Class = "asset"

	// ClassTile is a tile origin request: stale-while-revalidate.
	ClassTile Class = "tile"

	// ClassNone matches nothing and passes through untouched.
	ClassNone Class = "none"
)

// Dispatcher routes each request to a caching strategy based on its
// resource class and serves it from the appropriate store.
type Dispatcher struct {
	provider Provider
	manager  *Manager
	origin   Origin
	logger   *logging.Logger
	metrics  *metrics.CacheMetrics

	shellPaths   map[string]bool
	assetExts    []string
	tileSuffixes []string

	// pending tracks fire-and-forget store writes so tests and shutdown
	// can wait for them.
	pending sync.WaitGroup
}

// DispatcherConfig carries the request classification rules.
type DispatcherConfig struct {
	// ShellPaths are the navigation paths served network-first.
	ShellPaths []string

	// AssetExtensions is the allow-list of cache-first file extensions,
	// with leading dots.
	AssetExtensions []string

	// TileHostSuffixes match request hosts that belong to the tile origin.
	TileHostSuffixes []string
}

// NewDispatcher creates a strategy dispatcher. Metrics may be nil.
func NewDispatcher(provider Provider, manager *Manager, origin Origin, cfg DispatcherConfig, logger *logging.Logger, cm *metrics.CacheMetrics) *Dispatcher {
	shellPaths := make(map[string]bool, len(cfg.ShellPaths))
	for _, p := range cfg.ShellPaths {
		shellPaths[p] = true
	}

	return &Dispatcher{
		provider:     provider,
		manager:      manager,
		origin:       origin,
		logger:       logger,
		metrics:      cm,
		shellPaths:   shellPaths,
		assetExts:    cfg.AssetExtensions,
		tileSuffixes: cfg.TileHostSuffixes,
	}
}

// Classify decides the resource class of a request. Tile host matching
// wins over path shape so a tile origin request with an asset-like path
// still revalidates.
func (d *Dispatcher) Classify(r *http.Request) Class {
	host := r.URL.Host
	if host == "" {
		host = r.Host
	}
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	for _, suffix := range d.tileSuffixes {
		if strings.HasSuffix(host, suffix) {
			return ClassTile
		}
	}

	path := r.URL.Path
	for _, ext := range d.assetExts {
		if strings.HasSuffix(path, ext) {
			return ClassAsset
		}
	}

	if d.shellPaths[path] || path == "/" {
		return ClassShell
	}
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		return ClassShell
	}

	return ClassNone
}

// ServeHTTP applies the class strategy and writes the response.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch d.Classify(r) {
	case ClassShell:
		d.serveNetworkFirst(w, r)
	case ClassAsset:
		d.serveCacheFirst(w, r)
	case ClassTile:
		d.serveStaleWhileRevalidate(w, r)
	default:
		d.servePassthrough(w, r)
	}
}

// Flush waits for all in-flight background store writes. Shutdown calls
// it so revalidated tiles are not lost; tests call it before asserting on
// store contents.
func (d *Dispatcher) Flush() {
	d.pending.Wait()
}

// serveNetworkFirst tries the origin and stores a fresh copy; when the
// origin is unreachable it falls back to the stored shell.
func (d *Dispatcher) serveNetworkFirst(w http.ResponseWriter, r *http.Request) {
	key := RequestKey(r)
	store := d.manager.AppStore()

	entry, err := d.origin.Fetch(r.Context(), r)
	if err == nil {
		if cacheable(entry) {
			if err := d.provider.Put(r.Context(), store, key, entry); err != nil {
				d.logger.Warn("storing shell response failed", "key", key, "error", err)
			}
		}
		writeEntry(w, entry)
		return
	}

	stored, found, getErr := d.provider.Get(r.Context(), store, key)
	if d.metrics != nil {
		d.metrics.RecordLookup("network-first", outcome(found))
	}
	if getErr != nil || !found {
		d.logger.Warn("shell unavailable from network and cache", "key", key, "error", err)
		writeOffline(w)
		return
	}

	writeEntry(w, stored)
}

// serveCacheFirst serves from the app store, fetching and storing on miss.
func (d *Dispatcher) serveCacheFirst(w http.ResponseWriter, r *http.Request) {
	key := RequestKey(r)
	store := d.manager.AppStore()

	stored, found, err := d.provider.Get(r.Context(), store, key)
	if d.metrics != nil {
		d.metrics.RecordLookup("cache-first", outcome(found))
	}
	if err == nil && found {
		writeEntry(w, stored)
		return
	}

	entry, err := d.origin.Fetch(r.Context(), r)
	if err != nil {
		writeOffline(w)
		return
	}
	if cacheable(entry) {
		if err := d.provider.Put(r.Context(), store, key, entry); err != nil {
			d.logger.Warn("storing asset failed", "key", key, "error", err)
		}
	}
	writeEntry(w, entry)
}

// serveStaleWhileRevalidate serves the stored tile immediately when
// present and refreshes it in the background. The network result is
// always written back, never awaited by the response.
func (d *Dispatcher) serveStaleWhileRevalidate(w http.ResponseWriter, r *http.Request) {
	key := RequestKey(r)
	store := d.manager.RuntimeStore()

	stored, found, err := d.provider.Get(r.Context(), store, key)
	if d.metrics != nil {
		d.metrics.RecordLookup("stale-while-revalidate", outcome(found))
	}

	if err == nil && found {
		d.revalidate(r, store, key)
		writeEntry(w, stored)
		return
	}

	entry, err := d.origin.Fetch(r.Context(), r)
	if err != nil {
		writeOffline(w)
		return
	}
	if cacheable(entry) {
		d.storeAsync(r, store, key, entry)
	}
	writeEntry(w, entry)
}

// servePassthrough proxies unmatched requests without touching any store.
func (d *Dispatcher) servePassthrough(w http.ResponseWriter, r *http.Request) {
	entry, err := d.origin.Fetch(r.Context(), r)
	if err != nil {
		writeOffline(w)
		return
	}
	writeEntry(w, entry)
}

// revalidate refreshes a stored entry in the background.
func (d *Dispatcher) revalidate(r *http.Request, store, key string) {
	ctx := context.WithoutCancel(r.Context())
	req := r.Clone(ctx)

	d.pending.Add(1)
	go func() {
		defer d.pending.Done()

		entry, err := d.origin.Fetch(ctx, req)
		if err != nil {
			if d.metrics != nil {
				d.metrics.RecordRevalidation("failure")
			}
			d.logger.Debug("tile revalidation failed", "key", key, "error", err)
			return
		}
		if !cacheable(entry) {
			if d.metrics != nil {
				d.metrics.RecordRevalidation("failure")
			}
			return
		}
		if err := d.provider.Put(ctx, store, key, entry); err != nil {
			if d.metrics != nil {
				d.metrics.RecordRevalidation("failure")
			}
			d.logger.Warn("storing revalidated tile failed", "key", key, "error", err)
			return
		}
		if d.metrics != nil {
			d.metrics.RecordRevalidation("success")
		}
	}()
}

// storeAsync writes a freshly fetched entry without blocking the response.
func (d *Dispatcher) storeAsync(r *http.Request, store, key string, entry *Entry) {
	ctx := context.WithoutCancel(r.Context())
	stored := entry.Clone()

	d.pending.Add(1)
	go func() {
		defer d.pending.Done()
		if err := d.provider.Put(ctx, store, key, stored); err != nil {
			d.logger.Warn("storing tile failed", "key", key, "error", err)
		}
	}()
}

// cacheable reports whether a response may be stored. Error responses
// never replace a stored copy.
func cacheable(entry *Entry) bool {
	return entry.Status >= 200 && entry.Status < 400
}

func outcome(found bool) string {
	if found {
		return "hit"
	}
	return "miss"
}

func writeEntry(w http.ResponseWriter, entry *Entry) {
	for name, values := range entry.Header {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	status := entry.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write(entry.Body)
}

// writeOffline is the generic failure response when neither the origin
// nor the cache can satisfy a request.
func writeOffline(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusServiceUnavailable)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": "resource unavailable offline",
	})
}

// NewEntry builds an Entry from response parts, stamping the store time.
func NewEntry(status int, header http.Header, body []byte) *Entry {
	return &Entry{
		Status:   status,
		Header:   header.Clone(),
		Body:     body,
		StoredAt: time.Now(),
	}
}
