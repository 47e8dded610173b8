package gateway

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"mercator-hq/atlas/pkg/cache"
)

// origin routes fetches between the local static handler and remote tile
// hosts. Local requests never leave the process.
type origin struct {
	local        http.Handler
	client       *http.Client
	tileSuffixes []string
}

func newOrigin(local http.Handler, tileSuffixes []string, timeout time.Duration) *origin {
	return &origin{
		local:        local,
		client:       &http.Client{Timeout: timeout},
		tileSuffixes: tileSuffixes,
	}
}

// Fetch satisfies cache.Origin.
func (o *origin) Fetch(ctx context.Context, r *http.Request) (*cache.Entry, error) {
	if o.isRemote(r) {
		return o.fetchRemote(ctx, r)
	}
	return o.fetchLocal(ctx, r)
}

func (o *origin) isRemote(r *http.Request) bool {
	host := requestHost(r)
	if host == "" {
		return false
	}
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	for _, suffix := range o.tileSuffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}

// requestHost returns the target host whether the request URL arrived in
// absolute form or with the host only in the Host header.
func requestHost(r *http.Request) string {
	if r.URL.Host != "" {
		return r.URL.Host
	}
	return r.Host
}

func (o *origin) fetchRemote(ctx context.Context, r *http.Request) (*cache.Entry, error) {
	target := *r.URL
	if target.Host == "" {
		target.Host = r.Host
	}
	if target.Scheme == "" {
		target.Scheme = "http"
		if r.TLS != nil {
			target.Scheme = "https"
		}
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header = r.Header.Clone()

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return cache.NewEntry(resp.StatusCode, resp.Header, body), nil
}

func (o *origin) fetchLocal(ctx context.Context, r *http.Request) (*cache.Entry, error) {
	rec := newEntryRecorder()
	o.local.ServeHTTP(rec, r.WithContext(ctx))
	return rec.entry(), nil
}

// entryRecorder captures a local handler's response as a cache entry.
type entryRecorder struct {
	status int
	header http.Header
	body   strings.Builder
}

func newEntryRecorder() *entryRecorder {
	return &entryRecorder{
		status: http.StatusOK,
		header: make(http.Header),
	}
}

func (rec *entryRecorder) Header() http.Header {
	return rec.header
}

func (rec *entryRecorder) WriteHeader(status int) {
	rec.status = status
}

func (rec *entryRecorder) Write(p []byte) (int, error) {
	return rec.body.Write(p)
}

func (rec *entryRecorder) entry() *cache.Entry {
	return cache.NewEntry(rec.status, rec.header, []byte(rec.body.String()))
}
