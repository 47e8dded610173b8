// Package cache implements the gateway's versioned named cache stores and
// the per-resource-class caching strategies that read and write them.
//
// Stores are named app-<version> and runtime-<version>. The lifecycle
// manager creates and prunes them; the strategy dispatcher decides which
// store a request touches and how.
package cache

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Entry is one cached response.
type Entry struct {
	Status   int
	Header   http.Header
	Body     []byte
	StoredAt time.Time
}

// Clone returns a deep copy so callers can mutate headers without
// corrupting the stored entry.
func (e *Entry) Clone() *Entry {
	clone := &Entry{
		Status:   e.Status,
		Header:   e.Header.Clone(),
		Body:     append([]byte(nil), e.Body...),
		StoredAt: e.StoredAt,
	}
	return clone
}

// Provider is a registry of named cache stores. Stores spring into
// existence on first Put; deleting a store removes every entry in it.
type Provider interface {
	// Get returns the entry stored under key, or found=false.
	Get(ctx context.Context, store, key string) (entry *Entry, found bool, err error)

	// Put stores an entry under key, replacing any previous one.
	Put(ctx context.Context, store, key string, entry *Entry) error

	// Stores lists the names of all existing stores.
	Stores(ctx context.Context) ([]string, error)

	// DeleteStore removes a store and all its entries.
	DeleteStore(ctx context.Context, store string) error

	// Close releases backend resources.
	Close() error
}

// RequestKey derives the cache key for a request: the method plus the
// normalized URL. Two requests for the same resource must produce the
// same key whichever form the URL arrived in.
func RequestKey(r *http.Request) string {
	host := r.URL.Host
	if host == "" {
		host = r.Host
	}

	var b strings.Builder
	b.WriteString(r.Method)
	b.WriteString(" ")
	b.WriteString(host)
	b.WriteString(r.URL.Path)
	if r.URL.RawQuery != "" {
		b.WriteString("?")
		b.WriteString(r.URL.RawQuery)
	}
	return b.String()
}
