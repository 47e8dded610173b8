package cache

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"mercator-hq/atlas/pkg/telemetry/logging"
	"mercator-hq/atlas/pkg/telemetry/metrics"
)

// State is the lifecycle state of the cache version.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateInstalling    State = "installing"
	StateActive        State = "active"
)

// Origin fetches a resource from the backing origin, whichever one the
// request targets. The gateway supplies the implementation.
type Origin interface {
	Fetch(ctx context.Context, r *http.Request) (*Entry, error)
}

// OriginFunc adapts a function to the Origin interface.
type OriginFunc func(ctx context.Context, r *http.Request) (*Entry, error)

func (f OriginFunc) Fetch(ctx context.Context, r *http.Request) (*Entry, error) {
	return f(ctx, r)
}

// Manager drives the versioned cache lifecycle: install pre-populates the
// current app store with the shell manifest, activation prunes every store
// belonging to another version.
type Manager struct {
	provider Provider
	version  string
	logger   *logging.Logger
	metrics  *metrics.CacheMetrics

	mu    sync.RWMutex
	state State
}

// NewManager creates a lifecycle manager for the given cache version.
// Metrics may be nil.
func NewManager(provider Provider, version string, logger *logging.Logger, cm *metrics.CacheMetrics) *Manager {
	return &Manager{
		provider: provider,
		version:  version,
		logger:   logger,
		metrics:  cm,
		state:    StateUninitialized,
	}
}

// Version returns the cache version the manager owns.
func (m *Manager) Version() string {
	return m.version
}

// AppStore returns the name of the current application shell store.
func (m *Manager) AppStore() string {
	return "app-" + m.version
}

// RuntimeStore returns the name of the current runtime store.
func (m *Manager) RuntimeStore() string {
	return "runtime-" + m.version
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// Install fetches every path in the shell manifest and stores it in the
// current app store. Install is all-or-nothing: any fetch failure aborts
// and leaves the manager uninitialized so a later attempt can retry.
func (m *Manager) Install(ctx context.Context, manifest []string, origin Origin) error {
	m.setState(StateInstalling)

	manifest = normalizeManifest(manifest)
	for _, path := range manifest {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
		if err != nil {
			m.setState(StateUninitialized)
			return fmt.Errorf("building install request for %s: %w", path, err)
		}

		entry, err := origin.Fetch(ctx, req)
		if err != nil {
			m.setState(StateUninitialized)
			return fmt.Errorf("installing %s: %w", path, err)
		}

		if err := m.provider.Put(ctx, m.AppStore(), RequestKey(req), entry); err != nil {
			m.setState(StateUninitialized)
			return fmt.Errorf("storing %s: %w", path, err)
		}
	}

	m.logger.Info("cache install complete",
		"store", m.AppStore(),
		"entries", len(manifest),
	)
	return nil
}

// Activate prunes stores from other versions and marks the cache active.
// Pruning is purely version-based: any store whose name is not the current
// app or runtime store is deleted, whatever its age or contents.
func (m *Manager) Activate(ctx context.Context) error {
	if err := m.Prune(ctx); err != nil {
		return err
	}
	m.setState(StateActive)
	return nil
}

// Prune deletes every store not belonging to the current version. It runs
// during activation and again on the sweep schedule.
func (m *Manager) Prune(ctx context.Context) error {
	names, err := m.provider.Stores(ctx)
	if err != nil {
		return fmt.Errorf("listing stores: %w", err)
	}

	keep := map[string]bool{
		m.AppStore():     true,
		m.RuntimeStore(): true,
	}

	for _, name := range names {
		if keep[name] {
			continue
		}
		if err := m.provider.DeleteStore(ctx, name); err != nil {
			return fmt.Errorf("deleting superseded store %s: %w", name, err)
		}
		if m.metrics != nil {
			m.metrics.RecordStoreDeleted()
		}
		m.logger.Info("deleted superseded cache store", "store", name)
	}
	return nil
}

// normalizeManifest cleans manifest paths so install keys line up with
// request keys. Paths gain a leading slash when missing.
func normalizeManifest(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		out = append(out, p)
	}
	return out
}
