package cache

import (
	"context"
	"sync"
)

// MemoryProvider keeps stores in process memory. It backs tests and
// deployments that can afford to lose the cache on restart.
type MemoryProvider struct {
	mu     sync.RWMutex
	stores map[string]map[string]*Entry
}

// NewMemoryProvider creates an empty in-memory store registry.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		stores: make(map[string]map[string]*Entry),
	}
}

// Get returns the entry stored under key.
func (p *MemoryProvider) Get(ctx context.Context, store, key string) (*Entry, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entries, ok := p.stores[store]
	if !ok {
		return nil, false, nil
	}
	entry, ok := entries[key]
	if !ok {
		return nil, false, nil
	}
	return entry.Clone(), true, nil
}

// Put stores an entry, creating the store on first write.
func (p *MemoryProvider) Put(ctx context.Context, store, key string, entry *Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	entries, ok := p.stores[store]
	if !ok {
		entries = make(map[string]*Entry)
		p.stores[store] = entries
	}
	entries[key] = entry.Clone()
	return nil
}

// Stores lists existing store names.
func (p *MemoryProvider) Stores(ctx context.Context) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.stores))
	for name := range p.stores {
		names = append(names, name)
	}
	return names, nil
}

// DeleteStore removes a store and its entries. Deleting a store that does
// not exist is a no-op.
func (p *MemoryProvider) DeleteStore(ctx context.Context, store string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.stores, store)
	return nil
}

// Close is a no-op for the in-memory provider.
func (p *MemoryProvider) Close() error {
	return nil
}
