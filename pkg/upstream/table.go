package upstream

import (
	"sync"

	"mercator-hq/atlas/pkg/config"
	"mercator-hq/atlas/pkg/geo"
)

// Endpoint is a resolved upstream target for a region: the WMS base URL
// and the layer the proxy forces for that region.
type Endpoint struct {
	BaseURL string
	Layer   string
}

// Table maps regions to upstream endpoints. It is safe for concurrent use;
// Reload swaps the whole mapping atomically so in-flight requests see
// either the old or the new table, never a mix.
type Table struct {
	mu       sync.RWMutex
	tiles    string
	features string
	lidar    map[geo.Region]Endpoint
}

// NewTable builds a Table from upstream configuration.
func NewTable(cfg config.UpstreamsConfig) *Table {
	t := &Table{}
	t.Reload(cfg)
	return t
}

// Reload replaces the table contents from new configuration.
func (t *Table) Reload(cfg config.UpstreamsConfig) {
	lidar := make(map[geo.Region]Endpoint, len(cfg.LiDAR))
	for name, ep := range cfg.LiDAR {
		lidar[geo.Region(name)] = Endpoint{BaseURL: ep.BaseURL, Layer: ep.Layer}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.tiles = cfg.Tiles.BaseURL
	t.features = cfg.Features.BaseURL
	t.lidar = lidar
}

// TilesBaseURL returns the vector tile API base URL.
func (t *Table) TilesBaseURL() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tiles
}

// FeaturesBaseURL returns the features API base URL.
func (t *Table) FeaturesBaseURL() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.features
}

// Lookup returns the LiDAR endpoint for a region. Regions without an entry
// resolve to the England endpoint; a missing region is a configuration gap,
// never a request error.
func (t *Table) Lookup(region geo.Region) Endpoint {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if ep, ok := t.lidar[region]; ok {
		return ep
	}
	return t.lidar[geo.DefaultRegion]
}
