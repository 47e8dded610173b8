package upstream

import (
	"testing"

	"mercator-hq/atlas/pkg/config"
	"mercator-hq/atlas/pkg/geo"
)

func testUpstreamsConfig() config.UpstreamsConfig {
	return config.UpstreamsConfig{
		Tiles:    config.EndpointConfig{BaseURL: "https://tiles.example.com/v1"},
		Features: config.EndpointConfig{BaseURL: "https://features.example.com/v2"},
		LiDAR: map[string]config.WMSEndpointConfig{
			"england":  {BaseURL: "https://wms.example.com", Layer: "dsm_england"},
			"scotland": {BaseURL: "https://wms.example.scot", Layer: "dsm_scotland"},
		},
	}
}

func TestTableLookup(t *testing.T) {
	table := NewTable(testUpstreamsConfig())

	t.Run("known region", func(t *testing.T) {
		ep := table.Lookup(geo.RegionScotland)
		if ep.BaseURL != "https://wms.example.scot" || ep.Layer != "dsm_scotland" {
			t.Errorf("Lookup(scotland) = %+v", ep)
		}
	})

	t.Run("missing region falls back to england", func(t *testing.T) {
		ep := table.Lookup(geo.RegionWales)
		if ep.Layer != "dsm_england" {
			t.Errorf("Lookup(wales) = %+v, want england fallback", ep)
		}
	})

	t.Run("base URLs", func(t *testing.T) {
		if table.TilesBaseURL() != "https://tiles.example.com/v1" {
			t.Errorf("TilesBaseURL() = %q", table.TilesBaseURL())
		}
		if table.FeaturesBaseURL() != "https://features.example.com/v2" {
			t.Errorf("FeaturesBaseURL() = %q", table.FeaturesBaseURL())
		}
	})
}

func TestTableReload(t *testing.T) {
	table := NewTable(testUpstreamsConfig())

	cfg := testUpstreamsConfig()
	cfg.Tiles.BaseURL = "https://tiles2.example.com/v1"
	cfg.LiDAR["wales"] = config.WMSEndpointConfig{
		BaseURL: "https://wms.example.cymru",
		Layer:   "dsm_wales",
	}
	table.Reload(cfg)

	if table.TilesBaseURL() != "https://tiles2.example.com/v1" {
		t.Errorf("TilesBaseURL() = %q after reload", table.TilesBaseURL())
	}
	if ep := table.Lookup(geo.RegionWales); ep.Layer != "dsm_wales" {
		t.Errorf("Lookup(wales) = %+v after reload", ep)
	}
}
