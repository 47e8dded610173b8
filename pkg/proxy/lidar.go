package proxy

import (
	"net/url"

	"mercator-hq/atlas/pkg/geo"
	"mercator-hq/atlas/pkg/upstream"
)

// BuildLiDARRequest resolves the WMS upstream for a classified LiDAR
// request and assembles the outbound URL.
//
// The bounding box selects the regional endpoint; a missing or malformed
// box falls back to the England service. The original query travels to the
// upstream almost verbatim: the proxy drops only its own service=lidar
// marker, forces SERVICE=WMS when the client sent no service key at all,
// and overrides the layer with the regional one.
func BuildLiDARRequest(req ServiceRequest, table *upstream.Table) (rawURL string, region geo.Region) {
	bbox := req.Query.Get("BBOX")
	if bbox == "" {
		bbox = req.Query.Get("bbox")
	}

	region = geo.ResolveRegion(bbox)
	endpoint := table.Lookup(region)

	params := make(url.Values, len(req.Query))
	for k, vs := range req.Query {
		if k == "service" && len(vs) > 0 && vs[0] == "lidar" {
			continue
		}
		params[k] = append([]string(nil), vs...)
	}

	if !params.Has("SERVICE") && !params.Has("service") {
		params.Set("SERVICE", "WMS")
	}

	params.Del("layers")
	params.Set("LAYERS", endpoint.Layer)

	return endpoint.BaseURL + "?" + params.Encode(), region
}
