package proxy

import "net/url"

// ServiceType identifies which upstream a proxied request targets.
type ServiceType string

const (
	// ServiceTiles is the vector tile API (styles and tile data).
	ServiceTiles ServiceType = "tiles"

	// ServiceFeatures is the features API.
	ServiceFeatures ServiceType = "features"

	// ServiceLiDAR is the WMS elevation imagery service.
	ServiceLiDAR ServiceType = "lidar"

	// ServiceInvalid marks requests that cannot be routed.
	ServiceInvalid ServiceType = "invalid"
)

// DefaultCollection is the tile collection used when the client does not
// name one.
const DefaultCollection = "ngd-base"

// ValidServiceTypes lists the service values a client may request,
// in the order they are reported in error guidance.
var ValidServiceTypes = []string{"tiles", "features", "lidar"}

// ServiceRequest is the outcome of classifying an incoming request's query
// parameters. For invalid requests Reason carries the client-facing
// explanation.
type ServiceRequest struct {
	Type       ServiceType
	Collection string
	Path       string

	// Passthrough holds every query parameter that is not consumed by
	// routing. They are forwarded verbatim to the upstream.
	Passthrough url.Values

	// Query is the full original query, preserved for the WMS path which
	// rebuilds its parameter set from scratch.
	Query url.Values

	// Reason explains an invalid classification.
	Reason string
}

// Classify inspects query parameters and decides which upstream the request
// targets.
//
// A bounding box parameter (BBOX or bbox) combined with any service
// parameter, either case, routes to the WMS upstream. This covers both the
// explicit service=lidar form and raw WMS requests that arrive with
// SERVICE=WMS already set. Without a bounding box the lowercase service
// parameter selects tiles or features directly.
func Classify(query url.Values) ServiceRequest {
	service := query.Get("service")
	hasBBox := query.Has("BBOX") || query.Has("bbox")
	hasService := query.Has("service") || query.Has("SERVICE")

	if hasBBox && (service == "lidar" || hasService) {
		return ServiceRequest{
			Type:  ServiceLiDAR,
			Query: cloneValues(query),
		}
	}

	switch service {
	case "tiles":
		collection := query.Get("collection")
		if collection == "" {
			collection = DefaultCollection
		}
		return ServiceRequest{
			Type:        ServiceTiles,
			Collection:  collection,
			Path:        query.Get("path"),
			Passthrough: passthroughParams(query),
			Query:       cloneValues(query),
		}
	case "features":
		return ServiceRequest{
			Type:        ServiceFeatures,
			Path:        query.Get("path"),
			Passthrough: passthroughParams(query),
			Query:       cloneValues(query),
		}
	case "":
		return ServiceRequest{
			Type:   ServiceInvalid,
			Reason: "missing service parameter",
			Query:  cloneValues(query),
		}
	default:
		return ServiceRequest{
			Type:   ServiceInvalid,
			Reason: "unknown service type: " + service,
			Query:  cloneValues(query),
		}
	}
}

// passthroughParams returns a copy of the query with the routing parameters
// removed. Everything else travels to the upstream unchanged.
func passthroughParams(query url.Values) url.Values {
	out := cloneValues(query)
	out.Del("service")
	out.Del("collection")
	out.Del("path")
	return out
}

func cloneValues(query url.Values) url.Values {
	out := make(url.Values, len(query))
	for k, vs := range query {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
