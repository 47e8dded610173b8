/*
Package upstream maps resolved regions to upstream endpoints and provides
the pooled HTTP client used to forward proxy requests.

The Table is the single authority on which upstream base URL and layer a
region maps to. Today every region resolves to the same physical upstream;
the table still keeps one entry per region so a future divergence only
touches configuration, never routing logic:

	table := upstream.NewTable(cfg.Upstreams)
	ep := table.Lookup(geo.RegionScotland)

Lookups for unknown regions fall back to the England entry rather than
failing; the proxy must always have somewhere to route.

The Client forwards a single request upstream with connection pooling and
a per-request timeout. Upstream failures are never retried automatically;
they surface as a typed error the orchestrator converts to a structured
500 response.
*/
package upstream
