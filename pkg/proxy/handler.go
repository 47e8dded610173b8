package proxy

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"mercator-hq/atlas/pkg/geo"
	"mercator-hq/atlas/pkg/secrets"
	"mercator-hq/atlas/pkg/telemetry/logging"
	"mercator-hq/atlas/pkg/telemetry/metrics"
	"mercator-hq/atlas/pkg/upstream"
)

// Handler is the edge proxy orchestrator. Every request flows through one
// path: classify, resolve the upstream, inject the credential, forward,
// rewrite. All failures surface as structured JSON errors so the client
// never receives a half-proxied response.
type Handler struct {
	table    *upstream.Table
	client   *upstream.Client
	secrets  secrets.Provider
	keyName  string
	logger   *logging.Logger
	metrics  *metrics.ProxyMetrics
}

// NewHandler creates the proxy handler. keyName is the secret name of the
// upstream API key; metrics may be nil when collection is disabled.
func NewHandler(table *upstream.Table, client *upstream.Client, provider secrets.Provider, keyName string, logger *logging.Logger, pm *metrics.ProxyMetrics) *Handler {
	return &Handler{
		table:   table,
		client:  client,
		secrets: provider,
		keyName: keyName,
		logger:  logger,
		metrics: pm,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := Classify(r.URL.Query())

	status := h.serve(w, r, req)

	if h.metrics != nil {
		region := regionLabel(req)
		h.metrics.RecordRequest(string(req.Type), region, strconv.Itoa(status), time.Since(start))
	}
}

// serve handles the classified request and returns the response status for
// metrics.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, req ServiceRequest) int {
	if req.Type == ServiceInvalid {
		h.logger.Debug("rejected unroutable request", "reason", req.Reason)
		WriteClassificationError(w, req.Reason)
		return http.StatusBadRequest
	}

	rawURL, logURL, method, err := h.buildUpstreamRequest(r, req)
	if err != nil {
		h.logger.Error("credential resolution failed", "error", err)
		WriteUpstreamError(w, "credential unavailable")
		return http.StatusInternalServerError
	}

	header := http.Header{}
	header.Set("Accept", "*/*")

	resp, err := h.client.Fetch(r.Context(), method, rawURL, logURL, header)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordUpstreamError(string(req.Type))
		}
		WriteUpstreamError(w, err.Error())
		return http.StatusInternalServerError
	}
	defer resp.Body.Close()

	return h.writeResponse(w, r, req, resp)
}

// buildUpstreamRequest assembles the outbound URL for a routable request.
// It returns both the real URL and a credential-free twin for logging.
func (h *Handler) buildUpstreamRequest(r *http.Request, req ServiceRequest) (rawURL, logURL, method string, err error) {
	if req.Type == ServiceLiDAR {
		// The WMS upstream takes no credential, so the log URL is the
		// real one.
		u, _ := BuildLiDARRequest(req, h.table)
		return u, u, http.MethodGet, nil
	}

	var base string
	switch req.Type {
	case ServiceTiles:
		path := req.Path
		if path == "" {
			path = "styles/3857"
		}
		base = h.table.TilesBaseURL() + "/collections/" + req.Collection + "/" + path
	case ServiceFeatures:
		base = h.table.FeaturesBaseURL() + "/" + req.Path
	}

	key, err := h.secrets.GetSecret(r.Context(), h.keyName)
	if err != nil {
		return "", "", "", err
	}

	logURL = base
	if len(req.Passthrough) > 0 {
		logURL = base + "?" + req.Passthrough.Encode()
	}

	params := cloneValues(req.Passthrough)
	params.Set("key", key)
	return base + "?" + params.Encode(), logURL, r.Method, nil
}

// writeResponse relays the upstream response. JSON bodies from the tiles
// and features upstreams are rewritten; everything else streams through
// unchanged.
func (h *Handler) writeResponse(w http.ResponseWriter, r *http.Request, req ServiceRequest, resp *http.Response) int {
	contentType := resp.Header.Get("Content-Type")
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")

	if req.Type != ServiceLiDAR && IsJSON(contentType) {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			if h.metrics != nil {
				h.metrics.RecordUpstreamError(string(req.Type))
			}
			WriteUpstreamError(w, "reading upstream response failed")
			return http.StatusInternalServerError
		}

		rewriter := NewRewriter(requestBase(r))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(rewriter.Rewrite(body, req))
		return http.StatusOK
	}

	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, resp.Body)
	return http.StatusOK
}

// requestBase reconstructs the absolute URL of the proxy endpoint as the
// client reached it, for use in rewritten tile templates.
func requestBase(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return scheme + "://" + r.Host + r.URL.Path
}

func regionLabel(req ServiceRequest) string {
	if req.Type != ServiceLiDAR {
		return "none"
	}
	bbox := req.Query.Get("BBOX")
	if bbox == "" {
		bbox = req.Query.Get("bbox")
	}
	return string(geo.ResolveRegion(bbox))
}
