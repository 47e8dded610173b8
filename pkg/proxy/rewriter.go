package proxy

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// keyParamPattern matches an API key query parameter including its leading
// separator. Removal is blanket: every occurrence anywhere in the
// serialized document is stripped, whichever upstream produced it.
var keyParamPattern = regexp.MustCompile(`[?&]key=[^&"'\s\\]*`)

// Rewriter transforms upstream JSON responses so clients receive proxy
// URLs instead of direct upstream URLs and never see the API key.
type Rewriter struct {
	// ProxyBase is the absolute URL of the proxy endpoint that rewritten
	// tile URLs point back to, e.g. "https://atlas.example/proxy".
	ProxyBase string
}

// NewRewriter creates a Rewriter that targets tile URLs at proxyBase.
func NewRewriter(proxyBase string) *Rewriter {
	return &Rewriter{ProxyBase: proxyBase}
}

// IsJSON reports whether a response content type carries JSON. Anything
// else is binary and passes through the proxy untouched.
func IsJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "json")
}

// Rewrite transforms a JSON response body for the given request. Style
// documents from the tiles upstream get their sources repointed at the
// proxy; every JSON response gets key parameters stripped. Bodies that do
// not parse as a JSON object still get the key sweep.
func (rw *Rewriter) Rewrite(body []byte, req ServiceRequest) []byte {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return RedactKeys(body)
	}

	if req.Type == ServiceTiles {
		rw.rewriteSources(doc, req.Collection)
		delete(doc, "center")
		delete(doc, "zoom")
	}

	out, err := marshalNoEscape(doc)
	if err != nil {
		return RedactKeys(body)
	}
	return RedactKeys(out)
}

// rewriteSources repoints the requested collection's source at the proxy.
// The upstream "url" entry is replaced with an explicit tiles array using
// the proxy's tile template; other sources are left alone.
func (rw *Rewriter) rewriteSources(doc map[string]any, collection string) {
	sources, ok := doc["sources"].(map[string]any)
	if !ok {
		return
	}
	source, ok := sources[collection].(map[string]any)
	if !ok {
		return
	}
	if _, ok := source["url"]; !ok {
		return
	}

	source["tiles"] = []any{
		rw.ProxyBase + "?service=tiles&collection=" + collection + "&path=tiles/3857/{z}/{y}/{x}",
	}
	delete(source, "url")
}

// RedactKeys removes every key query parameter from a serialized document,
// leading separator included.
func RedactKeys(body []byte) []byte {
	return keyParamPattern.ReplaceAll(body, nil)
}

// marshalNoEscape serializes without HTML escaping so URL separators in
// the document survive as-is.
func marshalNoEscape(doc map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
