package proxy

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the structured JSON body for proxy errors. Message,
// Usage, and ValidTypes are present only when they add something.
type ErrorResponse struct {
	Error      string   `json:"error"`
	Message    string   `json:"message,omitempty"`
	Usage      string   `json:"usage,omitempty"`
	ValidTypes []string `json:"validTypes,omitempty"`
}

// WriteError writes a structured error response. The response is always
// JSON so clients can rely on the shape regardless of which upstream the
// request targeted.
func WriteError(w http.ResponseWriter, status int, body ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteClassificationError writes the 400 response for requests that could
// not be routed, including guidance listing the valid service types.
func WriteClassificationError(w http.ResponseWriter, reason string) {
	WriteError(w, http.StatusBadRequest, ErrorResponse{
		Error:      reason,
		Usage:      "specify ?service=tiles|features|lidar",
		ValidTypes: ValidServiceTypes,
	})
}

// WriteUpstreamError writes the 500 response for upstream failures. The
// message must already be credential-free.
func WriteUpstreamError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "upstream request failed",
		Message: message,
	})
}
