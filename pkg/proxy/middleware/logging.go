package middleware

import (
	"net/http"
	"time"

	"mercator-hq/atlas/pkg/telemetry/logging"
)

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

// Logging logs one line per completed request. The URL field passes
// through the logger's redactor, so a key parameter on an incoming
// request never reaches the log verbatim.
func Logging(logger *logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.Info("request completed",
				"request_id", GetRequestID(r.Context()),
				"method", r.Method,
				"url", r.URL.String(),
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
