package upstream

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Error is a failed upstream exchange: either a transport failure or a
// non-2xx status. The orchestrator converts it to a structured 500
// response; it is never retried automatically.
type Error struct {
	// URL is the upstream URL with the credential already stripped.
	URL string

	// StatusCode is the upstream status, or 0 for transport failures.
	StatusCode int

	// Message is the underlying failure message.
	Message string
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream request failed: %s", e.Message)
}

// Client forwards requests to the geospatial upstreams with connection
// pooling and a per-request timeout.
type Client struct {
	client *http.Client
	logger *slog.Logger
}

// NewClient creates an upstream client with pooled connections.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		logger: logger.With("component", "upstream.client"),
	}
}

// Fetch performs a single upstream request and returns the response with
// its body open when the status is 2xx. Any other outcome returns *Error.
// logURL is the credential-free form of the URL used for logging and error
// reporting; the real URL carries the API key and must never be logged.
func (c *Client) Fetch(ctx context.Context, method, rawURL, logURL string, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, &Error{URL: logURL, Message: err.Error()}
	}
	if header != nil {
		req.Header = header.Clone()
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "*/*")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("upstream request failed",
			"method", method,
			"url", logURL,
			"error", err,
		)
		return nil, &Error{URL: logURL, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		c.logger.Warn("upstream returned error status",
			"method", method,
			"url", logURL,
			"status", resp.StatusCode,
		)
		return nil, &Error{
			URL:        logURL,
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	c.logger.Debug("upstream request completed",
		"method", method,
		"url", logURL,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return resp, nil
}
