// Package static serves the map application's files from disk, falling
// back to the shell document for navigation paths so client-side routes
// resolve on a direct load.
package static

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"mercator-hq/atlas/pkg/telemetry/logging"
)

// Server serves static files with a shell fallback.
type Server struct {
	dir    string
	shell  string
	logger *logging.Logger
}

// NewServer creates a static server rooted at dir. shellDocument is the
// file served for navigation paths that match no file, e.g. "index.html".
func NewServer(dir, shellDocument string, logger *logging.Logger) *Server {
	return &Server{
		dir:    dir,
		shell:  shellDocument,
		logger: logger,
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	clean := path.Clean("/" + r.URL.Path)
	target := filepath.Join(s.dir, filepath.FromSlash(clean))

	info, err := os.Stat(target)
	if err == nil && !info.IsDir() {
		http.ServeFile(w, r, target)
		return
	}

	if s.isNavigation(r, clean) {
		http.ServeFile(w, r, filepath.Join(s.dir, s.shell))
		return
	}

	s.logger.Debug("static file not found", "path", clean)
	http.NotFound(w, r)
}

// isNavigation reports whether a request should receive the shell
// document: directory paths, extensionless paths, and anything asking
// for HTML.
func (s *Server) isNavigation(r *http.Request, clean string) bool {
	if clean == "/" {
		return true
	}
	if path.Ext(clean) == "" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
