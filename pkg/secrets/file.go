package secrets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileProvider loads secrets from individual files in a directory.
//
// This supports Kubernetes-style secret mounting where each secret is
// stored as a separate file named after the secret. File permissions are
// validated (0600 or 0400 only) so an overly permissive mount is caught
// at read time rather than silently accepted.
type FileProvider struct {
	// BasePath is the directory containing secret files.
	BasePath string
}

// NewFileProvider creates a new file-based secret provider.
func NewFileProvider(basePath string) (*FileProvider, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat secrets path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("secrets path is not a directory: %s", basePath)
	}

	return &FileProvider{BasePath: basePath}, nil
}

// GetSecret reads a secret from "<BasePath>/<name>".
func (p *FileProvider) GetSecret(ctx context.Context, name string) (string, error) {
	if strings.Contains(name, "/") || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid secret name: %s", name)
	}

	path := filepath.Join(p.BasePath, name)

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("secret not found: %s: %w", name, err)
	}

	if perm := info.Mode().Perm(); perm != 0o600 && perm != 0o400 {
		return "", fmt.Errorf("secret file %s has permissions %04o, want 0600 or 0400", name, perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret %s: %w", name, err)
	}

	return strings.TrimSpace(string(data)), nil
}

// Provider returns the provider name.
func (p *FileProvider) Provider() string {
	return "file"
}
