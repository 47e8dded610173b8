// Package secrets supplies the upstream API credential to the edge proxy.
//
// The credential is provided externally per deployment and is never stored
// in configuration files, logged, or echoed back in any response payload.
package secrets

import (
	"context"
	"fmt"

	"mercator-hq/atlas/pkg/config"
)

// Provider retrieves secrets from a backend.
//
// Implementations include environment variables and files. The proxy
// resolves the upstream API key through a Provider on every invocation
// rather than holding it in long-lived state.
type Provider interface {
	// GetSecret retrieves a secret by name.
	// Returns an error if the secret is not found or cannot be retrieved.
	GetSecret(ctx context.Context, name string) (string, error)

	// Provider returns the provider name ("env" or "file").
	Provider() string
}

// FromConfig builds the secret provider selected by configuration.
func FromConfig(cfg config.CredentialsConfig) (Provider, error) {
	switch cfg.Source {
	case "env":
		return NewEnvProvider(cfg.EnvPrefix), nil
	case "file":
		return NewFileProvider(cfg.File)
	default:
		return nil, fmt.Errorf("unknown credentials source %q", cfg.Source)
	}
}
