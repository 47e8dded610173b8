package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvProvider loads secrets from environment variables.
//
// Secret names are converted to uppercase environment variable names with
// hyphens replaced by underscores, prefixed with the configured prefix.
//
// Example:
//   - Secret name: "os-api-key"
//   - Env var name: "ATLAS_SECRET_OS_API_KEY" (with prefix "ATLAS_SECRET_")
type EnvProvider struct {
	// Prefix is prepended to all environment variable names.
	Prefix string
}

// NewEnvProvider creates a new environment variable secret provider.
func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{Prefix: prefix}
}

// GetSecret retrieves a secret from an environment variable.
func (p *EnvProvider) GetSecret(ctx context.Context, name string) (string, error) {
	envVar := p.secretNameToEnvVar(name)

	value := os.Getenv(envVar)
	if value == "" {
		return "", fmt.Errorf("secret not found in environment: %s (env var: %s)", name, envVar)
	}

	return value, nil
}

// Provider returns the provider name.
func (p *EnvProvider) Provider() string {
	return "env"
}

// secretNameToEnvVar converts a secret name to an environment variable
// name: uppercase, hyphens to underscores, prefix prepended.
func (p *EnvProvider) secretNameToEnvVar(name string) string {
	return p.Prefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
