package logging

import (
	"regexp"
	"strings"
)

// Redactor removes credentials from log fields before they reach a handler.
//
// The patterns target the two places the upstream API key can leak: query
// strings ("?key=..." / "&key=...") and Authorization headers. Key-name
// matching additionally blanks any field whose name suggests a credential,
// whatever its value looks like.
type Redactor struct {
	patterns []redactPattern
}

type redactPattern struct {
	regex       *regexp.Regexp
	replacement string
}

// NewRedactor creates a Redactor with the built-in credential patterns.
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: []redactPattern{
			// API key query parameters, any position in a URL or body.
			{regexp.MustCompile(`([?&](?:key|apikey|api_key)=)[^&\s"']+`), "$1***"},
			// Bearer tokens.
			{regexp.MustCompile(`Bearer\s+[a-zA-Z0-9\-._~+/]+=*`), "Bearer ***"},
		},
	}
}

// RedactString redacts credentials from a string value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// RedactArgs redacts credentials from variadic slog arguments.
// Args are in the form: key1, value1, key2, value2, ...
func (r *Redactor) RedactArgs(args ...any) []any {
	if len(args) == 0 {
		return args
	}

	redacted := make([]any, len(args))
	copy(redacted, args)

	for i := 1; i < len(redacted); i += 2 {
		if key, ok := redacted[i-1].(string); ok && isSensitiveKey(key) {
			redacted[i] = "***"
			continue
		}
		if str, ok := redacted[i].(string); ok {
			redacted[i] = r.RedactString(str)
		}
	}

	return redacted
}

// isSensitiveKey reports whether a field name indicates credential data.
func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"secret", "token", "api_key", "apikey", "credential", "authorization", "password"} {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}
