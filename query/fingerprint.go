package query

import (
	"fmt"

	"github.com/IBM/firepit/internal/canonical"
)

// fingerprintDomain separates query fingerprints from any other hashes
// derived from the same canonical encoding. The version suffix allows the
// scheme to change without colliding with old keys.
const fingerprintDomain = "firepit/query/v1"

// Fingerprint returns a stable hex key for the rendered form of the query.
//
// The key is a domain-separated SHA-256 over the canonical JSON of the
// placeholder, the rendered SQL text, and the bound values. Render is
// deterministic, so equal queries rendered with the same placeholder always
// fingerprint identically; upstream caches can key prepared statements or
// result sets on it.
//
// Bound values outside the canonical encoding's supported types make the
// fingerprint fail rather than degrade silently.
func (q *Query) Fingerprint(placeholder string) (string, error) {
	sql, values, err := q.Render(placeholder)
	if err != nil {
		return "", err
	}
	if values == nil {
		values = []any{}
	}
	payload := map[string]any{
		"placeholder": placeholder,
		"sql":         sql,
		"values":      values,
	}
	data, err := canonical.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return canonical.Hash(fingerprintDomain, data), nil
}
