// Package chat validates the Origin header of incoming connection attempts
// against the configured allow-list.
package chat

import "strings"

// NormalizeOrigin trims surrounding whitespace and strips leading and
// trailing commas from a raw Origin header value. Some embedded clients send
// the header with stray commas attached.
func NormalizeOrigin(origin string) string {
	trimmed := strings.TrimSpace(origin)
	trimmed = strings.TrimLeft(trimmed, ",")
	trimmed = strings.TrimRight(trimmed, ",")
	return strings.TrimSpace(trimmed)
}

// OriginPolicy is an exact-match allow-list for connection origins.
type OriginPolicy struct {
	allowed map[string]struct{}
}

// NewOriginPolicy builds a policy from the configured origin strings. Entries
// are normalized the same way incoming headers are; blank entries are
// dropped.
func NewOriginPolicy(origins []string) *OriginPolicy {
	allowed := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		normalized := NormalizeOrigin(origin)
		if normalized == "" {
			continue
		}
		allowed[normalized] = struct{}{}
	}
	return &OriginPolicy{allowed: allowed}
}

// Allowed reports whether the raw Origin header value, after normalization,
// is on the allow-list. An empty origin is never allowed.
func (p *OriginPolicy) Allowed(origin string) bool {
	normalized := NormalizeOrigin(origin)
	if normalized == "" {
		return false
	}
	_, ok := p.allowed[normalized]
	return ok
}
