package graph

import (
	"strings"
)

// Whitelist is the set of group-id prefixes owned by the organization.
type Whitelist struct {
	prefixes map[string]struct{}
}

// NewWhitelist creates a Whitelist; blank prefixes are ignored.
func NewWhitelist(prefixes ...string) Whitelist {
	w := Whitelist{prefixes: make(map[string]struct{}, len(prefixes))}
	for _, prefix := range prefixes {
		prefix = strings.Trim(strings.TrimSpace(prefix), ".")
		if prefix != "" {
			w.prefixes[prefix] = struct{}{}
		}
	}
	return w
}

// Matches reports whether any dot-separated, left-anchored prefix of groupID
// is whitelisted, from the first segment up to the whole group id.
// With {com} every com.* group matches.
func (w Whitelist) Matches(groupID string) bool {
	segments := strings.Split(groupID, ".")
	for depth := 1; depth <= len(segments); depth++ {
		if segments[depth-1] == "" {
			return false
		}
		if _, ok := w.prefixes[strings.Join(segments[:depth], ".")]; ok {
			return true
		}
	}
	return false
}

// Prefixes returns the whitelisted prefixes in no particular order.
func (w Whitelist) Prefixes() []string {
	prefixes := make([]string, 0, len(w.prefixes))
	for prefix := range w.prefixes {
		prefixes = append(prefixes, prefix)
	}
	return prefixes
}
