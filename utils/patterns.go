package utils

import "path/filepath"

// NameMatcher matches file names against a single glob pattern. The
// pattern applies to the base name only, never the full path.
type NameMatcher struct {
	pattern string
}

func NewNameMatcher(pattern string) *NameMatcher {
	if pattern == "" {
		pattern = "*"
	}
	return &NameMatcher{pattern: pattern}
}

func (m *NameMatcher) Match(path string) bool {
	if m == nil || m.pattern == "*" {
		return true
	}
	matched, err := filepath.Match(m.pattern, filepath.Base(path))
	return err == nil && matched
}
