package utils

import (
	"path/filepath"
	"strings"
)

// NormalizeExcludes prepares excluded-folder entries for comparison:
// whitespace trimmed, one trailing separator stripped, case-folded.
// Called once at startup; the result is read-only afterwards.
func NormalizeExcludes(folders []string) []string {
	normalized := make([]string, 0, len(folders))
	for _, folder := range folders {
		folder = strings.TrimSpace(folder)
		if folder == "" {
			continue
		}
		folder = strings.TrimSuffix(folder, string(filepath.Separator))
		normalized = append(normalized, strings.ToLower(folder))
	}
	return normalized
}

// IsExcluded reports whether dir lies under any of the normalized
// prefixes. The comparison is a plain case-insensitive prefix test:
// an exclusion of "/data/excluded1" also suppresses a sibling named
// "/data/excluded1extra". That over-matching is the documented
// exclusion policy, not an accident.
func IsExcluded(dir string, prefixes []string) bool {
	dir = strings.ToLower(strings.TrimSuffix(dir, string(filepath.Separator)))
	for _, prefix := range prefixes {
		if strings.HasPrefix(dir, prefix) {
			return true
		}
	}
	return false
}
