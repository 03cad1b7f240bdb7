package selection

import (
	"strings"

	"github.com/saint0x/repoexplain/pkg/tree"
)

// Normalize repairs common mistakes in LLM-suggested paths. Leading copies
// of repoPrefix (the "owner/repo" root label) are stripped and a duplicated
// leading segment is collapsed, so "fastapi/fastapi/x" becomes "fastapi/x".
// Both rules are applied until neither changes the path, which makes
// Normalize idempotent.
func Normalize(path, repoPrefix string) string {
	parts := tree.Segments(path)
	prefix := tree.Segments(repoPrefix)

	for {
		n := len(parts)
		for len(prefix) > 0 && len(parts) > len(prefix) && hasPrefix(parts, prefix) {
			parts = parts[len(prefix):]
		}
		for len(parts) > 1 && parts[0] == parts[1] {
			parts = parts[1:]
		}
		if len(parts) == n {
			break
		}
	}
	return strings.Join(parts, "/")
}

func hasPrefix(parts, prefix []string) bool {
	for i, p := range prefix {
		if parts[i] != p {
			return false
		}
	}
	return true
}

// CleanSuggestions normalizes raw paths, drops the ones that normalize to
// nothing and removes duplicates keeping the first occurrence.
func CleanSuggestions(raw []string, repoPrefix string) []string {
	cleaned := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, p := range raw {
		norm := Normalize(p, repoPrefix)
		if norm == "" {
			continue
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		cleaned = append(cleaned, norm)
	}
	return cleaned
}
