// Package selection decides which repository files are worth fetching.
package selection

// DefaultMaxFiles bounds the merged fetch list.
const DefaultMaxFiles = 25

// ImportantFiles are fetched whenever they exist at the repository root,
// in this priority order.
var ImportantFiles = []string{
	"README.md",
	"package.json",
	"requirements.txt",
	"go.mod",
	"Cargo.toml",
	"pom.xml",
	"build.gradle",
	"setup.py",
	"pyproject.toml",
	".env.example",
	"Dockerfile",
	"docker-compose.yml",
	"Makefile",
	"LICENSE",
	"CONTRIBUTING.md",
	"package-lock.json",
	"yarn.lock",
	"Pipfile",
}

// Policy merges the static priority list with model suggestions.
type Policy struct {
	Important []string
	MaxFiles  int
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{Important: ImportantFiles, MaxFiles: DefaultMaxFiles}
}

// Select returns the important files present in rootFiles, followed by the
// suggested paths, deduplicated by first occurrence and capped at MaxFiles.
// An empty result means there is nothing to fetch.
func (p Policy) Select(rootFiles, suggested []string) []string {
	limit := p.MaxFiles
	if limit <= 0 {
		limit = DefaultMaxFiles
	}

	present := make(map[string]struct{}, len(rootFiles))
	for _, f := range rootFiles {
		present[f] = struct{}{}
	}

	candidates := make([]string, 0, len(p.Important)+len(suggested))
	for _, f := range p.Important {
		if _, ok := present[f]; ok {
			candidates = append(candidates, f)
		}
	}
	candidates = append(candidates, suggested...)

	selected := make([]string, 0, limit)
	seen := make(map[string]struct{}, len(candidates))
	for _, f := range candidates {
		if len(selected) == limit {
			break
		}
		if f == "" {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		selected = append(selected, f)
	}
	return selected
}
