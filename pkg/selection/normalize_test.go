package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		prefix string
		want   string
	}{
		{"prefix stripped", "fastapi/fastapi/README.md", "fastapi/fastapi", "README.md"},
		{"prefix then duplicate", "fastapi/fastapi/fastapi/utils.py", "fastapi/fastapi", "fastapi/utils.py"},
		{"prefix repeated", "acme/app/acme/app/src/main.go", "acme/app", "src/main.go"},
		{"no prefix duplicate collapse", "pkg/pkg/pkg/x.go", "", "pkg/x.go"},
		{"empty segments dropped", "/src//main.go/", "", "src/main.go"},
		{"prefix with trailing slash", "acme/app/go.mod", "acme/app/", "go.mod"},
		{"untouched", "cmd/server/main.go", "acme/app", "cmd/server/main.go"},
		{"prefix alone is kept", "acme/app", "acme/app", "acme/app"},
		{"empty", "", "acme/app", ""},
		{"only slashes", "///", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.path, tt.prefix))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	prefixes := []string{"", "a/b", "a/a", "fastapi/fastapi", "x"}
	paths := []string{
		"a/b/a/a/b/x",
		"a/a/a/b/c",
		"/a/b/a/b/",
		"fastapi/fastapi/fastapi/fastapi/utils.py",
		"x/x/x/x",
		"b/b/a/b/c",
		"README.md",
		"",
	}
	for _, prefix := range prefixes {
		for _, p := range paths {
			once := Normalize(p, prefix)
			assert.Equal(t, once, Normalize(once, prefix), "path %q prefix %q", p, prefix)
		}
	}
}

func TestCleanSuggestions(t *testing.T) {
	raw := []string{
		"acme/app/README.md",
		"README.md",
		"src/src/main.go",
		"src/main.go",
		"acme/app/",
		"docs/index.md",
	}
	got := CleanSuggestions(raw, "acme/app")
	assert.Equal(t, []string{"README.md", "src/main.go", "acme/app", "docs/index.md"}, got)
}
