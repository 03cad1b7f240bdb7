package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePaths(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "fenced with bullets and comments",
			text: "```\nREADME.md\n- src/main.py\n\n# comment\n```",
			want: []string{"README.md", "src/main.py"},
		},
		{
			name: "fence with language tag",
			text: "```text\ngo.mod\n* cmd/app/main.go\n```",
			want: []string{"go.mod", "cmd/app/main.go"},
		},
		{
			name: "prose and markup dropped",
			text: "Here are the files you should read:\n<files>\npkg/server/server.go\n</files>\n-\tinternal/db.go",
			want: []string{"pkg/server/server.go", "internal/db.go"},
		},
		{
			name: "dash without space is a path",
			text: "-weird-name.txt",
			want: []string{"-weird-name.txt"},
		},
		{
			name: "duplicates kept",
			text: "a.go\na.go",
			want: []string{"a.go", "a.go"},
		},
		{
			name: "stray fence mid text",
			text: "Files:\n```\nmain.go\n```",
			want: []string{"Files:", "main.go"},
		},
		{name: "empty", text: "", want: nil},
		{name: "whitespace only", text: "  \n\t\n", want: nil},
		{name: "fence only", text: "```", want: nil},
		{name: "bare bullets", text: "-\n* \n", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePaths(tt.text))
		})
	}
}
