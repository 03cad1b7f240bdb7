package selection

import (
	"strings"
	"unicode"
)

const fence = "```"

// ParsePaths extracts candidate file paths from free-form model output.
// A wrapping code fence is removed, blank lines and lines starting with '#',
// '<' or a fence are skipped, "- " and "* " bullets are stripped, and any
// remaining line that contains whitespace is treated as prose and dropped.
// Duplicates are left for the caller.
func ParsePaths(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if strings.HasPrefix(text, fence) {
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[i+1:]
		} else {
			text = ""
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), fence)
	}

	var paths []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "<") || strings.HasPrefix(line, fence) {
			continue
		}
		line = stripBullet(line)
		if line == "" || strings.IndexFunc(line, unicode.IsSpace) >= 0 {
			continue
		}
		paths = append(paths, line)
	}
	return paths
}

func stripBullet(line string) string {
	if line == "-" || line == "*" {
		return ""
	}
	if len(line) < 2 || (line[0] != '-' && line[0] != '*') {
		return line
	}
	if !unicode.IsSpace(rune(line[1])) {
		return line
	}
	return strings.TrimSpace(line[1:])
}
