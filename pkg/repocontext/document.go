package repocontext

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	treeHeader      = "Directory structure:\n"
	emptyRepoNotice = "[empty repository: no commits to explain]"
	noFilesNotice   = "No key files found to fetch."
	skippedNotice   = "\n\n[Remaining files skipped: context size limit reached]"
)

var separator = strings.Repeat("=", 48)

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// truncateRunes returns the first n runes of s.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// treeBudget is the largest rendered tree that still leaves room for the
// header and the skipped-files notice inside the total budget.
func (a *Assembler) treeBudget() int {
	limit := a.limits.MaxTreeChars
	room := a.limits.MaxTotalChars - runeLen(treeHeader) - runeLen(skippedNotice)
	if room < limit {
		limit = room
	}
	if limit < 0 {
		limit = 0
	}
	return limit
}

// capTree cuts rendered to at most limit runes, notice included.
func capTree(rendered string, limit int) string {
	if runeLen(rendered) <= limit {
		return rendered
	}
	notice := fmt.Sprintf("[Directory tree truncated to %d characters]\n", limit)
	keep := limit - runeLen(notice)
	if keep <= 0 {
		return truncateRunes(notice, limit)
	}
	return notice + truncateRunes(rendered, keep)
}

func fileSection(path, content string, maxChars int) string {
	if maxChars > 0 && runeLen(content) > maxChars {
		content = truncateRunes(content, maxChars) +
			fmt.Sprintf("\n... [truncated: file exceeds %d characters]", maxChars)
	}

	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(separator)
	b.WriteString("\nFILE: ")
	b.WriteString(path)
	b.WriteString("\n")
	b.WriteString(separator)
	b.WriteString("\n")
	b.WriteString(content)
	return b.String()
}

// render lays out the tree and every fetched file in order. A section is
// added only if it fits whole; the first one that does not fit ends the
// document with the skipped notice. Every section except the last leaves room
// for that notice, so the result never exceeds MaxTotalChars.
func (a *Assembler) render(rendered string, files []FetchResult) (string, bool) {
	var fetched []FetchResult
	for _, f := range files {
		if f.OK {
			fetched = append(fetched, f)
		}
	}

	var doc strings.Builder
	doc.WriteString(treeHeader)
	doc.WriteString(rendered)
	total := runeLen(treeHeader) + runeLen(rendered)
	reserve := runeLen(skippedNotice)

	for i, f := range fetched {
		section := fileSection(f.Path, f.Content, a.limits.MaxFileChars)
		size := runeLen(section)

		need := size + reserve
		if i == len(fetched)-1 {
			need = size
		}
		if total+need > a.limits.MaxTotalChars {
			doc.WriteString(skippedNotice)
			return doc.String(), true
		}
		doc.WriteString(section)
		total += size
	}
	return doc.String(), false
}
