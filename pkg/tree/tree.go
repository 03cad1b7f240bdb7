// Package tree renders GitHub's flat recursive tree listing as an indented
// directory listing using box-drawing connectors.
package tree

import (
	"sort"
	"strings"
)

// Kind is the type of a tree entry as reported by the provider.
type Kind string

const (
	File      Kind = "blob"
	Directory Kind = "tree"
)

// Unbounded renders every level of the tree.
const Unbounded = -1

// EmptyAnnotation is shown under the root label when there is nothing to render.
const EmptyAnnotation = "(empty or unavailable)"

const (
	branch     = "├── "
	lastBranch = "└── "
	pipe       = "│   "
	space      = "    "
)

// Entry is one row of a flat recursive listing. Path is slash-separated.
type Entry struct {
	Path string
	Kind Kind
}

type node struct {
	dir      bool
	children map[string]*node
}

func (n *node) child(name string) *node {
	if n.children == nil {
		n.children = make(map[string]*node)
	}
	c, ok := n.children[name]
	if !ok {
		c = &node{}
		n.children[name] = c
	}
	return c
}

// build groups entries by path segment. Intermediate segments are always
// directories; a segment seen as both file and directory stays a directory.
func build(entries []Entry) *node {
	root := &node{dir: true}
	for _, e := range entries {
		segs := Segments(e.Path)
		cur := root
		for i, seg := range segs {
			c := cur.child(seg)
			if i < len(segs)-1 || e.Kind == Directory {
				c.dir = true
			}
			cur = c
		}
	}
	return root
}

// Format renders entries under rootLabel. maxDepth 0 renders only the root
// line; Unbounded (or any negative value) renders the whole tree. Depth 1 is
// the root's direct children. Siblings are sorted by name and directories
// carry a trailing slash.
func Format(entries []Entry, rootLabel string, maxDepth int) string {
	rootLine := strings.TrimRight(rootLabel, "/") + "/"
	root := build(entries)
	if len(root.children) == 0 {
		return rootLine + "\n" + space + EmptyAnnotation
	}

	lines := []string{rootLine}
	render(root, "", 1, maxDepth, &lines)
	return strings.Join(lines, "\n")
}

func render(n *node, prefix string, depth, maxDepth int, lines *[]string) {
	if maxDepth >= 0 && depth > maxDepth {
		return
	}

	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		c := n.children[name]
		last := i == len(names)-1

		connector, indent := branch, pipe
		if last {
			connector, indent = lastBranch, space
		}

		label := name
		if c.dir {
			label += "/"
		}
		*lines = append(*lines, prefix+connector+label)

		if c.dir {
			render(c, prefix+indent, depth+1, maxDepth, lines)
		}
	}
}

// Segments splits a slash-separated path and drops empty segments.
func Segments(path string) []string {
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
