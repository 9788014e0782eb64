// Package notepath parses user-supplied note references such as "work/meetings/standup"
// into a title and an optional parent directory, and derives the on-disk paths from them.
package notepath

import (
	"fmt"
	"strings"

	"github.com/starford/jot/internal/apperr"
)

// Ext is the extension of every note file.
const Ext = ".md"

// Path is a parsed note reference. It is purely syntactic: nothing is checked against disk.
type Path struct {
	title     string
	parent    string
	hasParent bool
}

// Parse trims leading and trailing slashes from input and splits it into parent and title.
// "." and ".." segments are kept as-is.
func Parse(input string) (Path, error) {
	trimmed := strings.Trim(input, "/")
	if trimmed == "" {
		return Path{}, fmt.Errorf("notepath: parse %q: %w", input, apperr.ErrEmptyPath)
	}

	i := strings.LastIndex(trimmed, "/")
	if i < 0 {
		return Path{title: trimmed}, nil
	}
	return Path{
		title:     trimmed[i+1:],
		parent:    trimmed[:i],
		hasParent: true,
	}, nil
}

// WithTitle returns a path in the same parent directory under a different title.
// The title is a single segment; use a move to change directories.
func (p Path) WithTitle(title string) (Path, error) {
	title = strings.Trim(title, "/")
	if title == "" {
		return Path{}, fmt.Errorf("notepath: retitle %q: %w", p.RelativePath(), apperr.ErrEmptyPath)
	}
	if strings.Contains(title, "/") {
		return Path{}, fmt.Errorf("notepath: retitle %q to %q: %w", p.RelativePath(), title, apperr.ErrInvalidPath)
	}
	if !p.hasParent {
		return Parse(title)
	}
	return Parse(p.parent + "/" + title)
}

func (p Path) Title() string { return p.title }

func (p Path) HasParent() bool { return p.hasParent }

// RelativeParent returns the parent directory relative to the notes root.
func (p Path) RelativeParent() (string, bool) {
	return p.parent, p.hasParent
}

// AbsoluteParent returns the parent directory joined onto root.
func (p Path) AbsoluteParent(root string) (string, bool) {
	if !p.hasParent {
		return "", false
	}
	return joinRoot(root, p.parent), true
}

// RelativePath is "parent/title", or just "title" without a parent.
func (p Path) RelativePath() string {
	if p.hasParent {
		return p.parent + "/" + p.title
	}
	return p.title
}

func (p Path) RelativePathWithExt() string {
	return p.RelativePath() + Ext
}

func (p Path) AbsolutePath(root string) string {
	return joinRoot(root, p.RelativePath())
}

func (p Path) AbsolutePathWithExt(root string) string {
	return p.AbsolutePath(root) + Ext
}

func (p Path) String() string {
	return p.RelativePath()
}

func joinRoot(root, rel string) string {
	return strings.TrimRight(root, "/") + "/" + rel
}
