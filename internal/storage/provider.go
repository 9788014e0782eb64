// Package storage owns the note files under the notes root.
package storage

import (
	"time"

	"github.com/starford/jot/internal/notepath"
)

// FileInfo describes one note file found on disk.
type FileInfo struct {
	Path    notepath.Path
	ModTime time.Time
}

// Provider is the file-side half of every note operation.
type Provider interface {
	// Root returns the absolute notes root.
	Root() string
	// CreateFile creates an empty note file, creating parent directories as needed.
	// It fails with apperr.ErrAlreadyExists rather than truncating.
	CreateFile(p notepath.Path) error
	// DeleteFile removes a note file and prunes its parent directory if that left it empty.
	DeleteFile(p notepath.Path) error
	// RenameFile relocates a note file within the same parent directory.
	RenameFile(oldPath, newPath notepath.Path) error
	// MoveFile relocates a note file anywhere under the root.
	MoveFile(oldPath, newPath notepath.Path) error
	// Exists reports whether the note file is present.
	Exists(p notepath.Path) bool
	// Read returns the note's content.
	Read(p notepath.Path) ([]byte, error)
	// List walks the root and returns every note file.
	List() ([]FileInfo, error)
	// PathOf maps an absolute file path back to a note path.
	PathOf(abs string) (notepath.Path, bool)
}
