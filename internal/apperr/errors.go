// Package apperr holds the sentinel errors shared across jot's layers.
package apperr

import "errors"

var (
	ErrEmptyPath       = errors.New("empty note path")
	ErrInvalidPath     = errors.New("invalid note path")
	ErrInvalidSearch   = errors.New("invalid search arguments")
	ErrNoMatchingNotes = errors.New("no matching notes")
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrIndexLocked     = errors.New("index is locked by another process")

	// ErrCancelled reports that the user backed out of an interactive prompt.
	// It is a clean exit, not a failure.
	ErrCancelled = errors.New("cancelled")
)

// IsGraceful reports whether err ends a command without a failure status.
func IsGraceful(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, ErrNoMatchingNotes)
}
