// Package index keeps the embedded key-value index of note records: one badger
// entry per note, keyed by the note's identity.
package index

import (
	"github.com/starford/jot/internal/models"
	"github.com/starford/jot/internal/notepath"
)

// NoteIndex is the index as seen by the resolver and the operation layer.
// Consumers depend on this rather than *DB so tests can swap it out.
type NoteIndex interface {
	Insert(n models.Note) error
	Remove(id uint64) error
	Get(id uint64) (models.Note, bool, error)
	GetAll() ([]models.Note, error)
	FindByTitle(title string) ([]models.Note, error)
	FindByPath(p notepath.Path) ([]models.Note, error)
	FindByTags(tags []string) ([]models.Note, error)
	AddTags(id uint64, tags []string) error
	RemoveTags(id uint64, tags []string) error
	Close() error
}

// Verify *DB satisfies NoteIndex at compile time.
var _ NoteIndex = (*DB)(nil)
