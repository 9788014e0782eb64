package index

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/starford/jot/internal/models"
	"github.com/starford/jot/internal/notepath"
)

// Insert writes n under n.ID(), replacing whatever was stored there.
func (db *DB) Insert(n models.Note) error {
	value, err := n.Marshal()
	if err != nil {
		return fmt.Errorf("index: encode %s: %w", n.RelativePath, err)
	}
	err = db.kv.Update(func(txn *badger.Txn) error {
		return txn.Set(models.Key(n.ID()), value)
	})
	if err != nil {
		return fmt.Errorf("index: insert %s: %w", n.RelativePath, err)
	}
	return nil
}

// Remove deletes the record at id. Removing an absent id is not an error.
func (db *DB) Remove(id uint64) error {
	err := db.kv.Update(func(txn *badger.Txn) error {
		return txn.Delete(models.Key(id))
	})
	if err != nil {
		return fmt.Errorf("index: remove %016x: %w", id, err)
	}
	return nil
}

// Get looks up one record. The bool is false when id is not indexed.
func (db *DB) Get(id uint64) (models.Note, bool, error) {
	var (
		n     models.Note
		found bool
	)
	err := db.kv.View(func(txn *badger.Txn) error {
		item, err := txn.Get(models.Key(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			decoded, err := models.Unmarshal(v)
			if err != nil {
				return err
			}
			n, found = decoded, true
			return nil
		})
	})
	if err != nil {
		return models.Note{}, false, fmt.Errorf("index: get %016x: %w", id, err)
	}
	return n, found, nil
}

// GetAll returns every record in storage order, which is not meaningful to callers.
func (db *DB) GetAll() ([]models.Note, error) {
	return db.filter(func(models.Note) bool { return true })
}

// FindByTitle matches the final path segment exactly, across all parent directories.
func (db *DB) FindByTitle(title string) ([]models.Note, error) {
	return db.filter(func(n models.Note) bool { return n.Title == title })
}

// FindByPath matches the full relative path exactly.
func (db *DB) FindByPath(p notepath.Path) ([]models.Note, error) {
	rel := p.RelativePath()
	return db.filter(func(n models.Note) bool { return n.RelativePath == rel })
}

// FindByTags returns notes carrying any of tags.
func (db *DB) FindByTags(tags []string) ([]models.Note, error) {
	want := models.NewTagSet(tags...)
	return db.filter(func(n models.Note) bool { return n.Tags.HasAny(want) })
}

// AddTags merges tags into the record at id. A missing record is left alone.
func (db *DB) AddTags(id uint64, tags []string) error {
	return db.mutate(id, func(n *models.Note) { n.AddTags(tags) })
}

// RemoveTags drops tags from the record at id. A missing record is left alone.
func (db *DB) RemoveTags(id uint64, tags []string) error {
	return db.mutate(id, func(n *models.Note) { n.RemoveTags(tags) })
}

func (db *DB) mutate(id uint64, fn func(*models.Note)) error {
	n, ok, err := db.Get(id)
	if err != nil || !ok {
		return err
	}
	fn(&n)
	return db.Insert(n)
}

// filter is the full scan every query is built on. Personal note counts keep it cheap.
func (db *DB) filter(keep func(models.Note) bool) ([]models.Note, error) {
	var out []models.Note
	err := db.kv.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				n, err := models.Unmarshal(v)
				if err != nil {
					return fmt.Errorf("record %x: %w", item.Key(), err)
				}
				if keep(n) {
					out = append(out, n)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("index: scan: %w", err)
	}
	return out, nil
}
