package index

import (
	"fmt"
	"log/slog"

	"github.com/starford/jot/internal/models"
	"github.com/starford/jot/internal/parser"
	"github.com/starford/jot/internal/storage"
)

// RebuildReport summarises one Rebuild pass.
type RebuildReport struct {
	Added   int
	Removed int
	Kept    int
}

// Rebuild walks the notes root and brings the index back in line with it:
//   - files without a record are indexed (tags recovered from the file itself)
//   - records without a file are removed
//
// A file that lost its record because the root moved inherits tags and the
// created time of the stale record with the same relative path.
func Rebuild(db NoteIndex, store storage.Provider, logger *slog.Logger) (RebuildReport, error) {
	var report RebuildReport

	files, err := store.List()
	if err != nil {
		return report, err
	}
	records, err := db.GetAll()
	if err != nil {
		return report, err
	}

	indexed := make(map[uint64]models.Note, len(records))
	for _, n := range records {
		indexed[n.ID()] = n
	}

	onDisk := make(map[uint64]struct{}, len(files))
	var missing []storage.FileInfo
	for _, f := range files {
		n := models.NewAt(f.Path, store.Root(), nil, f.ModTime)
		onDisk[n.ID()] = struct{}{}
		if _, ok := indexed[n.ID()]; ok {
			report.Kept++
			continue
		}
		missing = append(missing, f)
	}

	stale := make(map[string]models.Note)
	for id, n := range indexed {
		if _, ok := onDisk[id]; ok {
			continue
		}
		if err := db.Remove(id); err != nil {
			return report, err
		}
		stale[n.RelativePath] = n
		report.Removed++
		logger.Debug("rebuild: removed stale", slog.String("path", n.RelativePath))
	}

	for _, f := range missing {
		n, err := recordFor(store, f)
		if err != nil {
			logger.Warn("rebuild: read failed", slog.String("path", f.Path.RelativePath()), slog.String("error", err.Error()))
			continue
		}
		if old, ok := stale[n.RelativePath]; ok {
			n.Created = old.Created
			n.AddTags(old.Tags.Sorted())
		}
		if err := db.Insert(n); err != nil {
			return report, err
		}
		report.Added++
		logger.Debug("rebuild: indexed", slog.String("path", n.RelativePath))
	}

	logger.Info("rebuild: done",
		slog.Int("added", report.Added),
		slog.Int("removed", report.Removed),
		slog.Int("kept", report.Kept))
	return report, nil
}

// recordFor builds a fresh record for a file found on disk.
func recordFor(store storage.Provider, f storage.FileInfo) (models.Note, error) {
	data, err := store.Read(f.Path)
	if err != nil {
		return models.Note{}, fmt.Errorf("index: read %s: %w", f.Path, err)
	}
	return models.NewAt(f.Path, store.Root(), parser.Tags(data), f.ModTime), nil
}
