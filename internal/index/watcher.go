package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/jot/internal/models"
	"github.com/starford/jot/internal/notepath"
	"github.com/starford/jot/internal/storage"
)

// Event kinds passed to EventCallback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventRemoved = "removed"
)

// EventCallback is called after a watcher-driven index change with the note's relative path.
type EventCallback func(kind string, path string)

// Watch keeps the index in step with changes made to the notes root by other
// programs until ctx is cancelled:
//   - a new note file gets a record (tags recovered from its content)
//   - a written note file has its modified time bumped
//   - a removed or renamed-away file loses its record
//
// Renames arrive as Rename on the old name plus Create on the new one, so a
// debounced Rebuild pass follows every rename or removal to catch anything
// missed. Records dropped by a removal are held until that pass runs: a file
// that reappears at the same path in the meantime (editors that save by
// moving the original aside) gets its tags and created time back.
func Watch(ctx context.Context, db NoteIndex, store storage.Provider, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := store.Root()
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	notify := func(kind, path string) {
		if cb != nil {
			cb(kind, path)
		}
	}

	// removed records by relative path, kept until the next reconcile
	recent := make(map[string]models.Note)

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time
	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			if _, err := Rebuild(db, store, logger); err != nil {
				logger.Warn("watcher: reconcile failed", slog.String("error", err.Error()))
			}
			clear(recent)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if strings.HasPrefix(filepath.Base(ev.Name), ".") {
						continue
					}
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					indexNewDir(db, store, ev.Name, recent, logger, notify)
					continue
				}
			}

			p, ok := store.PathOf(ev.Name)
			if !ok {
				continue
			}
			rel := p.RelativePath()

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				kind, err := indexPath(db, store, p, ev.Op&fsnotify.Create != 0, recent)
				if err != nil {
					logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", err.Error()))
					continue
				}
				if kind != "" {
					logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", kind))
					notify(kind, rel)
				}

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				scheduleReconcile()
				id := models.IDOf(p, root)
				existing, found, err := db.Get(id)
				if err != nil {
					logger.Warn("watcher: lookup failed", slog.String("path", rel), slog.String("error", err.Error()))
					continue
				}
				if !found {
					continue
				}
				if err := db.Remove(id); err != nil {
					logger.Warn("watcher: remove failed", slog.String("path", rel), slog.String("error", err.Error()))
					continue
				}
				recent[rel] = existing
				logger.Debug("watcher: removed", slog.String("path", rel))
				notify(EventRemoved, rel)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// indexPath records a created or written file. It returns the event kind, or
// "" when nothing changed (a Create for a file jot itself already indexed).
// A record in recent for the same relative path donates its tags and created
// time to the new one.
func indexPath(db NoteIndex, store storage.Provider, p notepath.Path, created bool, recent map[string]models.Note) (string, error) {
	info, err := os.Stat(p.AbsolutePathWithExt(store.Root()))
	if err != nil {
		return "", err
	}
	existing, found, err := db.Get(models.IDOf(p, store.Root()))
	if err != nil {
		return "", err
	}
	if found {
		if created {
			return "", nil
		}
		existing.Touch(info.ModTime())
		return EventUpdated, db.Insert(existing)
	}

	n, err := recordFor(store, storage.FileInfo{Path: p, ModTime: info.ModTime()})
	if err != nil {
		return "", err
	}
	if old, ok := recent[n.RelativePath]; ok {
		n.Created = old.Created
		n.AddTags(old.Tags.Sorted())
		delete(recent, n.RelativePath)
	}
	return EventCreated, db.Insert(n)
}

// indexNewDir indexes note files already inside a directory that just appeared.
func indexNewDir(db NoteIndex, store storage.Provider, dir string, recent map[string]models.Note, logger *slog.Logger, notify EventCallback) {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("watcher: walk new dir failed", slog.String("path", path), slog.String("error", err.Error()))
			return nil
		}
		if d.IsDir() {
			return nil
		}
		p, ok := store.PathOf(path)
		if !ok {
			return nil
		}
		kind, idxErr := indexPath(db, store, p, true, recent)
		if idxErr != nil {
			logger.Warn("watcher: index failed", slog.String("path", p.RelativePath()), slog.String("error", idxErr.Error()))
			return nil
		}
		if kind != "" {
			logger.Debug("watcher: indexed from new dir", slog.String("path", p.RelativePath()))
			notify(kind, p.RelativePath())
		}
		return nil
	})
	if err != nil {
		logger.Warn("watcher: walk new dir failed", slog.String("path", dir), slog.String("error", err.Error()))
	}
}

// addDirsRecursive adds root and all its visible subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
