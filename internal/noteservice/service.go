// Package noteservice implements jot's commands on top of the file store and
// the index. Every operation touches the file first and the index second.
package noteservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/starford/jot/internal/apperr"
	"github.com/starford/jot/internal/checksum"
	"github.com/starford/jot/internal/index"
	"github.com/starford/jot/internal/models"
	"github.com/starford/jot/internal/notepath"
	"github.com/starford/jot/internal/resolver"
	"github.com/starford/jot/internal/storage"
)

const promptPick = "Select a note"

// Opener opens a note file for the user and returns once they are done with it.
type Opener interface {
	Open(ctx context.Context, path string) error
}

// Service coordinates the file store, the index and the interactive collaborators.
type Service struct {
	store    storage.Provider
	idx      index.NoteIndex
	prompter resolver.Prompter
	editor   Opener
	resolver *resolver.Resolver
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a note service.
func New(store storage.Provider, idx index.NoteIndex, prompter resolver.Prompter, editor Opener, logger *slog.Logger) *Service {
	s := &Service{
		store:    store,
		idx:      idx,
		prompter: prompter,
		editor:   editor,
		logger:   logger,
		now:      time.Now,
	}
	s.resolver = resolver.New(idx, prompter, s.createAt)
	return s
}

// Create makes an empty note file at input and indexes it with tags.
func (s *Service) Create(ctx context.Context, input string, tags []string) (models.Note, error) {
	p, err := notepath.Parse(input)
	if err != nil {
		return models.Note{}, err
	}
	return s.createAt(ctx, p, tags)
}

func (s *Service) createAt(_ context.Context, p notepath.Path, tags []string) (models.Note, error) {
	if err := s.store.CreateFile(p); err != nil {
		return models.Note{}, err
	}
	n := models.NewAt(p, s.store.Root(), tags, s.now())
	if err := s.idx.Insert(n); err != nil {
		s.logger.Error("note file created but not indexed",
			slog.String("path", n.AbsolutePath),
			slog.String("error", err.Error()))
		return models.Note{}, err
	}
	s.logger.Debug("created note", slog.String("path", n.RelativePath))
	return n, nil
}

// Edit resolves input (offering to create it), opens it in the editor and
// bumps the modified time if the content changed. It reports whether it did.
func (s *Service) Edit(ctx context.Context, input string) (bool, error) {
	n, err := s.resolver.Resolve(ctx, input, true)
	if err != nil {
		return false, err
	}
	return s.editNote(ctx, n)
}

// EditPick lets the user fuzzy-pick any indexed note and edits it.
func (s *Service) EditPick(ctx context.Context) (bool, error) {
	all, err := s.idx.GetAll()
	if err != nil {
		return false, err
	}
	if len(all) == 0 {
		return false, apperr.ErrNoMatchingNotes
	}
	sortByPath(all)

	options := make([]string, len(all))
	for i, n := range all {
		options[i] = n.RelativePath
	}
	choice, err := s.prompter.FuzzySelect(promptPick, options)
	if err != nil {
		return false, err
	}
	if choice < 0 || choice >= len(all) {
		return false, apperr.ErrCancelled
	}
	return s.editNote(ctx, all[choice])
}

func (s *Service) editNote(ctx context.Context, n models.Note) (bool, error) {
	before, err := checksum.File(n.AbsolutePath)
	if err != nil {
		return false, fmt.Errorf("edit %s: %w", n.RelativePath, err)
	}
	// A failing editor may still have saved, so the content decides.
	editErr := s.editor.Open(ctx, n.AbsolutePath)
	after, err := checksum.File(n.AbsolutePath)
	if err != nil {
		return false, errors.Join(editErr, fmt.Errorf("edit %s: %w", n.RelativePath, err))
	}
	if before == after {
		return false, editErr
	}

	n.Touch(s.now())
	if err := s.idx.Insert(n); err != nil {
		return false, errors.Join(editErr, err)
	}
	s.logger.Debug("note modified", slog.String("path", n.RelativePath))
	return true, editErr
}

// Delete removes the resolved note's file and then its index record.
func (s *Service) Delete(ctx context.Context, input string) (models.Note, error) {
	n, err := s.resolver.Resolve(ctx, input, false)
	if err != nil {
		return models.Note{}, err
	}
	p, err := n.Path()
	if err != nil {
		return models.Note{}, err
	}
	if err := s.store.DeleteFile(p); err != nil {
		return models.Note{}, err
	}
	if err := s.idx.Remove(n.ID()); err != nil {
		s.logger.Error("note file deleted but record kept",
			slog.String("path", n.AbsolutePath),
			slog.String("error", err.Error()))
		return models.Note{}, err
	}
	return n, nil
}

// AddTags tags the resolved note, offering to create it if nothing matches.
func (s *Service) AddTags(ctx context.Context, input string, tags []string) (models.Note, error) {
	n, err := s.resolver.Resolve(ctx, input, true)
	if err != nil {
		return models.Note{}, err
	}
	if err := s.idx.AddTags(n.ID(), tags); err != nil {
		return models.Note{}, err
	}
	n.AddTags(tags)
	return n, nil
}

// RemoveTags untags the resolved note.
func (s *Service) RemoveTags(ctx context.Context, input string, tags []string) (models.Note, error) {
	n, err := s.resolver.Resolve(ctx, input, false)
	if err != nil {
		return models.Note{}, err
	}
	if err := s.idx.RemoveTags(n.ID(), tags); err != nil {
		return models.Note{}, err
	}
	n.RemoveTags(tags)
	return n, nil
}

// Rename gives the resolved note a new title in the same directory.
func (s *Service) Rename(ctx context.Context, input, newTitle string) (models.Note, error) {
	n, err := s.resolver.Resolve(ctx, input, false)
	if err != nil {
		return models.Note{}, err
	}
	oldPath, err := n.Path()
	if err != nil {
		return models.Note{}, err
	}
	newPath, err := oldPath.WithTitle(newTitle)
	if err != nil {
		return models.Note{}, err
	}
	return s.relocate(n, oldPath, newPath, s.store.RenameFile)
}

// Move relocates the resolved note to dest, taken verbatim as the new relative path.
func (s *Service) Move(ctx context.Context, input, dest string) (models.Note, error) {
	n, err := s.resolver.Resolve(ctx, input, false)
	if err != nil {
		return models.Note{}, err
	}
	oldPath, err := n.Path()
	if err != nil {
		return models.Note{}, err
	}
	newPath, err := notepath.Parse(dest)
	if err != nil {
		return models.Note{}, err
	}
	return s.relocate(n, oldPath, newPath, s.store.MoveFile)
}

// relocate moves the file, indexes the record under its new identity and
// only then drops the old identity. If the index step fails the file has
// already moved; the residual state is logged so Rebuild can be pointed at it.
func (s *Service) relocate(n models.Note, oldPath, newPath notepath.Path, move func(a, b notepath.Path) error) (models.Note, error) {
	if s.store.Exists(newPath) {
		return models.Note{}, fmt.Errorf("%s: %w", newPath, apperr.ErrAlreadyExists)
	}
	if err := move(oldPath, newPath); err != nil {
		return models.Note{}, err
	}

	moved := n.Relocate(newPath, s.store.Root(), s.now())
	if err := s.idx.Insert(moved); err != nil {
		s.logResidual(n, moved, err)
		return models.Note{}, err
	}
	if err := s.idx.Remove(n.ID()); err != nil {
		s.logResidual(n, moved, err)
		return models.Note{}, err
	}
	s.logger.Debug("relocated note",
		slog.String("from", n.RelativePath),
		slog.String("to", moved.RelativePath))
	return moved, nil
}

func (s *Service) logResidual(from, to models.Note, err error) {
	s.logger.Error("note file moved but index not updated; run rebuild",
		slog.String("from", from.AbsolutePath),
		slog.String("to", to.AbsolutePath),
		slog.String("error", err.Error()))
}

// FindQuery selects notes. Exactly one of Path, Tags or All must be set.
type FindQuery struct {
	Path string
	Tags []string
	All  bool
}

func (q FindQuery) valid() bool {
	set := 0
	if q.Path != "" {
		set++
	}
	if len(q.Tags) > 0 {
		set++
	}
	if q.All {
		set++
	}
	return set == 1
}

// Find lists matching notes. A path with a parent matches exactly; a bare
// title matches in any directory. Tags match if the note has any of them.
func (s *Service) Find(_ context.Context, q FindQuery) ([]models.Note, error) {
	if !q.valid() {
		return nil, apperr.ErrInvalidSearch
	}
	switch {
	case q.All:
		return s.idx.GetAll()
	case len(q.Tags) > 0:
		return s.idx.FindByTags(q.Tags)
	}
	p, err := notepath.Parse(q.Path)
	if err != nil {
		return nil, err
	}
	if p.HasParent() {
		return s.idx.FindByPath(p)
	}
	return s.idx.FindByTitle(p.Title())
}

// Read returns the content of the note at the exact relative path rel.
func (s *Service) Read(_ context.Context, rel string) (models.Note, []byte, error) {
	p, err := notepath.Parse(rel)
	if err != nil {
		return models.Note{}, nil, err
	}
	n, ok, err := s.idx.Get(models.IDOf(p, s.store.Root()))
	if err != nil {
		return models.Note{}, nil, err
	}
	if !ok {
		return models.Note{}, nil, fmt.Errorf("%s: %w", p, apperr.ErrNotFound)
	}
	data, err := s.store.Read(p)
	if err != nil {
		return models.Note{}, nil, err
	}
	return n, data, nil
}

// Export writes every indexed note as an indented JSON array sorted by relative path.
func (s *Service) Export(_ context.Context, w io.Writer) error {
	all, err := s.idx.GetAll()
	if err != nil {
		return err
	}
	sortByPath(all)
	if all == nil {
		all = []models.Note{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(all); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// Rebuild reconciles the index with the files under the root.
func (s *Service) Rebuild(_ context.Context) (index.RebuildReport, error) {
	return index.Rebuild(s.idx, s.store, s.logger)
}

// Watch keeps the index in step with the root until ctx is cancelled.
func (s *Service) Watch(ctx context.Context, cb index.EventCallback) error {
	if _, err := index.Rebuild(s.idx, s.store, s.logger); err != nil {
		return err
	}
	err := index.Watch(ctx, s.idx, s.store, s.logger, cb)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func sortByPath(notes []models.Note) {
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].RelativePath < notes[j].RelativePath
	})
}
