// Package resolver turns a user-typed note reference into exactly one indexed note.
package resolver

import (
	"context"
	"fmt"

	"github.com/starford/jot/internal/apperr"
	"github.com/starford/jot/internal/index"
	"github.com/starford/jot/internal/models"
	"github.com/starford/jot/internal/notepath"
)

const (
	promptCreate = "No note found with that name. Would you like to create it now?"
	promptChoose = "Multiple notes found. Please choose one"
)

// Prompter asks the user to decide. Implementations return apperr.ErrCancelled
// when the user backs out.
type Prompter interface {
	Confirm(prompt string) (bool, error)
	SelectOne(prompt string, options []string) (int, error)
	FuzzySelect(prompt string, options []string) (int, error)
}

// CreateFunc creates a note at p (file and index record) and returns its record.
type CreateFunc func(ctx context.Context, p notepath.Path, tags []string) (models.Note, error)

// Resolver picks one note for an input, asking the user when the index is ambiguous.
type Resolver struct {
	idx      index.NoteIndex
	prompter Prompter
	create   CreateFunc
}

func New(idx index.NoteIndex, prompter Prompter, create CreateFunc) *Resolver {
	return &Resolver{idx: idx, prompter: prompter, create: create}
}

// Resolve looks input up by exact relative path when it names a parent and by
// title otherwise.
//
// With no match and createIfEmpty set, the user is offered to create the note;
// declining yields apperr.ErrNoMatchingNotes. With several matches the user
// picks one from the candidates' relative paths, in index order.
func (r *Resolver) Resolve(ctx context.Context, input string, createIfEmpty bool) (models.Note, error) {
	p, err := notepath.Parse(input)
	if err != nil {
		return models.Note{}, err
	}

	var matches []models.Note
	if p.HasParent() {
		matches, err = r.idx.FindByPath(p)
	} else {
		matches, err = r.idx.FindByTitle(p.Title())
	}
	if err != nil {
		return models.Note{}, fmt.Errorf("resolve %s: %w", p, err)
	}

	switch len(matches) {
	case 0:
		return r.onMiss(ctx, p, createIfEmpty)
	case 1:
		return matches[0], nil
	}

	options := make([]string, len(matches))
	for i, n := range matches {
		options[i] = n.RelativePath
	}
	choice, err := r.prompter.SelectOne(promptChoose, options)
	if err != nil {
		return models.Note{}, err
	}
	if choice < 0 || choice >= len(matches) {
		return models.Note{}, fmt.Errorf("resolve %s: choice %d out of range: %w", p, choice, apperr.ErrCancelled)
	}
	return matches[choice], nil
}

func (r *Resolver) onMiss(ctx context.Context, p notepath.Path, createIfEmpty bool) (models.Note, error) {
	if !createIfEmpty {
		return models.Note{}, fmt.Errorf("%s: %w", p, apperr.ErrNoMatchingNotes)
	}
	ok, err := r.prompter.Confirm(promptCreate)
	if err != nil {
		return models.Note{}, err
	}
	if !ok {
		return models.Note{}, fmt.Errorf("%s: %w", p, apperr.ErrNoMatchingNotes)
	}
	return r.create(ctx, p, nil)
}
