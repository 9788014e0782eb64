package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/jot/internal/apperr"
	"github.com/starford/jot/internal/notepath"
)

// FS implements Provider on the local file system.
type FS struct {
	root string // absolute path to the notes root
}

// NewFS creates a provider rooted at root. The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

func (f *FS) Root() string { return f.root }

// safePath maps p to its absolute file path. Paths that are not already
// clean ("." or ".." or empty segments) are rejected so the file always
// lives at the exact path recorded in the index.
func (f *FS) safePath(p notepath.Path) (string, error) {
	raw := filepath.FromSlash(p.AbsolutePathWithExt(f.root))
	abs := filepath.Clean(raw)
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: path escapes notes root: %s: %w", p, apperr.ErrInvalidPath)
	}
	if abs != raw {
		return "", fmt.Errorf("storage: path is not canonical: %s: %w", p, apperr.ErrInvalidPath)
	}
	return abs, nil
}

func (f *FS) CreateFile(p notepath.Path) error {
	abs, err := f.safePath(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("storage: create parent of %s: %w", p, err)
	}

	file, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("storage: create %s: %w", p, apperr.ErrAlreadyExists)
		}
		return fmt.Errorf("storage: create %s: %w", p, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("storage: close %s: %w", p, err)
	}
	return nil
}

func (f *FS) DeleteFile(p notepath.Path) error {
	abs, err := f.safePath(p)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("storage: delete %s: %w", p, apperr.ErrNotFound)
		}
		return fmt.Errorf("storage: delete %s: %w", p, err)
	}
	if p.HasParent() {
		return pruneIfEmpty(filepath.Dir(abs))
	}
	return nil
}

func (f *FS) RenameFile(oldPath, newPath notepath.Path) error {
	return f.relocate(oldPath, newPath)
}

// MoveFile relocates the file and, when the note left its directory, prunes
// the old parent one level if it is now empty.
func (f *FS) MoveFile(oldPath, newPath notepath.Path) error {
	if err := f.relocate(oldPath, newPath); err != nil {
		return err
	}
	oldParent, hadParent := oldPath.RelativeParent()
	newParent, _ := newPath.RelativeParent()
	if hadParent && oldParent != newParent {
		abs, err := f.safePath(oldPath)
		if err != nil {
			return err
		}
		return pruneIfEmpty(filepath.Dir(abs))
	}
	return nil
}

func (f *FS) relocate(oldPath, newPath notepath.Path) error {
	absOld, err := f.safePath(oldPath)
	if err != nil {
		return err
	}
	absNew, err := f.safePath(newPath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(absOld); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("storage: move %s: %w", oldPath, apperr.ErrNotFound)
		}
		return fmt.Errorf("storage: move %s: %w", oldPath, err)
	}
	if _, err := os.Stat(absNew); err == nil {
		return fmt.Errorf("storage: move to %s: %w", newPath, apperr.ErrAlreadyExists)
	}
	if err := os.MkdirAll(filepath.Dir(absNew), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir for move: %w", err)
	}
	if err := os.Rename(absOld, absNew); err != nil {
		return fmt.Errorf("storage: move %s -> %s: %w", oldPath, newPath, err)
	}
	return nil
}

func (f *FS) Exists(p notepath.Path) bool {
	abs, err := f.safePath(p)
	if err != nil {
		return false
	}
	_, err = os.Stat(abs)
	return err == nil
}

func (f *FS) Read(p notepath.Path) ([]byte, error) {
	abs, err := f.safePath(p)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("storage: read %s: %w", p, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: read %s: %w", p, err)
	}
	return data, nil
}

// List walks the root for .md files. Hidden directories (.git and friends) are skipped.
func (f *FS) List() ([]FileInfo, error) {
	var out []FileInfo
	err := filepath.WalkDir(f.root, func(abs string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if abs != f.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		p, ok := f.PathOf(abs)
		if !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, FileInfo{Path: p, ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

// PathOf maps an absolute file path under the root back to a note path.
// It reports false for anything that is not a visible .md file under the root.
func (f *FS) PathOf(abs string) (notepath.Path, bool) {
	if !strings.HasSuffix(abs, notepath.Ext) || strings.HasPrefix(filepath.Base(abs), ".") {
		return notepath.Path{}, false
	}
	rel, err := filepath.Rel(f.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return notepath.Path{}, false
	}
	p, err := notepath.Parse(filepath.ToSlash(strings.TrimSuffix(rel, notepath.Ext)))
	if err != nil {
		return notepath.Path{}, false
	}
	return p, true
}

// pruneIfEmpty removes dir when it has no entries left. Only dir itself is
// considered; ancestors are left alone.
func pruneIfEmpty(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("storage: read parent %s: %w", dir, err)
	}
	if len(entries) > 0 {
		return nil
	}
	if err := os.Remove(dir); err != nil {
		return fmt.Errorf("storage: remove empty directory %s: %w", dir, err)
	}
	return nil
}
