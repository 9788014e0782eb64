// Package models defines the note record persisted in the index.
package models

import (
	"encoding/binary"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/starford/jot/internal/notepath"
)

// TimeLayout is the local, human-readable layout of Created and Modified.
const TimeLayout = "2006-01-02 15:04:05"

// Note is the metadata record of one note file.
type Note struct {
	AbsolutePath string `json:"absolute_path"` // including the .md extension
	RelativePath string `json:"relative_path"` // relative to the notes root, no extension
	Title        string `json:"title"`
	Created      string `json:"created"`
	Modified     string `json:"modified"`
	Tags         TagSet `json:"tags"`
}

// New builds a record for p under root. Created and Modified share the same instant.
func New(p notepath.Path, root string, tags []string) Note {
	return NewAt(p, root, tags, time.Now())
}

// NewAt is New with an explicit creation time.
func NewAt(p notepath.Path, root string, tags []string, at time.Time) Note {
	stamp := at.Local().Format(TimeLayout)
	n := Note{
		AbsolutePath: p.AbsolutePathWithExt(root),
		RelativePath: p.RelativePath(),
		Title:        p.Title(),
		Created:      stamp,
		Modified:     stamp,
		Tags:         TagSet{},
	}
	n.AddTags(tags)
	return n
}

// ID is the index key of the note: a 64-bit hash of AbsolutePath and nothing else.
// Two records with the same absolute path always share an ID.
func (n Note) ID() uint64 {
	return xxhash.Sum64String(n.AbsolutePath)
}

// IDOf is the ID a note at p under root has or would have.
func IDOf(p notepath.Path, root string) uint64 {
	return xxhash.Sum64String(p.AbsolutePathWithExt(root))
}

// Path re-parses RelativePath.
func (n Note) Path() (notepath.Path, error) {
	return notepath.Parse(n.RelativePath)
}

// Relocate returns a copy of n living at p. The copy has a different ID whenever
// the absolute path changes; created and tags carry over.
func (n Note) Relocate(p notepath.Path, root string, at time.Time) Note {
	moved := n
	moved.AbsolutePath = p.AbsolutePathWithExt(root)
	moved.RelativePath = p.RelativePath()
	moved.Title = p.Title()
	moved.Tags = n.Tags.Clone()
	moved.Touch(at)
	return moved
}

// Touch sets Modified to at.
func (n *Note) Touch(at time.Time) {
	n.Modified = at.Local().Format(TimeLayout)
}

// AddTags merges tags into the set. Blank tags are ignored.
func (n *Note) AddTags(tags []string) {
	if n.Tags == nil {
		n.Tags = TagSet{}
	}
	for _, t := range tags {
		n.Tags.Add(t)
	}
}

// RemoveTags drops tags from the set; tags not present are ignored.
func (n *Note) RemoveTags(tags []string) {
	for _, t := range tags {
		n.Tags.Remove(t)
	}
}

// Key encodes an ID the way the index stores it: 8 bytes, little-endian.
func Key(id uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], id)
	return b[:]
}

// SplitTags splits a comma-separated tag list, dropping blanks.
func SplitTags(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// TagSet is an unordered set of tags.
type TagSet map[string]struct{}

// NewTagSet builds a set from tags.
func NewTagSet(tags ...string) TagSet {
	s := TagSet{}
	for _, t := range tags {
		s.Add(t)
	}
	return s
}

func (s TagSet) Add(tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return
	}
	s[tag] = struct{}{}
}

func (s TagSet) Remove(tag string) {
	delete(s, strings.TrimSpace(tag))
}

func (s TagSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// HasAny reports whether s and tags share at least one member.
func (s TagSet) HasAny(tags TagSet) bool {
	for t := range tags {
		if s.Has(t) {
			return true
		}
	}
	return false
}

// Sorted returns the members in lexical order.
func (s TagSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (s TagSet) Clone() TagSet {
	out := make(TagSet, len(s))
	for t := range s {
		out[t] = struct{}{}
	}
	return out
}

// MarshalJSON renders the set as a sorted array.
func (s TagSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *TagSet) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	*s = NewTagSet(tags...)
	return nil
}
