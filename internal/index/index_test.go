package index

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"testing"

	"github.com/starford/jot/internal/apperr"
	"github.com/starford/jot/internal/models"
	"github.com/starford/jot/internal/notepath"
)

const root = "/notes"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "index"), quietLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func note(t *testing.T, rel string, tags ...string) models.Note {
	t.Helper()
	p, err := notepath.Parse(rel)
	if err != nil {
		t.Fatal(err)
	}
	return models.New(p, root, tags)
}

func insert(t *testing.T, db *DB, notes ...models.Note) {
	t.Helper()
	for _, n := range notes {
		if err := db.Insert(n); err != nil {
			t.Fatalf("Insert %s: %v", n.RelativePath, err)
		}
	}
}

func relPaths(notes []models.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.RelativePath
	}
	sort.Strings(out)
	return out
}

func TestInsertAndGet(t *testing.T) {
	db := testDB(t)
	n := note(t, "work/standup", "work")
	insert(t, db, n)

	got, ok, err := db.Get(n.ID())
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.RelativePath != "work/standup" || !got.Tags.Has("work") {
		t.Errorf("got %+v", got)
	}
}

func TestGet_Absent(t *testing.T) {
	db := testDB(t)
	_, ok, err := db.Get(42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("absent id reported as found")
	}
}

func TestInsert_Overwrites(t *testing.T) {
	db := testDB(t)
	n := note(t, "x")
	insert(t, db, n)
	n.Modified = "2030-01-01 00:00:00"
	insert(t, db, n)

	all, _ := db.GetAll()
	if len(all) != 1 {
		t.Fatalf("len = %d, want 1 record per identity", len(all))
	}
	if all[0].Modified != "2030-01-01 00:00:00" {
		t.Errorf("modified = %q, last write should win", all[0].Modified)
	}
}

func TestRemove(t *testing.T) {
	db := testDB(t)
	n := note(t, "gone")
	insert(t, db, n)

	if err := db.Remove(n.ID()); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := db.Get(n.ID()); ok {
		t.Error("record still present after Remove")
	}
	if err := db.Remove(n.ID()); err != nil {
		t.Errorf("removing an absent id should be a no-op, got %v", err)
	}
}

func TestFindByTitle_AcrossParents(t *testing.T) {
	db := testDB(t)
	insert(t, db, note(t, "a/todo"), note(t, "b/todo"), note(t, "todo"), note(t, "a/other"))

	got, err := db.FindByTitle("todo")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a/todo", "b/todo", "todo"}
	if g := relPaths(got); len(g) != 3 || g[0] != want[0] || g[1] != want[1] || g[2] != want[2] {
		t.Errorf("FindByTitle = %v, want %v", g, want)
	}
}

func TestFindByPath_Exact(t *testing.T) {
	db := testDB(t)
	insert(t, db, note(t, "a/b"), note(t, "c/b"), note(t, "a/b/c"))

	p, _ := notepath.Parse("a/b")
	got, err := db.FindByPath(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].RelativePath != "a/b" {
		t.Errorf("FindByPath = %v", relPaths(got))
	}
}

func TestFindByTags_IsOr(t *testing.T) {
	db := testDB(t)
	insert(t, db, note(t, "one", "x"), note(t, "two", "y"), note(t, "three"), note(t, "four", "z"))

	got, err := db.FindByTags([]string{"x", "y"})
	if err != nil {
		t.Fatal(err)
	}
	if g := relPaths(got); len(g) != 2 || g[0] != "one" || g[1] != "two" {
		t.Errorf("FindByTags = %v, want [one two]", g)
	}
}

func TestAddRemoveTags(t *testing.T) {
	db := testDB(t)
	n := note(t, "tagged", "keep")
	insert(t, db, n)

	if err := db.AddTags(n.ID(), []string{"new", "keep"}); err != nil {
		t.Fatal(err)
	}
	got, _, _ := db.Get(n.ID())
	if s := got.Tags.Sorted(); len(s) != 2 || s[0] != "keep" || s[1] != "new" {
		t.Errorf("after add = %v", s)
	}

	if err := db.RemoveTags(n.ID(), []string{"keep", "absent"}); err != nil {
		t.Fatal(err)
	}
	got, _, _ = db.Get(n.ID())
	if s := got.Tags.Sorted(); len(s) != 1 || s[0] != "new" {
		t.Errorf("after remove = %v", s)
	}
}

func TestAddTags_MissingIDIsNoop(t *testing.T) {
	db := testDB(t)
	if err := db.AddTags(7, []string{"x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	all, _ := db.GetAll()
	if len(all) != 0 {
		t.Error("tagging a missing id must not create a record")
	}
}

func TestReopenPersists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	db, err := Open(dir, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	n := note(t, "durable", "t")
	insert(t, db, n)
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	db, err = Open(dir, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	got, ok, err := db.Get(n.ID())
	if err != nil || !ok || !got.Tags.Has("t") {
		t.Errorf("after reopen: %+v ok=%v err=%v", got, ok, err)
	}
}

func TestOpen_LockedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	db, err := Open(dir, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	_, err = Open(dir, quietLogger())
	if !errors.Is(err, apperr.ErrIndexLocked) {
		t.Errorf("second Open err = %v, want ErrIndexLocked", err)
	}
}
