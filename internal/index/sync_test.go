package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/jot/internal/models"
	"github.com/starford/jot/internal/notepath"
	"github.com/starford/jot/internal/storage"
)

func testStore(t *testing.T) *storage.FS {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func writeNote(t *testing.T, store *storage.FS, rel, content string) notepath.Path {
	t.Helper()
	p, _ := notepath.Parse(rel)
	abs := p.AbsolutePathWithExt(store.Root())
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRebuild_AddsOrphansAndDropsStale(t *testing.T) {
	db := testDB(t)
	store := testStore(t)

	kept := writeNote(t, store, "kept", "")
	keptNote := models.New(kept, store.Root(), []string{"mine"})
	insert(t, db, keptNote)

	stalePath, _ := notepath.Parse("vanished")
	stale := models.New(stalePath, store.Root(), nil)
	insert(t, db, stale)

	orphan := writeNote(t, store, "dir/orphan", "---\ntags: [found]\n---\nbody\n")

	report, err := Rebuild(db, store, quietLogger())
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if report.Added != 1 || report.Removed != 1 || report.Kept != 1 {
		t.Errorf("report = %+v, want 1/1/1", report)
	}

	if _, ok, _ := db.Get(stale.ID()); ok {
		t.Error("stale record should be removed")
	}
	got, ok, _ := db.Get(models.IDOf(orphan, store.Root()))
	if !ok {
		t.Fatal("orphan file should be indexed")
	}
	if !got.Tags.Has("found") || got.Title != "orphan" {
		t.Errorf("orphan record = %+v", got)
	}
	keptGot, _, _ := db.Get(keptNote.ID())
	if !keptGot.Tags.Has("mine") {
		t.Error("existing record must keep its tags")
	}
}

func TestRebuild_RootMovedKeepsTags(t *testing.T) {
	db := testDB(t)
	store := testStore(t)

	p := writeNote(t, store, "journal/day", "")
	old := models.New(p, "/old/root", []string{"diary"})
	old.Created = "2001-02-03 04:05:06"
	insert(t, db, old)

	if _, err := Rebuild(db, store, quietLogger()); err != nil {
		t.Fatal(err)
	}
	all, _ := db.GetAll()
	if len(all) != 1 {
		t.Fatalf("len = %d, want 1", len(all))
	}
	if all[0].AbsolutePath != p.AbsolutePathWithExt(store.Root()) {
		t.Errorf("absolute = %q", all[0].AbsolutePath)
	}
	if !all[0].Tags.Has("diary") || all[0].Created != old.Created {
		t.Errorf("record = %+v, want tags and created carried over", all[0])
	}
}

func TestRebuild_Empty(t *testing.T) {
	report, err := Rebuild(testDB(t), testStore(t), quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if report != (RebuildReport{}) {
		t.Errorf("report = %+v, want zero", report)
	}
}
