package index

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/jot/internal/models"
	"github.com/starford/jot/internal/notepath"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatcher_NewAndRemovedFiles(t *testing.T) {
	db := testDB(t)
	store := testStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	defer func() {
		cancel()
		<-done
	}()

	var mu sync.Mutex
	var events []string
	go func() {
		defer close(done)
		_ = Watch(ctx, db, store, quietLogger(), func(kind, path string) {
			mu.Lock()
			events = append(events, kind+":"+path)
			mu.Unlock()
		})
	}()

	time.Sleep(100 * time.Millisecond)

	abs := filepath.Join(store.Root(), "new.md")
	_ = os.WriteFile(abs, []byte("# New\n"), 0o644)

	p, _ := notepath.Parse("new")
	id := models.IDOf(p, store.Root())
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, ok, _ := db.Get(id)
		return ok
	}, "new file not indexed by watcher")

	_ = os.Remove(abs)
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, ok, _ := db.Get(id)
		return !ok
	}, "removed file still indexed")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		var created, removed bool
		for _, e := range events {
			created = created || e == "created:new"
			removed = removed || e == "removed:new"
		}
		return created && removed
	}, "expected created and removed callbacks")
}

func TestWatcher_NewDirectoryIndexed(t *testing.T) {
	db := testDB(t)
	store := testStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	defer func() {
		cancel()
		<-done
	}()
	go func() {
		defer close(done)
		_ = Watch(ctx, db, store, quietLogger(), nil)
	}()

	time.Sleep(100 * time.Millisecond)

	dir := filepath.Join(store.Root(), "projects")
	_ = os.MkdirAll(dir, 0o755)
	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(dir, "plan.md"), []byte("plan"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		p, _ := notepath.Parse("projects/plan")
		_, ok, _ := db.Get(models.IDOf(p, store.Root()))
		return ok
	}, "file in new directory not indexed")
}

func TestWatcher_SaveByRenameKeepsTags(t *testing.T) {
	db := testDB(t)
	store := testStore(t)

	p := writeNote(t, store, "x", "draft\n")
	orig := models.NewAt(p, store.Root(), []string{"keep"}, time.Date(2023, 1, 2, 3, 4, 5, 0, time.Local))
	insert(t, db, orig)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	defer func() {
		cancel()
		<-done
	}()
	go func() {
		defer close(done)
		_ = Watch(ctx, db, store, quietLogger(), nil)
	}()

	time.Sleep(100 * time.Millisecond)

	abs := p.AbsolutePathWithExt(store.Root())
	if err := os.Rename(abs, abs+"~"); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte("draft, revised\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_ = os.Remove(abs + "~")

	// Past the debounce window so the reconcile pass has run too.
	time.Sleep(800 * time.Millisecond)
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		rec, ok, _ := db.Get(orig.ID())
		return ok && rec.Tags.Has("keep") && rec.Created == orig.Created
	}, "tags or created time lost after a save by rename")
}
