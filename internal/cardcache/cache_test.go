package cardcache

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"ydkpoints/internal/deck"
)

func TestResultKeyVariesWithOptions(t *testing.T) {
	id := deck.NewPasscode("89631139")
	keys := map[string]struct{}{}
	for _, loc := range []bool{false, true} {
		for _, zero := range []bool{false, true} {
			keys[ResultKey(id, loc, zero)] = struct{}{}
		}
	}
	if len(keys) != 4 {
		t.Fatalf("expected 4 distinct keys, got %d", len(keys))
	}
	if ResultKey(id, true, false) == ResultKey(deck.NewContentID("89631139"), true, false) {
		t.Fatal("passcode and content id keys must differ")
	}
}

func TestFileBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "cache.json")

	c := New(NewFileBackend(path), nil)
	c.Load(ctx)
	c.SetTableVersion("point_250923")
	c.StoreLocalized("Maxx \"C\"", "증식의 G")
	c.StoreLocalized(ContentIDKey("4861"), "Maxx \"C\"")
	c.StoreResult("k1", Result{Name: "증식의 G", Score: 10})
	c.StoreResult("k2", Result{Omitted: true})
	if err := c.Persist(ctx); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	reloaded := New(NewFileBackend(path), nil)
	reloaded.Load(ctx)
	if reloaded.TableVersion() != "point_250923" {
		t.Fatalf("table version = %q", reloaded.TableVersion())
	}
	if name, ok := reloaded.LookupLocalized(ContentIDKey("4861")); !ok || name != "Maxx \"C\"" {
		t.Fatalf("cid lookup = %q %v", name, ok)
	}
	if r, ok := reloaded.LookupResult("k1"); !ok || r.Score != 10 || r.Name != "증식의 G" {
		t.Fatalf("k1 = %+v %v", r, ok)
	}
	if r, ok := reloaded.LookupResult("k2"); !ok || !r.Omitted {
		t.Fatalf("omission should persist, got %+v %v", r, ok)
	}

	stats := reloaded.Stats()
	if stats.Localized != 2 || stats.Results != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestLoadCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c := New(NewFileBackend(path), nil)
	c.Load(context.Background())
	if stats := c.Stats(); stats.Results != 0 || stats.Localized != 0 {
		t.Fatalf("expected empty cache, got %+v", stats)
	}
}

func TestLoadMissingDirectoryStartsEmpty(t *testing.T) {
	c := New(NewFileBackend(filepath.Join(t.TempDir(), "absent", "cache.json")), nil)
	c.Load(context.Background())
	if c.Stats().Results != 0 {
		t.Fatal("expected empty cache")
	}
}

func TestClearRemovesPersistedFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.json")
	c := New(NewFileBackend(path), nil)
	c.StoreResult("k", Result{Name: "A", Score: 1})
	if err := c.Persist(ctx); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected cache file removed, stat err = %v", err)
	}
	if _, ok := c.LookupResult("k"); ok {
		t.Fatal("expected in-memory store emptied")
	}
}

func TestPersistWaitsForLeases(t *testing.T) {
	ctx := context.Background()
	c := New(NewFileBackend(filepath.Join(t.TempDir(), "cache.json")), nil)

	release := c.Acquire()
	persisted := make(chan struct{})
	go func() {
		_ = c.Persist(ctx)
		close(persisted)
	}()

	select {
	case <-persisted:
		t.Fatal("Persist returned while a batch held a lease")
	case <-time.After(50 * time.Millisecond):
	}

	c.StoreResult("late", Result{Name: "late", Score: 2})
	release()
	release()

	select {
	case <-persisted:
	case <-time.After(2 * time.Second):
		t.Fatal("Persist did not resume after release")
	}

	reloaded := New(c.backend, nil)
	reloaded.Load(ctx)
	if _, ok := reloaded.LookupResult("late"); !ok {
		t.Fatal("result stored before release should be persisted")
	}
}

func TestConcurrentStores(t *testing.T) {
	c := New(nil, nil)
	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := ResultKey(deck.NewPasscode(string(rune('a'+i%26))), true, false)
			c.StoreResult(key, Result{Name: key, Score: i})
			c.StoreLocalized(key, key)
			c.LookupResult(key)
		}()
	}
	wg.Wait()
	if c.Stats().Backend != "memory" {
		t.Fatalf("backend = %q", c.Stats().Backend)
	}
	if err := c.Persist(context.Background()); err != nil {
		t.Fatalf("Persist without backend: %v", err)
	}
}
