package resolver

import (
	"context"
	"sync"
	"testing"

	"ydkpoints/internal/cardcache"
	"ydkpoints/internal/deck"
	"ydkpoints/internal/scoretable"
	"ydkpoints/internal/services"
)

type fakePrimary struct {
	mu        sync.Mutex
	canonical map[string]string
	localized map[string]string
	byName    map[string]string
	transient bool
	calls     int
}

func (f *fakePrimary) NameByPasscode(_ context.Context, passcode, language string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.transient {
		return "", services.Wrap(services.ErrTransient, "fake", "lookup", "offline", nil)
	}
	names := f.canonical
	if language != "" {
		names = f.localized
	}
	name, ok := names[passcode]
	if !ok {
		return "", services.Wrap(services.ErrNotFound, "fake", "lookup", passcode, nil)
	}
	return name, nil
}

func (f *fakePrimary) NameByCanonical(_ context.Context, canonical, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	name, ok := f.byName[canonical]
	if !ok {
		return "", services.Wrap(services.ErrNotFound, "fake", "lookup", canonical, nil)
	}
	return name, nil
}

type fakeSecondary struct {
	mu        sync.Mutex
	localized map[string]string
	cids      map[string]string
	calls     int
}

func (f *fakeSecondary) LocalizedName(_ context.Context, canonical string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	name, ok := f.localized[canonical]
	if !ok {
		return "", services.Wrap(services.ErrNotFound, "fake", "localize", canonical, nil)
	}
	return name, nil
}

func (f *fakeSecondary) CanonicalName(_ context.Context, cid string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	name, ok := f.cids[cid]
	if !ok {
		return "", services.Wrap(services.ErrNotFound, "fake", "reverse", cid, nil)
	}
	return name, nil
}

func newFixture() (*fakePrimary, *fakeSecondary, *cardcache.Cache, *scoretable.Table) {
	primary := &fakePrimary{
		canonical: map[string]string{"111": "Alpha", "222": "Beta", "333": "Gamma"},
		localized: map[string]string{"111": "알파", "222": "Beta", "333": "감마"},
		byName:    map[string]string{"Alpha": "알파"},
	}
	secondary := &fakeSecondary{
		localized: map[string]string{"Beta": "베타"},
		cids:      map[string]string{"4861": "Alpha"},
	}
	table := scoretable.New("point_test", map[string]int{"Alpha": 3, "Beta": 2})
	return primary, secondary, cardcache.New(nil, nil), table
}

func TestResolvePasscode(t *testing.T) {
	primary, secondary, cache, table := newFixture()
	r := New(Config{Primary: primary, Secondary: secondary, Cache: cache})

	got := r.Resolve(context.Background(), deck.NewPasscode("111"), Options{UseLocalizationFallback: true}, table)
	if got != (Result{Name: "알파", Score: 3}) {
		t.Fatalf("got %+v", got)
	}
	if secondary.calls != 0 {
		t.Fatal("secondary should not be consulted when localized name exists")
	}
}

func TestResolveUsesLocalizationFallback(t *testing.T) {
	primary, secondary, cache, table := newFixture()
	r := New(Config{Primary: primary, Secondary: secondary, Cache: cache})

	got := r.Resolve(context.Background(), deck.NewPasscode("222"), Options{UseLocalizationFallback: true}, table)
	if got != (Result{Name: "베타", Score: 2}) {
		t.Fatalf("got %+v", got)
	}
	if name, ok := cache.LookupLocalized("Beta"); !ok || name != "베타" {
		t.Fatalf("localized name should be cached, got %q %v", name, ok)
	}

	noFallback := r.Resolve(context.Background(), deck.NewPasscode("222"), Options{}, table)
	if noFallback != (Result{Name: "Beta", Score: 2}) {
		t.Fatalf("without fallback got %+v", noFallback)
	}
}

func TestResolveIsIdempotentAndCached(t *testing.T) {
	primary, secondary, cache, table := newFixture()
	r := New(Config{Primary: primary, Secondary: secondary, Cache: cache})
	opts := Options{UseLocalizationFallback: true}

	first := r.Resolve(context.Background(), deck.NewPasscode("222"), opts, table)
	calls := primary.calls + secondary.calls
	second := r.Resolve(context.Background(), deck.NewPasscode("222"), opts, table)
	if first != second {
		t.Fatalf("results differ: %+v vs %+v", first, second)
	}
	if primary.calls+secondary.calls != calls {
		t.Fatal("second resolve should be served from cache")
	}
}

func TestResolveCacheKeySensitivity(t *testing.T) {
	primary, secondary, cache, table := newFixture()
	r := New(Config{Primary: primary, Secondary: secondary, Cache: cache})
	id := deck.NewPasscode("333")

	hidden := r.Resolve(context.Background(), id, Options{}, table)
	if !hidden.Omitted {
		t.Fatalf("zero score should be omitted, got %+v", hidden)
	}
	shown := r.Resolve(context.Background(), id, Options{ShowZeroScoreCards: true}, table)
	if shown.Omitted || shown.Name != "감마" || shown.Score != 0 {
		t.Fatalf("zero score should be shown, got %+v", shown)
	}
}

func TestResolvePlaceholder(t *testing.T) {
	primary, secondary, cache, table := newFixture()
	r := New(Config{Primary: primary, Secondary: secondary, Cache: cache})

	shown := r.Resolve(context.Background(), deck.NewPasscode("999"), Options{ShowZeroScoreCards: true}, table)
	if shown != (Result{Name: "unknown card (999)", Score: 0}) {
		t.Fatalf("got %+v", shown)
	}
	hidden := r.Resolve(context.Background(), deck.NewPasscode("999"), Options{}, table)
	if !hidden.Omitted {
		t.Fatalf("unknown card with zero score should be omitted, got %+v", hidden)
	}
}

func TestResolveTransientFailureNotCached(t *testing.T) {
	primary, secondary, cache, table := newFixture()
	primary.transient = true
	r := New(Config{Primary: primary, Secondary: secondary, Cache: cache})
	opts := Options{ShowZeroScoreCards: true}

	got := r.Resolve(context.Background(), deck.NewPasscode("111"), opts, table)
	if got.Name != "unknown card (111)" {
		t.Fatalf("got %+v", got)
	}
	if cache.Stats().Results != 0 {
		t.Fatal("transient failure should not be cached")
	}

	primary.transient = false
	got = r.Resolve(context.Background(), deck.NewPasscode("111"), opts, table)
	if got != (Result{Name: "알파", Score: 3}) {
		t.Fatalf("retry got %+v", got)
	}
}

func TestResolveContentID(t *testing.T) {
	primary, secondary, cache, table := newFixture()
	r := New(Config{Primary: primary, Secondary: secondary, Cache: cache})

	got := r.Resolve(context.Background(), deck.NewContentID("4861"), Options{UseLocalizationFallback: true}, table)
	if got != (Result{Name: "알파", Score: 3}) {
		t.Fatalf("got %+v", got)
	}
	if name, ok := cache.LookupLocalized(cardcache.ContentIDKey("4861")); !ok || name != "Alpha" {
		t.Fatalf("reverse lookup should be cached, got %q %v", name, ok)
	}
}

func TestResolveUnknownContentIDIsHardOmission(t *testing.T) {
	primary, secondary, cache, table := newFixture()
	r := New(Config{Primary: primary, Secondary: secondary, Cache: cache})
	opts := Options{ShowZeroScoreCards: true}

	got := r.Resolve(context.Background(), deck.NewContentID("1"), opts, table)
	if !got.Omitted {
		t.Fatalf("unknown cid should be omitted even when zero scores are shown, got %+v", got)
	}
	calls := secondary.calls
	if again := r.Resolve(context.Background(), deck.NewContentID("1"), opts, table); !again.Omitted {
		t.Fatalf("cached omission lost: %+v", again)
	}
	if secondary.calls != calls {
		t.Fatal("omission should be served from cache")
	}
}

func TestResolveWithoutCache(t *testing.T) {
	primary, _, _, table := newFixture()
	r := New(Config{Primary: primary})
	got := r.Resolve(context.Background(), deck.NewPasscode("222"), Options{UseLocalizationFallback: true}, table)
	if got != (Result{Name: "Beta", Score: 2}) {
		t.Fatalf("got %+v", got)
	}
}
