package cardcache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"ydkpoints/internal/deck"
	"ydkpoints/internal/logging"
)

// Result is a cached resolution outcome.
type Result struct {
	Name    string `json:"name"`
	Score   int    `json:"score"`
	Omitted bool   `json:"omitted,omitempty"`
}

// Snapshot is the persisted form of both stores.
type Snapshot struct {
	TableVersion string            `json:"table_version"`
	Localized    map[string]string `json:"localized"`
	Results      map[string]Result `json:"results"`
}

// Backend persists snapshots.
type Backend interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Remove(ctx context.Context) error
	Describe() string
	Close() error
}

// Stats summarises cache contents.
type Stats struct {
	Backend      string `json:"backend"`
	TableVersion string `json:"table_version"`
	Localized    int    `json:"localized"`
	Results      int    `json:"results"`
}

// Cache is safe for concurrent use by resolver workers.
type Cache struct {
	backend Backend
	logger  *slog.Logger

	locMu     sync.Mutex
	localized map[string]string

	resMu   sync.Mutex
	results map[string]Result

	metaMu       sync.Mutex
	tableVersion string

	leases sync.RWMutex
}

// New returns an empty cache. A nil backend keeps everything in memory.
func New(backend Backend, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Cache{
		backend:   backend,
		logger:    logging.NewComponentLogger(logger, "cardcache"),
		localized: make(map[string]string),
		results:   make(map[string]Result),
	}
}

// ResultKey derives the result-store key for an identifier under the options
// that influence its outcome.
func ResultKey(id deck.Identifier, useLocalizationFallback, showZeroScoreCards bool) string {
	return fmt.Sprintf("%s|loc=%t|zero=%t", id, useLocalizationFallback, showZeroScoreCards)
}

// ContentIDKey is the localization-store key for a reverse content-id lookup.
func ContentIDKey(cid string) string {
	return "cid:" + cid
}

// LookupResult returns a stored result.
func (c *Cache) LookupResult(key string) (Result, bool) {
	c.resMu.Lock()
	defer c.resMu.Unlock()
	r, ok := c.results[key]
	return r, ok
}

// StoreResult overwrites the result for key.
func (c *Cache) StoreResult(key string, r Result) {
	c.resMu.Lock()
	c.results[key] = r
	c.resMu.Unlock()
}

// LookupLocalized returns a stored localized name.
func (c *Cache) LookupLocalized(key string) (string, bool) {
	c.locMu.Lock()
	defer c.locMu.Unlock()
	name, ok := c.localized[key]
	return name, ok
}

// StoreLocalized overwrites the localized name for key.
func (c *Cache) StoreLocalized(key, name string) {
	c.locMu.Lock()
	c.localized[key] = name
	c.locMu.Unlock()
}

// Acquire marks a batch as in flight. Persist waits until every returned
// release func has been called.
func (c *Cache) Acquire() (release func()) {
	c.leases.RLock()
	var once sync.Once
	return func() {
		once.Do(c.leases.RUnlock)
	}
}

// TableVersion reports the score-table fingerprint the contents belong to.
func (c *Cache) TableVersion() string {
	c.metaMu.Lock()
	defer c.metaMu.Unlock()
	return c.tableVersion
}

// SetTableVersion records the score-table version for the next Persist.
func (c *Cache) SetTableVersion(version string) {
	c.metaMu.Lock()
	c.tableVersion = version
	c.metaMu.Unlock()
}

// Load replaces the in-memory stores with the persisted snapshot. A missing
// or unreadable snapshot leaves the cache empty and is only logged.
func (c *Cache) Load(ctx context.Context) {
	if c.backend == nil {
		return
	}
	snap, err := c.backend.Load(ctx)
	if err != nil {
		c.logger.Warn("failed to load card cache",
			logging.String(logging.FieldEventType, "cardcache_load_failed"),
			logging.String("backend", c.backend.Describe()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "cache will start empty"),
			logging.String(logging.FieldImpact, "cards will be looked up again"))
		return
	}
	c.replace(snap)
	c.logger.Debug("loaded card cache",
		logging.Int("localized", len(snap.Localized)),
		logging.Int("results", len(snap.Results)),
		logging.String("table_version", snap.TableVersion))
}

// Persist writes both stores once no batch holds a lease.
func (c *Cache) Persist(ctx context.Context) error {
	if c.backend == nil {
		return nil
	}
	c.leases.Lock()
	defer c.leases.Unlock()

	snap := c.snapshot()
	if err := c.backend.Save(ctx, snap); err != nil {
		return fmt.Errorf("persist card cache: %w", err)
	}
	c.logger.Debug("persisted card cache",
		logging.Int("localized", len(snap.Localized)),
		logging.Int("results", len(snap.Results)))
	return nil
}

// Clear empties both stores and removes the persisted snapshot.
func (c *Cache) Clear(ctx context.Context) error {
	c.leases.Lock()
	defer c.leases.Unlock()

	c.replace(Snapshot{TableVersion: c.TableVersion()})
	if c.backend == nil {
		return nil
	}
	if err := c.backend.Remove(ctx); err != nil {
		return fmt.Errorf("clear card cache: %w", err)
	}
	c.logger.Debug("cleared card cache")
	return nil
}

// Stats reports the current store sizes.
func (c *Cache) Stats() Stats {
	stats := Stats{Backend: "memory", TableVersion: c.TableVersion()}
	if c.backend != nil {
		stats.Backend = c.backend.Describe()
	}
	c.locMu.Lock()
	stats.Localized = len(c.localized)
	c.locMu.Unlock()
	c.resMu.Lock()
	stats.Results = len(c.results)
	c.resMu.Unlock()
	return stats
}

// Close releases the backend.
func (c *Cache) Close() error {
	if c.backend == nil {
		return nil
	}
	return c.backend.Close()
}

func (c *Cache) snapshot() Snapshot {
	snap := Snapshot{TableVersion: c.TableVersion()}
	c.locMu.Lock()
	snap.Localized = make(map[string]string, len(c.localized))
	for k, v := range c.localized {
		snap.Localized[k] = v
	}
	c.locMu.Unlock()
	c.resMu.Lock()
	snap.Results = make(map[string]Result, len(c.results))
	for k, v := range c.results {
		snap.Results[k] = v
	}
	c.resMu.Unlock()
	return snap
}

func (c *Cache) replace(snap Snapshot) {
	localized := snap.Localized
	if localized == nil {
		localized = make(map[string]string)
	}
	results := snap.Results
	if results == nil {
		results = make(map[string]Result)
	}
	c.locMu.Lock()
	c.localized = localized
	c.locMu.Unlock()
	c.resMu.Lock()
	c.results = results
	c.resMu.Unlock()
	c.SetTableVersion(snap.TableVersion)
}
