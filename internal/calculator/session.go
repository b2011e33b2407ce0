package calculator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"ydkpoints/internal/cardcache"
	"ydkpoints/internal/config"
	"ydkpoints/internal/deck"
	"ydkpoints/internal/fetch"
	"ydkpoints/internal/logging"
	"ydkpoints/internal/progress"
	"ydkpoints/internal/report"
	"ydkpoints/internal/resolver"
	"ydkpoints/internal/scoretable"
	"ydkpoints/internal/services"
	"ydkpoints/internal/services/konami"
	"ydkpoints/internal/services/ygoprodeck"
)

// PageFetcher downloads remote deck-builder pages.
type PageFetcher interface {
	FetchDeckPage(ctx context.Context, rawURL string) (string, error)
}

// Options wires a Session. Zero-valued sources are built from Config.
type Options struct {
	Config    *config.Config
	Table     *scoretable.Table
	Primary   resolver.PrimarySource
	Secondary resolver.SecondarySource
	Pages     PageFetcher
	Progress  *progress.Hub
	Logger    *slog.Logger
}

// Session owns the per-run resources.
type Session struct {
	cfg       *config.Config
	table     *scoretable.Table
	cache     *cardcache.Cache
	resolver  *resolver.Resolver
	scheduler *fetch.Scheduler
	pages     PageFetcher
	progress  *progress.Hub
	logger    *slog.Logger
	runID     string
}

// Open prepares a session. A missing score table is fatal; an unreadable
// cache only starts the session with an empty one.
func Open(ctx context.Context, opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(opts.Logger, "calculator"))

	table := opts.Table
	if table == nil {
		loaded, err := LoadScoreTable(cfg, logger)
		if err != nil {
			return nil, err
		}
		table = loaded
	}

	cache, err := OpenCache(ctx, cfg, opts.Logger)
	if err != nil {
		return nil, err
	}
	cache.Load(ctx)
	if previous := cache.TableVersion(); previous != "" && previous != table.Fingerprint() {
		logger.Info("score table changed, clearing card cache",
			logging.String("previous", previous),
			logging.String("current", table.Fingerprint()))
		if err := cache.Clear(ctx); err != nil {
			logging.WarnWithContext(logger, "failed to clear card cache", "cardcache_clear_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "run 'ydkpoints cache clear'"),
				logging.String(logging.FieldImpact, "stale cached results may be shown"))
		}
	}
	cache.SetTableVersion(table.Fingerprint())

	primary := opts.Primary
	if primary == nil {
		client, err := ygoprodeck.New(ygoprodeck.Config{
			BaseURL:   cfg.Sources.YGOProDeckBaseURL,
			UserAgent: cfg.Sources.UserAgent,
			Timeout:   time.Duration(cfg.Sources.PrimaryTimeoutSeconds) * time.Second,
		})
		if err != nil {
			_ = cache.Close()
			return nil, services.Wrap(services.ErrConfiguration, "calculator", "primary source", "", err)
		}
		primary = client
	}

	secondary := opts.Secondary
	pages := opts.Pages
	if secondary == nil || pages == nil {
		client, err := konami.New(konami.Config{
			BaseURL:   cfg.Sources.KonamiBaseURL,
			UserAgent: cfg.Sources.UserAgent,
			Locale:    cfg.Sources.LocalizedLanguage,
			Timeout:   time.Duration(cfg.Sources.SecondaryTimeoutSeconds) * time.Second,
		})
		if err != nil {
			_ = cache.Close()
			return nil, services.Wrap(services.ErrConfiguration, "calculator", "secondary source", "", err)
		}
		if secondary == nil {
			secondary = client
		}
		if pages == nil {
			pages = client
		}
	}

	return &Session{
		cfg:   cfg,
		table: table,
		cache: cache,
		resolver: resolver.New(resolver.Config{
			Primary:   primary,
			Secondary: secondary,
			Cache:     cache,
			Language:  cfg.Sources.LocalizedLanguage,
			Progress:  opts.Progress,
			Logger:    opts.Logger,
		}),
		scheduler: &fetch.Scheduler{Width: cfg.Resolve.Workers, Progress: opts.Progress, Logger: opts.Logger},
		pages:     pages,
		progress:  opts.Progress,
		logger:    logger,
		runID:     runID,
	}, nil
}

// LoadScoreTable loads the configured score document, or the newest one in the
// score table directory. Row diagnostics are logged as warnings.
func LoadScoreTable(cfg *config.Config, logger *slog.Logger) (*scoretable.Table, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	path := cfg.Paths.ScoreTable
	if path == "" {
		latest, err := scoretable.Latest(cfg.Paths.ScoreTableDir)
		if err != nil {
			return nil, err
		}
		path = latest.Path
	}
	table, diags, err := scoretable.LoadFile(path)
	if err != nil {
		return nil, err
	}
	for _, d := range diags {
		logging.WarnWithContext(logger, "score table row recovered", "score_table_row",
			logging.String("path", path),
			logging.Int("line", d.Line),
			logging.String("reason", d.Reason),
			logging.String(logging.FieldErrorHint, "fix the row in the score document"),
			logging.String(logging.FieldImpact, "card scored as 0 or ignored"))
	}
	logger.Debug("score table loaded",
		logging.String("version", table.Version),
		logging.Int("cards", table.Len()))
	return table, nil
}

// OpenCache opens the configured cache backend without loading it. A disabled
// cache is an in-memory one. An unreadable sqlite database is discarded and
// recreated; if that also fails the run continues with an in-memory cache.
func OpenCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*cardcache.Cache, error) {
	if !cfg.Cache.Enabled {
		return cardcache.New(nil, logger), nil
	}
	switch cfg.Cache.Backend {
	case config.CacheBackendSQLite:
		return cardcache.New(openSQLiteCache(ctx, cfg.Paths.CachePath, logger), logger), nil
	default:
		return cardcache.New(cardcache.NewFileBackend(cfg.Paths.CachePath), logger), nil
	}
}

// openSQLiteCache returns nil when no usable database can be opened.
func openSQLiteCache(ctx context.Context, path string, logger *slog.Logger) cardcache.Backend {
	backend, err := cardcache.OpenSQLite(ctx, path)
	if err == nil {
		return backend
	}
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "calculator"))
	logging.WarnWithContext(logger, "card cache database unreadable, recreating", "cardcache_open_failed",
		logging.String("path", path),
		logging.Error(err),
		logging.String(logging.FieldImpact, "cached results discarded"))
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if rmErr := os.Remove(path + suffix); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			logger.Debug("remove cache file failed", logging.String("path", path+suffix), logging.Error(rmErr))
		}
	}
	backend, err = cardcache.OpenSQLite(ctx, path)
	if err == nil {
		return backend
	}
	logging.WarnWithContext(logger, "card cache unavailable, using memory only", "cardcache_disabled",
		logging.String("path", path),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check permissions on the cache directory"),
		logging.String(logging.FieldImpact, "results are not persisted for this run"))
	return nil
}

// ResolveOptions reads the resolution switches from cfg.
func ResolveOptions(cfg *config.Config) resolver.Options {
	return resolver.Options{
		ShowZeroScoreCards:      cfg.Resolve.ShowZeroScoreCards,
		UseLocalizationFallback: cfg.Resolve.UseLocalizationFallback,
		IncludeSideDeck:         cfg.Resolve.IncludeSideDeck,
		AggregateDuplicates:     cfg.Resolve.AggregateDuplicates,
	}
}

// RunID is the correlation id attached to this session's logs.
func (s *Session) RunID() string { return s.runID }

// Table returns the active score table.
func (s *Session) Table() *scoretable.Table { return s.table }

// Cache returns the session cache.
func (s *Session) Cache() *cardcache.Cache { return s.cache }

// IsRemote reports whether target names a remote deck page.
func IsRemote(target string) bool {
	u, err := url.Parse(strings.TrimSpace(target))
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// LoadDeck reads a local deck file or downloads and parses a remote page.
func (s *Session) LoadDeck(ctx context.Context, target string) (deck.Deck, error) {
	if !IsRemote(target) {
		return deck.ParseYDKFile(target)
	}
	if s.pages == nil {
		return deck.Deck{}, errors.New("no deck page fetcher configured")
	}
	page, err := s.pages.FetchDeckPage(ctx, target)
	if err != nil {
		return deck.Deck{}, fmt.Errorf("fetch deck page: %w", err)
	}
	d := deck.ParseHTML(page)
	d.Name = target
	if d.Len() == 0 {
		return deck.Deck{}, services.Wrap(services.ErrValidation, "calculator", "parse deck page", "no card ids found on "+target, nil)
	}
	return d, nil
}

// Calculate loads target and scores it.
func (s *Session) Calculate(ctx context.Context, target string, opts resolver.Options) (report.Report, error) {
	d, err := s.LoadDeck(ctx, target)
	if err != nil {
		return report.Report{}, err
	}
	return s.CalculateDeck(ctx, d, opts), nil
}

// CalculateDeck resolves every section of d and builds the report. The side
// deck is only resolved when it is included.
func (s *Session) CalculateDeck(ctx context.Context, d deck.Deck, opts resolver.Options) report.Report {
	ctx = services.WithRunID(ctx, s.runID)
	release := s.cache.Acquire()
	defer release()

	started := time.Now()
	resolved := make(map[deck.Section][]report.Card, len(deck.Sections))
	for _, section := range deck.Sections {
		ids := d.Section(section)
		if section == deck.Side && !opts.IncludeSideDeck {
			continue
		}
		if len(ids) == 0 {
			continue
		}
		resolved[section] = s.resolveSection(ctx, section, ids, opts)
	}

	r := report.Build(report.Input{
		DeckName:     d.Name,
		TableVersion: s.table.Version,
		Main:         resolved[deck.Main],
		Extra:        resolved[deck.Extra],
		Side:         resolved[deck.Side],
		IncludeSide:  opts.IncludeSideDeck,
		Aggregate:    opts.AggregateDuplicates,
	})
	s.progress.Publish(progress.Event{Kind: progress.KindDone, Message: fmt.Sprintf("grand total %d", r.GrandTotal)})
	s.logger.Info("deck scored",
		logging.String("deck", d.Name),
		logging.Int("cards", d.Len()),
		logging.Int("main_total", r.MainTotal),
		logging.Int("grand_total", r.GrandTotal),
		logging.Duration("elapsed", time.Since(started)))
	return r
}

func (s *Session) resolveSection(ctx context.Context, section deck.Section, ids []deck.Identifier, opts resolver.Options) []report.Card {
	ctx = services.WithSection(ctx, section.String())
	s.progress.Stage(section.String(), "fetching %s deck", section)

	results := fetch.ResolveAll(ctx, s.scheduler, ids, func(ctx context.Context, id deck.Identifier) resolver.Result {
		return s.resolver.Resolve(ctx, id, opts, s.table)
	})
	cards := make([]report.Card, 0, len(results))
	for _, r := range results {
		if r.Omitted {
			continue
		}
		cards = append(cards, report.Card{Name: r.Name, Score: r.Score})
	}
	return cards
}

// Close persists the cache and releases its backend.
func (s *Session) Close(ctx context.Context) error {
	if s == nil || s.cache == nil {
		return nil
	}
	persistErr := s.cache.Persist(ctx)
	closeErr := s.cache.Close()
	return errors.Join(persistErr, closeErr)
}
