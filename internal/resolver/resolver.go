package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"ydkpoints/internal/cardcache"
	"ydkpoints/internal/deck"
	"ydkpoints/internal/logging"
	"ydkpoints/internal/progress"
	"ydkpoints/internal/services"
)

// DefaultLanguage is the localized display language.
const DefaultLanguage = "ko"

// Options are the per-invocation switches that affect resolution and report
// assembly.
type Options struct {
	ShowZeroScoreCards      bool `json:"show_zero_score_cards"`
	UseLocalizationFallback bool `json:"use_localization_fallback"`
	IncludeSideDeck         bool `json:"include_side_deck"`
	AggregateDuplicates     bool `json:"aggregate_duplicates"`
}

// Result is a resolved card. Omitted marks a card excluded from the report,
// which is different from a card shown with score 0.
type Result = cardcache.Result

// PrimarySource is the card database keyed by passcode.
type PrimarySource interface {
	NameByPasscode(ctx context.Context, passcode, language string) (string, error)
	NameByCanonical(ctx context.Context, canonical, language string) (string, error)
}

// SecondarySource is the database consulted for missing localizations and
// content-id reverse lookups.
type SecondarySource interface {
	LocalizedName(ctx context.Context, canonical string) (string, error)
	CanonicalName(ctx context.Context, cid string) (string, error)
}

// Cache stores localized names and full results.
type Cache interface {
	LookupResult(key string) (Result, bool)
	StoreResult(key string, r Result)
	LookupLocalized(key string) (string, bool)
	StoreLocalized(key, name string)
}

// ScoreTable maps canonical names to scores.
type ScoreTable interface {
	Score(name string) int
}

// Config wires a Resolver.
type Config struct {
	Primary   PrimarySource
	Secondary SecondarySource
	Cache     Cache
	Language  string
	Progress  *progress.Hub
	Logger    *slog.Logger
}

// Resolver is safe for concurrent use when its dependencies are.
type Resolver struct {
	primary   PrimarySource
	secondary SecondarySource
	cache     Cache
	language  string
	progress  *progress.Hub
	logger    *slog.Logger
}

// New builds a Resolver. A nil cache disables caching; a nil secondary source
// disables the localization fallback and content-id lookups.
func New(cfg Config) *Resolver {
	language := strings.TrimSpace(cfg.Language)
	if language == "" {
		language = DefaultLanguage
	}
	return &Resolver{
		primary:   cfg.Primary,
		secondary: cfg.Secondary,
		cache:     cfg.Cache,
		language:  language,
		progress:  cfg.Progress,
		logger:    logging.NewComponentLogger(cfg.Logger, "resolver"),
	}
}

// Placeholder is the display name used when a passcode cannot be resolved.
func Placeholder(value string) string {
	return fmt.Sprintf("unknown card (%s)", value)
}

// Resolve returns the display name and score for id.
func (r *Resolver) Resolve(ctx context.Context, id deck.Identifier, opts Options, table ScoreTable) Result {
	key := cardcache.ResultKey(id, opts.UseLocalizationFallback, opts.ShowZeroScoreCards)
	if r.cache != nil {
		if cached, ok := r.cache.LookupResult(key); ok {
			return cached
		}
	}

	logger := logging.WithContext(ctx, r.logger).With(logging.String(logging.FieldIdentifier, id.String()))
	res := resolution{definitive: true}

	var canonical string
	switch id.Kind {
	case deck.ContentID:
		canonical = r.canonicalFromContentID(ctx, logger, id.Value, &res)
		if canonical == "" {
			return r.finish(key, Result{Omitted: true}, res)
		}
		res.display = r.localizeByCanonical(ctx, logger, canonical, &res)
	default:
		canonical = r.canonicalFromPasscode(ctx, logger, id.Value, &res)
		if canonical == "" {
			res.display = Placeholder(id.Value)
		} else {
			res.display = r.localizeByPasscode(ctx, logger, id.Value, canonical, &res)
		}
	}

	if canonical != "" && res.display == canonical && opts.UseLocalizationFallback {
		if name := r.fallbackLocalization(ctx, logger, canonical, &res); name != "" {
			res.display = name
		}
	}

	score := 0
	if canonical != "" && table != nil {
		score = table.Score(canonical)
	}
	result := Result{Name: res.display, Score: score}
	if score == 0 && !opts.ShowZeroScoreCards {
		result = Result{Omitted: true}
	}
	logger.Debug("resolved card",
		logging.String("canonical", canonical),
		logging.String("display", res.display),
		logging.Int("score", score),
		logging.Bool("omitted", result.Omitted))
	return r.finish(key, result, res)
}

type resolution struct {
	display    string
	definitive bool
}

// note records a lookup failure. Only not-found answers are definitive; a
// transport failure keeps the outcome out of the cache so a later run retries.
func (res *resolution) note(logger *slog.Logger, step string, err error) {
	if !services.IsNotFound(err) {
		res.definitive = false
	}
	logger.Debug("card lookup failed",
		logging.String("step", step),
		logging.Bool("not_found", services.IsNotFound(err)),
		logging.Error(err))
}

func (r *Resolver) finish(key string, result Result, res resolution) Result {
	if r.cache != nil && res.definitive {
		r.cache.StoreResult(key, result)
	}
	return result
}

func (r *Resolver) canonicalFromPasscode(ctx context.Context, logger *slog.Logger, passcode string, res *resolution) string {
	if r.primary == nil {
		res.definitive = false
		return ""
	}
	name, err := r.primary.NameByPasscode(ctx, passcode, "")
	if err != nil {
		res.note(logger, "canonical", err)
		return ""
	}
	return strings.TrimSpace(name)
}

func (r *Resolver) localizeByPasscode(ctx context.Context, logger *slog.Logger, passcode, canonical string, res *resolution) string {
	name, err := r.primary.NameByPasscode(ctx, passcode, r.language)
	if err != nil {
		res.note(logger, "localized", err)
		return canonical
	}
	if name = strings.TrimSpace(name); name == "" {
		return canonical
	}
	return name
}

func (r *Resolver) canonicalFromContentID(ctx context.Context, logger *slog.Logger, cid string, res *resolution) string {
	cacheKey := cardcache.ContentIDKey(cid)
	if r.cache != nil {
		if name, ok := r.cache.LookupLocalized(cacheKey); ok {
			return name
		}
	}
	if r.secondary == nil {
		res.definitive = false
		return ""
	}
	r.progress.Publish(progress.Event{Kind: progress.KindLookup, Message: "looking up card id " + cid})
	name, err := r.secondary.CanonicalName(ctx, cid)
	if err != nil {
		res.note(logger, "reverse", err)
		return ""
	}
	name = strings.TrimSpace(name)
	if name != "" && r.cache != nil {
		r.cache.StoreLocalized(cacheKey, name)
	}
	return name
}

func (r *Resolver) localizeByCanonical(ctx context.Context, logger *slog.Logger, canonical string, res *resolution) string {
	if r.primary == nil {
		return canonical
	}
	name, err := r.primary.NameByCanonical(ctx, canonical, r.language)
	if err != nil {
		res.note(logger, "localized", err)
		return canonical
	}
	if name = strings.TrimSpace(name); name == "" {
		return canonical
	}
	return name
}

func (r *Resolver) fallbackLocalization(ctx context.Context, logger *slog.Logger, canonical string, res *resolution) string {
	if r.cache != nil {
		if name, ok := r.cache.LookupLocalized(canonical); ok {
			return name
		}
	}
	if r.secondary == nil {
		return ""
	}
	r.progress.Publish(progress.Event{Kind: progress.KindLookup, Message: "querying card database for " + canonical})
	name, err := r.secondary.LocalizedName(ctx, canonical)
	if err != nil {
		res.note(logger, "fallback", err)
		return ""
	}
	name = strings.TrimSpace(name)
	if name != "" && r.cache != nil {
		r.cache.StoreLocalized(canonical, name)
	}
	return name
}
