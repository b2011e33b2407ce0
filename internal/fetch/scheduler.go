// Package fetch runs per-card lookups on a bounded worker pool while keeping
// results in input order.
package fetch

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"ydkpoints/internal/logging"
	"ydkpoints/internal/progress"
	"ydkpoints/internal/services"
)

// DefaultWidth is the pool width used when none is configured.
const DefaultWidth = 10

// Scheduler bounds how many lookups run at once.
type Scheduler struct {
	Width    int
	Progress *progress.Hub
	Logger   *slog.Logger
}

func (s *Scheduler) width() int {
	if s == nil || s.Width <= 0 {
		return DefaultWidth
	}
	return s.Width
}

// ResolveAll calls fn for every item with at most Width calls in flight and
// returns the outputs in the order of items. It blocks until every call has
// returned. fn reports failures through its own return value, so one bad item
// never cancels the others.
func ResolveAll[I, T any](ctx context.Context, s *Scheduler, items []I, fn func(context.Context, I) T) []T {
	out := make([]T, len(items))
	if len(items) == 0 {
		return out
	}

	var hub *progress.Hub
	var logger *slog.Logger
	if s != nil {
		hub = s.Progress
		logger = s.Logger
	}
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "fetch"))
	section, _ := services.SectionFromContext(ctx)

	started := time.Now()
	total := len(items)
	var done atomic.Int64

	var g errgroup.Group
	g.SetLimit(s.width())
	for i, item := range items {
		g.Go(func() error {
			out[i] = fn(ctx, item)
			hub.Resolved(section, int(done.Add(1)), total)
			return nil
		})
	}
	_ = g.Wait()

	logger.Debug("batch resolved",
		logging.Int("items", total),
		logging.Int("width", s.width()),
		logging.Duration("elapsed", time.Since(started)))
	return out
}
