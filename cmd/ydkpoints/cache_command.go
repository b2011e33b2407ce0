package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ydkpoints/internal/calculator"
	"ydkpoints/internal/cardcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the card cache",
		Long: `Inspect and manage the card cache.

The card cache stores resolved card names and scores between runs so decks
can be re-scored without looking every card up again. It is cleared
automatically when a different score table is loaded.

Commands:
  stats    - Show cache backend and entry counts
  clear    - Remove all cached entries`,
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func withCache(cmd *cobra.Command, ctx *commandContext, fn func(context.Context, *cardcache.Cache) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.newLogger(cmd)
	if err != nil {
		return err
	}
	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}
	cache, err := calculator.OpenCache(runCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer cache.Close()
	cache.Load(runCtx)
	return fn(runCtx, cache)
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache backend and entry counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, ctx, func(_ context.Context, cache *cardcache.Cache) error {
				stats := cache.Stats()
				if ctx.JSONMode() {
					return writeJSON(cmd, stats)
				}
				tableVersion := stats.TableVersion
				if tableVersion == "" {
					tableVersion = "none"
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%-17s %s\n", "Backend:", stats.Backend)
				fmt.Fprintf(out, "%-17s %s\n", "Score table:", tableVersion)
				fmt.Fprintf(out, "%-17s %d\n", "Results:", stats.Results)
				fmt.Fprintf(out, "%-17s %d\n", "Localized names:", stats.Localized)
				return nil
			})
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, ctx, func(runCtx context.Context, cache *cardcache.Cache) error {
				before := cache.Stats()
				if err := cache.Clear(runCtx); err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]int{"removed": before.Results + before.Localized})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached results and %d localized names\n", before.Results, before.Localized)
				return nil
			})
		},
	}
}
