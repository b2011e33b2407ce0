package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ydkpoints/internal/calculator"
	"ydkpoints/internal/config"
	"ydkpoints/internal/logging"
	"ydkpoints/internal/progress"
	"ydkpoints/internal/report"
	"ydkpoints/internal/services"
)

type calcFlags struct {
	showZero     bool
	fallback     bool
	includeSide  bool
	aggregate    bool
	table        bool
	scoreTable   string
	workers      int
	cacheEnabled bool
}

func newCalcCommand(ctx *commandContext) *cobra.Command {
	var flags calcFlags

	cmd := &cobra.Command{
		Use:   "calc <deck.ydk|deck name|url>",
		Short: "Score a deck",
		Long: `Score a local .ydk deck file or a deck-builder page.

A bare deck name is looked up in paths.deck_dir (the .ydk extension is
optional). Every switch defaults to the [resolve] section of the config file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyCalcFlags(cmd, cfg, flags); err != nil {
				return err
			}

			logger, err := ctx.newLogger(cmd)
			if err != nil {
				return err
			}

			hub := progress.NewHub(0)
			hub.AddSink(progressLogSink(logger))

			runCtx := cmd.Context()
			if runCtx == nil {
				runCtx = context.Background()
			}
			session, err := calculator.Open(runCtx, calculator.Options{
				Config:   cfg,
				Progress: hub,
				Logger:   logger,
			})
			if err != nil {
				return err
			}
			runCtx = services.WithRunID(runCtx, session.RunID())

			target := resolveDeckTarget(args[0], cfg.Paths.DeckDir)
			r, calcErr := session.Calculate(runCtx, target, calculator.ResolveOptions(cfg))
			if closeErr := session.Close(runCtx); closeErr != nil {
				logging.WarnWithContext(logging.WithContext(runCtx, logger), "failed to persist card cache", "cardcache_persist_failed",
					logging.Error(closeErr),
					logging.String(logging.FieldErrorHint, "check permissions on paths.cache_path"),
					logging.String(logging.FieldImpact, "the next run will look cards up again"))
			}
			if calcErr != nil {
				return calcErr
			}

			switch {
			case ctx.JSONMode():
				return writeJSON(cmd, r)
			case flags.table:
				return renderReportTable(cmd.OutOrStdout(), r, shouldColorize(cmd.OutOrStdout()))
			default:
				return report.Render(cmd.OutOrStdout(), r)
			}
		},
	}

	cmd.Flags().BoolVar(&flags.showZero, "show-zero", false, "List cards that score 0")
	cmd.Flags().BoolVar(&flags.fallback, "localize-fallback", true, "Ask the official database when no localized name is known")
	cmd.Flags().BoolVar(&flags.includeSide, "side", false, "Resolve the side deck and add it to the grand total")
	cmd.Flags().BoolVar(&flags.aggregate, "aggregate", false, "Group duplicate cards into one line")
	cmd.Flags().BoolVar(&flags.table, "table", false, "Render the report as tables")
	cmd.Flags().StringVar(&flags.scoreTable, "score-table", "", "Score document to use instead of the newest in paths.score_table_dir")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Concurrent card lookups")
	cmd.Flags().BoolVar(&flags.cacheEnabled, "cache", true, "Use the card cache")
	return cmd
}

// applyCalcFlags overrides config values only for flags given on the command
// line.
func applyCalcFlags(cmd *cobra.Command, cfg *config.Config, flags calcFlags) error {
	changed := cmd.Flags().Changed
	if changed("show-zero") {
		cfg.Resolve.ShowZeroScoreCards = flags.showZero
	}
	if changed("localize-fallback") {
		cfg.Resolve.UseLocalizationFallback = flags.fallback
	}
	if changed("side") {
		cfg.Resolve.IncludeSideDeck = flags.includeSide
	}
	if changed("aggregate") {
		cfg.Resolve.AggregateDuplicates = flags.aggregate
	}
	if changed("workers") && flags.workers > 0 {
		cfg.Resolve.Workers = min(flags.workers, config.MaxWorkers)
	}
	if changed("cache") {
		cfg.Cache.Enabled = flags.cacheEnabled
	}
	if changed("score-table") {
		expanded, err := config.ExpandPath(strings.TrimSpace(flags.scoreTable))
		if err != nil {
			return fmt.Errorf("--score-table: %w", err)
		}
		cfg.Paths.ScoreTable = expanded
	}
	return nil
}

// resolveDeckTarget maps a bare deck name onto the deck folder when no such
// file exists relative to the working directory.
func resolveDeckTarget(arg, deckDir string) string {
	if calculator.IsRemote(arg) || deckDir == "" {
		return arg
	}
	if _, err := os.Stat(arg); err == nil || !errors.Is(err, fs.ErrNotExist) {
		return arg
	}
	if filepath.Base(arg) != arg {
		return arg
	}
	candidates := []string{filepath.Join(deckDir, arg)}
	if !strings.EqualFold(filepath.Ext(arg), ".ydk") {
		candidates = append(candidates, filepath.Join(deckDir, arg+".ydk"))
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return arg
}

func progressLogSink(logger *slog.Logger) progress.Sink {
	return progress.SinkFunc(func(evt progress.Event) {
		attrs := []logging.Attr{logging.String("progress", string(evt.Kind))}
		if evt.Section != "" {
			attrs = append(attrs, logging.String(logging.FieldSection, evt.Section))
		}
		switch evt.Kind {
		case progress.KindStage:
			logger.Info(evt.Message, logging.Args(attrs...)...)
		default:
			logger.Debug(evt.Message, logging.Args(attrs...)...)
		}
	})
}
