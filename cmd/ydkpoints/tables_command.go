package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"ydkpoints/internal/logging"
	"ydkpoints/internal/scoretable"
)

type tableSummary struct {
	Version  string    `json:"version"`
	Path     string    `json:"path"`
	Modified time.Time `json:"modified"`
	Active   bool      `json:"active"`
}

func newTablesCommand(ctx *commandContext) *cobra.Command {
	tablesCmd := &cobra.Command{
		Use:   "tables",
		Short: "Manage versioned score documents",
	}
	tablesCmd.AddCommand(newTablesListCommand(ctx))
	tablesCmd.AddCommand(newTablesFetchCommand(ctx))
	tablesCmd.AddCommand(newTablesImportCommand(ctx))
	return tablesCmd
}

func newTablesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List score documents, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			docs, err := scoretable.Catalog(cfg.Paths.ScoreTableDir)
			if err != nil {
				return err
			}

			summaries := make([]tableSummary, 0, len(docs)+1)
			activeSet := false
			if cfg.Paths.ScoreTable != "" {
				summaries = append(summaries, tableSummary{
					Version: scoretable.VersionFromPath(cfg.Paths.ScoreTable),
					Path:    cfg.Paths.ScoreTable,
					Active:  true,
				})
				activeSet = true
			}
			for i, doc := range docs {
				summaries = append(summaries, tableSummary{
					Version:  doc.Version,
					Path:     doc.Path,
					Modified: doc.Modified,
					Active:   !activeSet && i == 0,
				})
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, summaries)
			}
			out := cmd.OutOrStdout()
			if len(summaries) == 0 {
				fmt.Fprintf(out, "No score documents in %s\n", cfg.Paths.ScoreTableDir)
				return nil
			}
			rows := make([][]string, 0, len(summaries))
			for _, s := range summaries {
				modified := "-"
				if !s.Modified.IsZero() {
					modified = s.Modified.Local().Format("2006-01-02")
				}
				rows = append(rows, []string{s.Version, yesNo(s.Active), modified, s.Path})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Version", "Active", "Modified", "Path"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				shouldColorize(out),
			))
			return nil
		},
	}
}

func newTablesFetchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <url>",
		Short: "Download a point_<version>.txt document into the score table folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			client := &http.Client{Timeout: time.Duration(cfg.Sources.SecondaryTimeoutSeconds) * time.Second}
			doc, err := scoretable.Download(runCtx, client, args[0], cfg.Paths.ScoreTableDir)
			if err != nil {
				return err
			}
			table, diags, err := scoretable.LoadFile(doc.Path)
			if err != nil {
				return err
			}
			for _, d := range diags {
				logging.WarnWithContext(logger, "score table row recovered", "score_table_row",
					logging.String("path", doc.Path),
					logging.Int("line", d.Line),
					logging.String("reason", d.Reason))
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{"version": doc.Version, "path": doc.Path, "cards": table.Len()})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d cards) to %s\n", doc.Version, table.Len(), doc.Path)
			return nil
		},
	}
}

func newTablesImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Copy a local point_<version>.txt document into the score table folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			doc, err := scoretable.Import(args[0], cfg.Paths.ScoreTableDir)
			if err != nil {
				return err
			}
			table, _, err := scoretable.LoadFile(doc.Path)
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{"version": doc.Version, "path": doc.Path, "cards": table.Len()})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%d cards) to %s\n", doc.Version, table.Len(), doc.Path)
			return nil
		},
	}
}
