package main

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ydkpoints/internal/config"
	"ydkpoints/internal/deck"
)

type deckSummary struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Main  int    `json:"main"`
	Side  int    `json:"side"`
	Error string `json:"error,omitempty"`
}

func newDecksCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "decks [dir]",
		Short: "List .ydk decks in the deck folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dir := cfg.Paths.DeckDir
			if len(args) == 1 {
				if dir, err = config.ExpandPath(strings.TrimSpace(args[0])); err != nil {
					return fmt.Errorf("resolve deck dir: %w", err)
				}
			}

			names, err := deck.ListDecks(dir)
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			summaries := make([]deckSummary, 0, len(names))
			for _, name := range names {
				path := filepath.Join(dir, name)
				summary := deckSummary{Name: name, Path: path}
				d, err := deck.ParseYDKFile(path)
				if err != nil {
					summary.Error = err.Error()
				} else {
					summary.Main = len(d.Main)
					summary.Side = len(d.Side)
				}
				summaries = append(summaries, summary)
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, summaries)
			}

			out := cmd.OutOrStdout()
			if len(summaries) == 0 {
				fmt.Fprintf(out, "No decks in %s\n", dir)
				return nil
			}
			rows := make([][]string, 0, len(summaries))
			for _, s := range summaries {
				status := "ok"
				if s.Error != "" {
					status = s.Error
				}
				rows = append(rows, []string{s.Name, strconv.Itoa(s.Main), strconv.Itoa(s.Side), status})
			}
			fmt.Fprintf(out, "Decks in %s\n", dir)
			fmt.Fprintln(out, renderTable(
				[]string{"Deck", "Main", "Side", "Status"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
				shouldColorize(out),
			))
			return nil
		},
	}
}
