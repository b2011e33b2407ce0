package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"ydkpoints/internal/report"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

const (
	ansiReset = "\x1b[0m"
	ansiBlue  = "\x1b[34m"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment, colorize bool) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if colorize {
		tw.Style().Color.Header = text.Colors{text.Bold, text.FgBlue}
	}

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// renderReportTable renders each section as its own table followed by the
// totals.
func renderReportTable(w io.Writer, r report.Report, colorize bool) error {
	var b strings.Builder
	sections := []*report.Section{&r.Main, r.Extra, r.Side}
	for _, section := range sections {
		if section == nil {
			continue
		}
		title := report.Heading(section.Name)
		if r.DeckName != "" {
			title = fmt.Sprintf("%s (%s)", title, r.DeckName)
		}
		b.WriteString(sectionHeader(title, colorize))
		b.WriteByte('\n')

		rows := make([][]string, 0, len(section.Entries))
		for _, e := range section.Entries {
			rows = append(rows, []string{e.Name, strconv.Itoa(e.Count), strconv.Itoa(e.UnitScore), strconv.Itoa(e.TotalScore)})
		}
		rows = append(rows, []string{"total", "", "", strconv.Itoa(section.Total)})
		b.WriteString(renderTable(
			[]string{"Card", "Copies", "Points", "Total"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
			colorize,
		))
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "%s total: %d\n", report.Heading("main"), r.MainTotal)
	if r.Side != nil {
		fmt.Fprintf(&b, "%s total: %d\n", report.Heading("side"), r.Side.Total)
	}
	fmt.Fprintf(&b, "Grand total: %d\n", r.GrandTotal)
	if r.TableVersion != "" {
		fmt.Fprintf(&b, "Score table: %s\n", r.TableVersion)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func sectionHeader(title string, colorize bool) string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	if colorize {
		return ansiBlue + line + ansiReset
	}
	return line
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
