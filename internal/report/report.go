package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Section is one rendered deck group.
type Section struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
}

// Report is the finished score report of one deck.
type Report struct {
	DeckName     string   `json:"deck"`
	TableVersion string   `json:"table_version"`
	Main         Section  `json:"main"`
	Extra        *Section `json:"extra,omitempty"`
	Side         *Section `json:"side,omitempty"`
	MainTotal    int      `json:"main_total"`
	GrandTotal   int      `json:"grand_total"`
}

// Input carries the resolved cards of each section.
type Input struct {
	DeckName     string
	TableVersion string
	Main         []Card
	Extra        []Card
	Side         []Card
	IncludeSide  bool
	Aggregate    bool
}

// Build assembles a report. Extra-deck scores count towards the main total;
// the side total joins the grand total only when the side deck is included.
func Build(in Input) Report {
	group := Passthrough
	if in.Aggregate {
		group = Aggregate
	}

	r := Report{
		DeckName:     in.DeckName,
		TableVersion: in.TableVersion,
		Main:         Section{Name: "main", Entries: group(in.Main), Total: Sum(in.Main)},
	}
	r.MainTotal = r.Main.Total
	if len(in.Extra) > 0 {
		r.Extra = &Section{Name: "extra", Entries: group(in.Extra), Total: Sum(in.Extra)}
		r.MainTotal += r.Extra.Total
	}
	r.GrandTotal = r.MainTotal
	if in.IncludeSide {
		r.Side = &Section{Name: "side", Entries: group(in.Side), Total: Sum(in.Side)}
		r.GrandTotal += r.Side.Total
	}
	return r
}

var titleCaser = cases.Title(language.English)

// Heading returns the display heading for a section name.
func Heading(section string) string {
	return titleCaser.String(section + " deck")
}

// Render writes the plain-text report.
func Render(w io.Writer, r Report) error {
	var b strings.Builder
	suffix := ""
	if r.DeckName != "" {
		suffix = " (" + r.DeckName + ")"
	}

	writeSection := func(s Section) {
		fmt.Fprintf(&b, "--- %s%s ---\n", Heading(s.Name), suffix)
		for _, e := range s.Entries {
			b.WriteString(e.Line())
			b.WriteByte('\n')
		}
	}

	writeSection(r.Main)
	if r.Extra != nil {
		b.WriteByte('\n')
		writeSection(*r.Extra)
	}
	fmt.Fprintf(&b, "\n%s total: %d\n", Heading("main"), r.MainTotal)

	if r.Side != nil {
		b.WriteByte('\n')
		writeSection(*r.Side)
		fmt.Fprintf(&b, "\n%s total: %d\n", Heading("side"), r.Side.Total)
	}
	fmt.Fprintf(&b, "\n--- Grand Total: %d ---\n", r.GrandTotal)

	_, err := io.WriteString(w, b.String())
	return err
}
