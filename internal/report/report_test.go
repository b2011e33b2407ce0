package report

import (
	"bytes"
	"reflect"
	"testing"
)

func goldenCards() []Card {
	return []Card{{"Card A", 10}, {"Card B", 5}, {"Card A", 10}, {"Card A", 10}}
}

func TestAggregateGolden(t *testing.T) {
	got := Aggregate(goldenCards())
	want := []Entry{
		{Name: "Card A", Count: 3, TotalScore: 30, UnitScore: 10},
		{Name: "Card B", Count: 1, TotalScore: 5, UnitScore: 5},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Aggregate = %+v, want %+v", got, want)
	}
	if got[0].Label() != "Card A x3" || got[1].Label() != "Card B" {
		t.Fatalf("labels = %q %q", got[0].Label(), got[1].Label())
	}
	for _, e := range got {
		if e.TotalScore != e.Count*e.UnitScore {
			t.Fatalf("entry %+v breaks total = count * unit", e)
		}
	}
}

func TestAggregateSumsMixedScoresUnderOneName(t *testing.T) {
	cards := []Card{{"Shared Name", 3}, {"Other", 1}, {"Shared Name", 1}}
	got := Aggregate(cards)
	if len(got) != 2 || got[0].Count != 2 || got[0].TotalScore != 4 {
		t.Fatalf("Aggregate = %+v, want Shared Name x2 totalling 4", got)
	}
	sum := 0
	for _, e := range got {
		sum += e.TotalScore
	}
	if sum != Sum(cards) {
		t.Fatalf("entry totals %d disagree with Sum %d", sum, Sum(cards))
	}
}

func TestPassthroughKeepsOrder(t *testing.T) {
	got := Passthrough(goldenCards())
	if len(got) != 4 {
		t.Fatalf("len = %d", len(got))
	}
	names := []string{"Card A", "Card B", "Card A", "Card A"}
	for i, e := range got {
		if e.Name != names[i] || e.Count != 1 || e.Label() != names[i] {
			t.Fatalf("entry %d = %+v", i, e)
		}
	}
}

func TestBuildTotals(t *testing.T) {
	tests := []struct {
		name      string
		in        Input
		mainTotal int
		grand     int
		hasSide   bool
	}{
		{
			name:      "side excluded",
			in:        Input{Main: []Card{{"A", 2}}, Side: []Card{{"S", 7}}},
			mainTotal: 2,
			grand:     2,
		},
		{
			name:      "side included",
			in:        Input{Main: []Card{{"A", 2}}, Side: []Card{{"S", 7}}, IncludeSide: true},
			mainTotal: 2,
			grand:     9,
			hasSide:   true,
		},
		{
			name:      "extra counts towards main",
			in:        Input{Main: []Card{{"A", 2}}, Extra: []Card{{"E", 4}}},
			mainTotal: 6,
			grand:     6,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Build(tt.in)
			if r.MainTotal != tt.mainTotal || r.GrandTotal != tt.grand {
				t.Fatalf("main=%d grand=%d, want %d %d", r.MainTotal, r.GrandTotal, tt.mainTotal, tt.grand)
			}
			if (r.Side != nil) != tt.hasSide {
				t.Fatalf("side present = %v", r.Side != nil)
			}
		})
	}
}

func TestRenderGolden(t *testing.T) {
	r := Build(Input{
		DeckName:    "tenpai.ydk",
		Main:        goldenCards(),
		Side:        []Card{{"Card S", 1}},
		IncludeSide: true,
		Aggregate:   true,
	})
	var buf bytes.Buffer
	if err := Render(&buf, r); err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := `--- Main Deck (tenpai.ydk) ---
Card A x3 - 30 (10)
Card B - 5

Main Deck total: 35

--- Side Deck (tenpai.ydk) ---
Card S - 1

Side Deck total: 1

--- Grand Total: 36 ---
`
	if buf.String() != want {
		t.Fatalf("unexpected report:\n%s\nwant:\n%s", buf.String(), want)
	}
}
