// Package report turns resolved cards into grouped entries, section totals
// and the plain-text score report.
package report

import "fmt"

// Card is one resolved, non-omitted card in deck order.
type Card struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Entry is one report line. TotalScore sums the grouped cards; UnitScore is
// the score of the first card in the group.
type Entry struct {
	Name       string `json:"name"`
	Count      int    `json:"count"`
	TotalScore int    `json:"total_score"`
	UnitScore  int    `json:"unit_score"`
}

// Label renders the name with a multiplicity suffix for grouped entries.
func (e Entry) Label() string {
	if e.Count > 1 {
		return fmt.Sprintf("%s x%d", e.Name, e.Count)
	}
	return e.Name
}

// Line renders the full report line for the entry.
func (e Entry) Line() string {
	if e.Count > 1 {
		return fmt.Sprintf("%s - %d (%d)", e.Label(), e.TotalScore, e.UnitScore)
	}
	return fmt.Sprintf("%s - %d", e.Label(), e.TotalScore)
}

// Aggregate groups cards by exact display name. Groups keep the order of their
// first occurrence.
func Aggregate(cards []Card) []Entry {
	entries := make([]Entry, 0, len(cards))
	index := make(map[string]int, len(cards))
	for _, card := range cards {
		if i, ok := index[card.Name]; ok {
			entries[i].Count++
			entries[i].TotalScore += card.Score
			continue
		}
		index[card.Name] = len(entries)
		entries = append(entries, Entry{Name: card.Name, Count: 1, TotalScore: card.Score, UnitScore: card.Score})
	}
	return entries
}

// Passthrough maps every card to its own entry in original order.
func Passthrough(cards []Card) []Entry {
	entries := make([]Entry, len(cards))
	for i, card := range cards {
		entries[i] = Entry{Name: card.Name, Count: 1, TotalScore: card.Score, UnitScore: card.Score}
	}
	return entries
}

// Sum adds up card scores.
func Sum(cards []Card) int {
	total := 0
	for _, card := range cards {
		total += card.Score
	}
	return total
}
