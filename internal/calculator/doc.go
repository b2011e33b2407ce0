// Package calculator runs one scoring session: it loads the score table,
// opens the card cache, resolves every card of a deck through the bounded
// scheduler and assembles the report. Close persists the cache.
package calculator
