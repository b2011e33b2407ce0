// Command ydkpoints scores Yu-Gi-Oh! decks against a point list.
//
// It reads a local .ydk deck file or a deck-builder page URL, resolves every
// card to its localized name and score, and prints the per-section and grand
// totals as text, a table or JSON. Subcommands manage the deck folder, the
// card cache, the versioned score documents and the configuration file.
package main
