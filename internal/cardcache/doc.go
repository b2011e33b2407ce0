// Package cardcache keeps resolved card results between runs.
//
// The cache holds two stores, each behind its own mutex: localized display
// names keyed by canonical name (or "cid:<value>" for reverse lookups) and
// full resolution results keyed by identifier plus the options that change
// the outcome. Omissions are stored like any other result.
//
// A Backend persists both stores as one snapshot together with the version of
// the score table that produced them. FileBackend writes a JSON document under
// an advisory file lock; SQLiteBackend keeps the same data in a small SQLite
// database.
package cardcache
