// Package resolver turns one card identifier into a display name and score.
//
// Passcodes are looked up in the primary card database, first in English to
// obtain the canonical name used for scoring, then in the localized language
// for display. When the localized name is missing (it equals the canonical
// name) the secondary database can be asked instead. Content ids from deck
// builder pages are first reverse-resolved to a canonical name through the
// secondary database.
//
// Lookup failures never abort: an unknown passcode becomes a placeholder
// scored 0. Every definitive outcome, omissions included, is written to the
// injected cache under a key that also covers the options that shaped it.
package resolver
