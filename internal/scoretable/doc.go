// Package scoretable loads the point lists that map canonical card names to
// scores.
//
// A score document is tab separated, one "name<TAB>score" row per line, with
// a header row first. Loading never fails because of a single bad row: blank
// lines are skipped, a row without a name is dropped and a row with an
// unparseable score counts as 0. Both cases are reported as Diagnostics.
//
// Score documents are versioned by file name (point_YYMMDD.txt). Catalog lists
// the documents in a directory newest first and Download stores a remote
// document next to them.
package scoretable
