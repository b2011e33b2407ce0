// Package deck extracts ordered card identifiers from deck-list documents.
//
// Two document shapes are supported. Local .ydk files are line oriented: a
// "!side" line switches to the side section, blank lines and lines starting
// with "#" or "!" are skipped, and every other line must be a numeric
// passcode. The format carries no extra-deck boundary the parser can rely on,
// so extra-deck passcodes stay in the main section.
//
// Remote deck-builder pages embed "cid=<digits>" tokens inside per-section
// markup. ParseHTML first selects the section containers with goquery; when the layout does
// not match it falls back to classifying each token by the nearest section
// keyword inside a fixed-size window of the document. Tokens with no keyword
// in their window are dropped. Scrape duplicates are removed per section, which
// is unrelated to counting real multiple copies (that happens after names are
// resolved).
package deck
