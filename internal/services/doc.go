// Package services defines shared utilities consumed by the remote card
// sources and the resolution pipeline.
//
// Key responsibilities:
//   - Context helpers that stamp run correlation identifiers and deck section
//     names for logging.
//   - Structured error markers plus the Wrap helper that let the resolver tell
//     a missing card apart from a transport failure.
//
// The concrete source clients live in subpackages (ygoprodeck, konami).
package services
