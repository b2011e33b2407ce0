// Package config loads, normalizes, and validates ydkpoints configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the YDKPOINTS_SCORE_TABLE
// environment fallback. The Config type centralizes every knob the CLI and the
// resolution pipeline need: deck and score-table locations, remote source
// endpoints, worker-pool width, default resolution options, cache backend and
// logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
