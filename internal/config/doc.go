// Package config loads, normalizes, and validates recsort configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// CLI and the organizer need: the state directory that holds logs, the run
// journal and locks, plus the sorting parameters (capacity cap, event gap,
// month splitting, filename policy).
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical policy names, and clear validation errors.
package config
