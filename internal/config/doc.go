// Package config loads, normalizes, and validates chara configuration.
//
// Configuration is a single TOML file. Load applies repository defaults,
// overlays the file when it exists, expands ~ in path fields, and validates
// the result. Callers receive a fully normalized Config; no other package
// re-checks configuration invariants.
package config
