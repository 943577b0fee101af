// Package config loads, normalizes, and validates dlassist configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENAI_API_KEY. The Config type centralizes every knob the daemon and CLI
// need, from the watched downloads folder through per-category destinations to
// notification and dashboard settings.
//
// The Store type layers dotted-key access ("duplicate_detection.compare_method")
// on top of a loaded Config and persists each Set by atomically rewriting the
// backing file, which is what the config CLI subcommands and the dashboard's
// configuration endpoints use.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical category names, and clear validation errors.
package config
