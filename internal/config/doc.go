// Package config loads, normalizes, and validates scenecraft configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SCENECRAFT_WORK_DIR. The Config type centralizes every knob the alignment,
// builder, and autofill components need so the CLI can discover working
// directories, probe settings, and asset geometry in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
