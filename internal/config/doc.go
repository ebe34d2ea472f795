// Package config loads, normalizes, and validates subshift's TOML
// configuration. Defaults live in defaults.go; tunables surfaced to the CLI
// (similarity threshold, search window, outlier filter, sample budget) map
// directly onto config sections.
package config
