// Package config loads, normalizes, and validates webgif configuration data.
//
// It supplies capture defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// WEBGIF_BROWSER and CHROME_PATH. The Config type centralizes every knob the
// CLI and the capture pipeline need so command flags only have to override
// what the user explicitly set.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
