// Package config loads, normalizes, and validates contactsync configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts),
// resolves workspace-relative paths, reads TOML files, and honours
// environment fallbacks such as OPENROUTER_API_KEY and GEMINI_API_KEY (also
// read from .env and .env.local). The Config type centralizes every knob the
// CLI and pipeline need so matching thresholds, input files, and output
// directories are discovered in one pass.
package config
