// Package config loads, normalizes, and validates ocarina configuration.
//
// Settings come from three layers, later ones winning: built-in defaults, a
// TOML file, and OCARINA_* environment variables. Command-line flags are
// applied by the CLI on top of the returned Config.
//
// Always obtain settings through this package so downstream code receives
// expanded paths and a canonical log level.
package config
