// Package config loads, normalizes, and validates dirchurn configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the DIRCHURN_API_TOKEN environment
// fallback. Worker periods are checked against the operator range here; the
// churn workers themselves accept any positive period.
package config
