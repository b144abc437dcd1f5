// Package config loads, normalizes, and validates taxonsort configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// INAT_ACCESS_TOKEN. The Config type centralizes every knob the CLI needs,
// allowing API credentials, batch pacing, and organizer placeholders to be
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
