// Package config handles configuration loading, parsing, and validation
// from various sources (environment variables, files). It provides type-safe
// access to application settings needed by different components while keeping
// configuration details separate from business logic.
//
// Values come from defaults, then an optional YAML file (CLOZE_CONFIG_FILE or
// ./config.yaml), then CLOZE_-prefixed environment variables. The scoring
// section can be reloaded while the server runs.
package config
