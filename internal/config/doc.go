// Package config loads and validates the process configuration from
// environment variables. All configuration is resolved once at startup and
// injected into the pipeline at construction time.
package config
