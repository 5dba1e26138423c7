// Package config handles configuration loading, parsing, and validation
// from environment variables and an optional config file. Environment
// variables use the RECALL_ prefix, with dots in keys replaced by
// underscores (e.g. RECALL_SESSION_INACTIVITY_BOUNDARY).
package config
