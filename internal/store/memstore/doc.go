// Package memstore provides in-memory implementations of the store
// interfaces. They honor the same uniqueness and latch rules as the
// PostgreSQL stores and are safe for concurrent use, which makes them
// suitable for service-level tests and local runs without a database.
package memstore
