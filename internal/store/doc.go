// Package store declares the persistence interfaces for learnable items,
// review sessions, engagement records and boss round attempts, together with
// the sentinel errors implementations must return.
//
// Implementations live in internal/platform/postgres and, for tests and
// local runs, internal/store/memstore.
package store
