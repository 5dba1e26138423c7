// Package testdb provides helpers for tests that run against a real
// PostgreSQL database.
//
// Tests using it should carry the integration build tag and are skipped
// when neither RECALL_TEST_DB_URL nor DATABASE_URL is set. The schema is
// migrated from the embedded goose migrations once per process.
package testdb
