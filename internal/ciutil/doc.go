// Package ciutil detects the execution environment (CI or local development)
// and resolves the test database URL consistently across packages.
//
// Integration tests call GetTestDatabaseURL rather than reading environment
// variables directly, so that CI runners with stock Postgres credentials work
// without per-provider configuration.
package ciutil
