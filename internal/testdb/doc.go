// Package testdb provides helpers for tests that need a real PostgreSQL
// database. Tests using it are skipped unless CLOZE_TEST_DATABASE_URL is set.
package testdb
