// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, so the exercise archive can be backed by
// PostgreSQL in production and by in-memory fakes in tests.
package store
