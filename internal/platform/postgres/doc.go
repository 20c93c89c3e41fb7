// Package postgres provides the PostgreSQL implementation of the exercise
// archive defined in the internal/store package. It opens connections through
// the pgx stdlib driver, applies the embedded goose migrations and maps
// database errors to store errors.
package postgres
