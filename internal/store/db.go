package store

import (
	"context"
	"database/sql"
)

// DBTX is the slice of *sql.DB and *sql.Tx the exercise archive needs: one
// insert per archived exercise and a ranged read by word. Integration tests
// pass a *sql.Tx so every write is rolled back.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}
