package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	// Register the pgx driver with database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// URLEnv names the environment variable holding the test database URL.
const URLEnv = "CLOZE_TEST_DATABASE_URL"

const connectTimeout = 5 * time.Second

// URL returns the test database URL, skipping t when none is configured.
func URL(t testing.TB) string {
	t.Helper()
	dsn := os.Getenv(URLEnv)
	if dsn == "" {
		t.Skipf("%s not set, skipping database test", URLEnv)
	}
	return dsn
}

// Open connects to the test database and closes it when t finishes.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", URL(t))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("ping test database: %v", err)
	}
	return db
}

// WithTx runs fn inside a transaction that is always rolled back, so tests
// leave no rows behind.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("begin test transaction: %v", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Errorf("rollback test transaction: %v", err)
		}
	}()

	fn(t, tx)
}
