// Package testutil holds the database plumbing shared by integration tests.
// Everything here skips the calling test when TEST_DATABASE_URL is unset, so
// `go test ./...` stays green on machines without Postgres.
package testutil

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/fleet-ledger/migrations"
)

// DSNEnv names the variable that opts a test run into integration tests.
const DSNEnv = "TEST_DATABASE_URL"

var (
	migrateOnce sync.Once
	migrateErr  error
)

// DSN returns the test database URL or skips t.
func DSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		t.Skip(DSNEnv + " not set; skipping integration test")
	}
	return dsn
}

// NewPool connects to the test database and closes the pool when t ends.
// The schema is not touched; see MigratedPool.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, DSN(t))
	require.NoError(t, err, "open pool")
	t.Cleanup(pool.Close)

	require.NoError(t, pool.Ping(ctx), "ping test database")
	return pool
}

// MigratedPool is NewPool with every migration applied. Migrations run at most
// once per test binary.
func MigratedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	pool := NewPool(t)
	migrateOnce.Do(func() {
		_, migrateErr = migrations.Up(context.Background(), pool)
	})
	require.NoError(t, migrateErr, "apply migrations")
	return pool
}

// NewTx opens a transaction on a migrated database and rolls it back when t
// ends, so each test sees an empty ledger and leaves nothing behind.
func NewTx(t *testing.T) pgx.Tx {
	t.Helper()
	ctx := context.Background()

	tx, err := MigratedPool(t).Begin(ctx)
	require.NoError(t, err, "begin transaction")
	t.Cleanup(func() { _ = tx.Rollback(ctx) })
	return tx
}
