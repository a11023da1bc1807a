package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	assert.Equal(t, "file::memory:?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite", DSN(":memory:"))
	assert.Equal(t, "file:/tmp/x.db?mode=ro", DSN("file:/tmp/x.db?mode=ro"))
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db, err := NewSQLiteDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, RunMigrations(ctx, db))
	require.NoError(t, RunMigrations(ctx, db))

	var n int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('locations', 'venues', 'events', 'personnel_availability')`).Scan(&n))
	assert.Equal(t, 4, n)

	_, err = db.ExecContext(ctx, `INSERT INTO venues (name, capacity, personnel_required, location_id) VALUES ('x', 1, 1, 999)`)
	assert.Error(t, err, "foreign keys are enforced")

	require.NoError(t, DropAll(ctx, db))
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'events'`).Scan(&n))
	assert.Zero(t, n)
}
