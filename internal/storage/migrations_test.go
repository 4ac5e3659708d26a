package storage

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openRawDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open(DriverName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestApplyMigrations(t *testing.T) {
	ctx := context.Background()
	db := openRawDB(t)

	v, err := CurrentVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0", v.String())

	require.NoError(t, ApplyMigrations(ctx, db))
	v, err = CurrentVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, v.String())

	// idempotent
	require.NoError(t, ApplyMigrations(ctx, db))

	_, err = db.ExecContext(ctx, `INSERT INTO entries (id, vector, text, chunk_index, source_id, title)
		VALUES ('a:0', X'00', 't', 0, 's', 'Title')`)
	require.NoError(t, err)
}

func TestRollbackMigration(t *testing.T) {
	ctx := context.Background()
	db := openRawDB(t)
	require.NoError(t, ApplyMigrations(ctx, db))

	require.NoError(t, RollbackMigration(ctx, db))
	v, err := CurrentVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", v.String())

	// title column is gone after rolling back 1.1.0
	_, err = db.ExecContext(ctx, `INSERT INTO entries (id, vector, text, chunk_index, source_id, title)
		VALUES ('a:0', X'00', 't', 0, 's', 'Title')`)
	assert.Error(t, err)

	require.NoError(t, ApplyMigrations(ctx, db))
	v, err = CurrentVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, v.String())
}
