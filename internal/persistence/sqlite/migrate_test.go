// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateAppliesOnlyNewSteps(t *testing.T) {
	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "apigate.db"), DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	steps := []Migration{
		{Version: 1, SQL: `CREATE TABLE widgets (id INTEGER PRIMARY KEY)`},
	}
	require.NoError(t, Migrate(ctx, db, "widgets", steps))
	// Re-running is a no-op; the CREATE would fail otherwise.
	require.NoError(t, Migrate(ctx, db, "widgets", steps))

	steps = append(steps, Migration{Version: 2, SQL: `ALTER TABLE widgets ADD COLUMN name TEXT`})
	require.NoError(t, Migrate(ctx, db, "widgets", steps))

	v, err := SchemaVersion(ctx, db, "widgets")
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	v, err = SchemaVersion(ctx, db, "other")
	require.NoError(t, err)
	assert.Zero(t, v)

	_, err = db.ExecContext(ctx, `INSERT INTO widgets (id, name) VALUES (1, 'a')`)
	assert.NoError(t, err)
}

func TestMigrateRejectsOutOfOrderSteps(t *testing.T) {
	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "apigate.db"), DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	err = Migrate(ctx, db, "bad", []Migration{
		{Version: 2, SQL: `CREATE TABLE a (id INTEGER)`},
		{Version: 1, SQL: `CREATE TABLE b (id INTEGER)`},
	})
	assert.ErrorContains(t, err, "out of order")

	v, err := SchemaVersion(ctx, db, "bad")
	require.NoError(t, err)
	assert.Zero(t, v)
}
