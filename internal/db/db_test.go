package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_SQLiteIdempotent(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "tasks.db") + "?_time_format=sqlite"

	database, err := Connect(ctx, "sqlite", dsn)
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, Migrate(ctx, database, "sqlite"))
	require.NoError(t, Migrate(ctx, database, "sqlite"))

	var n int
	err = database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('tasks', 'analytics_events')`,
	).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMigrate_RejectsEmptyTitle(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "tasks.db") + "?_time_format=sqlite"

	database, err := Connect(ctx, "sqlite", dsn)
	require.NoError(t, err)
	defer database.Close()
	require.NoError(t, Migrate(ctx, database, "sqlite"))

	_, err = database.ExecContext(ctx,
		`INSERT INTO tasks (id, title, created_at, updated_at) VALUES ('a', '', '2024-01-01 00:00:00', '2024-01-01 00:00:00')`,
	)
	assert.Error(t, err)
}
