package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/writer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func columns(t *testing.T, db *sql.DB, table string) map[string]bool {
	t.Helper()
	rows, err := db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	require.NoError(t, err)
	defer rows.Close()
	cols := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		cols[name] = true
	}
	require.NoError(t, rows.Err())
	return cols
}

func openTemp(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "writer.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen_AppliesWholeLadder(t *testing.T) {
	db := openTemp(t)

	for _, name := range []string{"entries", "categories", "metadata", "goose_db_version"} {
		assert.True(t, tableExists(t, db, name), name)
	}

	cols := columns(t, db, "entries")
	for _, c := range []string{"_id", "title", "body", "category_id", "is_encrypted",
		"sync_status", "last_synced_at", "server_id", "is_deleted"} {
		assert.True(t, cols[c], "entries.%s", c)
	}

	v, err := Version(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()

	require.NoError(t, RunMigrations(ctx, db))
	require.NoError(t, RunMigrations(ctx, db))

	v, err := Version(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)
}

func TestMigrate_UpgradesVersionOneData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "old.db")

	db, err := OpenNoMigrate(ctx, path)
	require.NoError(t, err)
	v, err := Version(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)
	require.NoError(t, MigrateTo(ctx, db, 1))
	_, err = db.Exec(`INSERT INTO entries (title, body) VALUES ('legacy', 'text')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	upgraded, err := Open(ctx, path)
	require.NoError(t, err)
	defer upgraded.Close()

	repos := NewRepositories(upgraded)
	list, err := repos.Entries.List(ctx, models.MainCategoryID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "legacy", list[0].Title)
	assert.False(t, list[0].IsEncrypted)
	assert.Equal(t, models.SyncPending, list[0].SyncStatus)
}

func TestMigrateTo_DownAndBackUp(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()

	require.NoError(t, MigrateTo(ctx, db, 2))
	assert.False(t, columns(t, db, "entries")["is_encrypted"])
	assert.False(t, tableExists(t, db, "metadata"))

	require.NoError(t, MigrateTo(ctx, db, 5))
	assert.True(t, columns(t, db, "entries")["is_encrypted"])
	assert.True(t, tableExists(t, db, "metadata"))
}
