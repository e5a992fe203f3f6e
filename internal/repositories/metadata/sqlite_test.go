package metadata

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB);`)
	require.NoError(t, err)
	return db
}

func TestSetGetUpsert(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	v, err := r.Get(ctx, KeyPrivacy)
	require.NoError(t, err)
	require.Nil(t, v, "missing key yields (nil, nil)")

	require.NoError(t, r.Set(ctx, KeyPrivacy, []byte("old")))
	require.NoError(t, r.Set(ctx, KeyPrivacy, []byte("new")))

	v, err = r.Get(ctx, KeyPrivacy)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), v)
}

func TestDeleteListClear(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte("1")))
	require.NoError(t, r.Set(ctx, "b", []byte("2")))
	require.NoError(t, r.Delete(ctx, "a"))
	require.NoError(t, r.Delete(ctx, "missing"))

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"b": []byte("2")}, all)

	require.NoError(t, r.Clear(ctx))
	all, err = r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestJSONHelpers(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	var when time.Time
	ok, err := GetJSON(ctx, r, KeyLastLocalBackup, &when)
	require.NoError(t, err)
	assert.False(t, ok)

	want := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, SetJSON(ctx, r, KeyLastLocalBackup, want))

	ok, err = GetJSON(ctx, r, KeyLastLocalBackup, &when)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, want.Equal(when))

	require.NoError(t, r.Set(ctx, "broken", []byte("{")))
	var x map[string]int
	_, err = GetJSON(ctx, r, "broken", &x)
	require.ErrorContains(t, err, "failed to decode metadata[broken]")
}
