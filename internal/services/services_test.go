package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/writer/internal/common"
	"github.com/dmitrijs2005/writer/internal/database"
	"github.com/dmitrijs2005/writer/internal/models"
	"github.com/dmitrijs2005/writer/internal/privacy"
	"github.com/dmitrijs2005/writer/internal/repositories/metadata"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(context.Background(), filepath.Join(t.TempDir(), "writer.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCategoryDelete_CascadesToEntries(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	cats := NewCategoryService(db)
	ents := NewEntryService(db)

	work, err := cats.Create(ctx, "Work")
	require.NoError(t, err)
	home, err := cats.Create(ctx, "Home")
	require.NoError(t, err)

	var workIDs []int64
	for _, title := range []string{"a", "b", "c"} {
		id, err := ents.Create(ctx, &models.Entry{Title: title, CategoryID: work.ID})
		require.NoError(t, err)
		workIDs = append(workIDs, id)
	}
	homeID, err := ents.Create(ctx, &models.Entry{Title: "h", CategoryID: home.ID})
	require.NoError(t, err)

	n, err := cats.Delete(ctx, work.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	for _, id := range workIDs {
		_, err := ents.Get(ctx, id)
		require.ErrorIs(t, err, common.ErrNotFound)

		var deleted bool
		var status string
		require.NoError(t, db.QueryRow(`SELECT is_deleted, sync_status FROM entries WHERE _id=?`, id).Scan(&deleted, &status))
		assert.True(t, deleted)
		assert.Equal(t, "pending", status)
	}

	_, err = ents.Get(ctx, homeID)
	require.NoError(t, err)

	list, err := cats.List(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(list))
	for _, c := range list {
		names = append(names, c.Name)
	}
	if diff := cmp.Diff([]string{"Main", "Home"}, names); diff != "" {
		t.Fatalf("categories mismatch (-want +got):\n%s", diff)
	}
}

func TestCategoryDelete_MissingCategoryRollsBack(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	cats := NewCategoryService(db)
	ents := NewEntryService(db)

	// Entry pointing at a category id that has no row.
	id, err := ents.Create(ctx, &models.Entry{Title: "orphan", CategoryID: 77})
	require.NoError(t, err)

	_, err = cats.Delete(ctx, 77)
	require.ErrorIs(t, err, common.ErrNotFound)

	_, err = ents.Get(ctx, id)
	require.NoError(t, err, "entry must survive the rolled back cascade")
}

func TestCategoryService_MainIsProtected(t *testing.T) {
	cats := NewCategoryService(setupDB(t))
	ctx := context.Background()

	_, err := cats.Delete(ctx, models.MainCategoryID)
	require.ErrorIs(t, err, common.ErrMainCategory)
	require.ErrorIs(t, cats.Rename(ctx, models.MainCategoryID, "x"), common.ErrMainCategory)

	_, err = cats.Create(ctx, "main")
	require.Error(t, err)

	got, err := cats.Get(ctx, models.MainCategoryID)
	require.NoError(t, err)
	assert.Equal(t, "Main", got.Name)
}

func TestCategoryService_Rename(t *testing.T) {
	cats := NewCategoryService(setupDB(t))
	ctx := context.Background()

	c, err := cats.Create(ctx, "  Tmp ")
	require.NoError(t, err)
	assert.Equal(t, "Tmp", c.Name)

	require.NoError(t, cats.Rename(ctx, c.ID, "Ideas"))
	require.Error(t, cats.Rename(ctx, c.ID, ""))

	got, err := cats.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ideas", got.Name)
}

func TestEntryService_MoveAndDelete(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	cats := NewCategoryService(db)
	ents := NewEntryService(db)

	c, err := cats.Create(ctx, "Later")
	require.NoError(t, err)
	id, err := ents.Create(ctx, &models.Entry{Title: "x", CategoryID: models.MainCategoryID})
	require.NoError(t, err)

	require.Error(t, ents.Move(ctx, id, 999))
	require.NoError(t, ents.Move(ctx, id, c.ID))

	list, err := ents.List(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, ents.Move(ctx, id, models.MainCategoryID))
	list, err = ents.List(ctx, models.MainCategoryID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, ents.Delete(ctx, id))
	require.ErrorIs(t, ents.Delete(ctx, id), common.ErrNotFound)

	pending, err := ents.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.True(t, pending[0].IsDeleted)
}

func TestEntryService_Details(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	cats := NewCategoryService(db)
	ents := NewEntryService(db)

	c, err := cats.Create(ctx, "Journal")
	require.NoError(t, err)
	id, err := ents.Create(ctx, &models.Entry{Title: "day one", CategoryID: c.ID})
	require.NoError(t, err)

	d, err := ents.Details(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, d.ID)
	assert.Equal(t, "Journal", d.Category)
	assert.False(t, d.CreatedAt.IsZero())
	assert.False(t, d.UpdatedAt.Before(d.CreatedAt))
	assert.Equal(t, models.SyncPending, d.SyncStatus)

	mainID, err := ents.Create(ctx, &models.Entry{Body: "loose"})
	require.NoError(t, err)
	d, err = ents.Details(ctx, mainID)
	require.NoError(t, err)
	assert.Equal(t, models.MainCategoryName, d.Category)

	_, err = ents.Details(ctx, 12345)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestEntryService_CreateEmptyIsRejected(t *testing.T) {
	ents := NewEntryService(setupDB(t))
	_, err := ents.Create(context.Background(), &models.Entry{})
	require.ErrorIs(t, err, common.ErrEmptyEntry)
}

func TestCopyText(t *testing.T) {
	assert.Equal(t, "body", CopyText("", "body"))
	assert.Equal(t, "title\nbody", CopyText("title", "body"))
}

func TestSettingsService(t *testing.T) {
	s := NewSettingsService(setupDB(t))
	ctx := context.Background()

	def := privacy.Settings{Meter: 10}
	got, err := s.Privacy(ctx, def)
	require.NoError(t, err)
	assert.Equal(t, def, got)

	want := privacy.Settings{Enabled: true, Meter: 120, Scanlines: 30, Aberration: 5, Shadow: true}
	require.NoError(t, s.SetPrivacy(ctx, want))
	got, err = s.Privacy(ctx, def)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.Error(t, s.SetPrivacy(ctx, privacy.Settings{Meter: 999}))

	last, err := s.LastBackup(ctx, metadata.KeyLastLocalBackup)
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	at := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	require.NoError(t, s.MarkBackup(ctx, metadata.KeyLastLocalBackup, at))
	last, err = s.LastBackup(ctx, metadata.KeyLastLocalBackup)
	require.NoError(t, err)
	assert.True(t, at.Equal(last))
}
