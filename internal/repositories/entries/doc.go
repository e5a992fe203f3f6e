// Package entries is the persistence gateway for notes.
//
// The Repository interface covers create, read, update, move and soft delete.
// SQLiteRepository implements it over a dbx.DBTX, so the same code runs on a
// *sql.DB or inside a transaction opened with dbx.WithTx.
//
// Deletes are soft: the row keeps its data, is_deleted is set and
// sync_status goes back to pending. Every write marks the row pending; the
// sync columns are bookkeeping only and nothing here talks to a server.
//
// Typical usage:
//
//	repo := entries.NewSQLiteRepository(db)
//	id, err := repo.Create(ctx, &models.Entry{Title: "t", CategoryID: models.MainCategoryID})
//	list, err := repo.List(ctx, models.MainCategoryID)
//	err = repo.SoftDelete(ctx, id)
package entries
