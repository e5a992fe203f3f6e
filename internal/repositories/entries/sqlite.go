package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/writer/internal/common"
	"github.com/dmitrijs2005/writer/internal/dbx"
	"github.com/dmitrijs2005/writer/internal/models"
)

const selectColumns = `_id, title, body, category_id, created_at, updated_at,
	is_encrypted, sync_status, last_synced_at, server_id, is_deleted`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func categoryArg(id int64) sql.NullInt64 {
	if models.IsMain(id) || id == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: id, Valid: true}
}

func (r *SQLiteRepository) Create(ctx context.Context, e *models.Entry) (int64, error) {
	if e.IsEmpty() {
		return 0, common.ErrEmptyEntry
	}

	now := r.now()
	ts := dbx.FormatTime(now)
	query := `INSERT INTO entries (title, body, category_id, created_at, updated_at, is_encrypted, sync_status, is_deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)`
	res, err := r.db.ExecContext(ctx, query,
		e.Title, e.Body, categoryArg(e.CategoryID), ts, ts, e.IsEncrypted, models.SyncPending)
	if err != nil {
		return 0, fmt.Errorf("failed to insert entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get entry id: %w", err)
	}

	e.ID = id
	e.CreatedAt = now.UTC()
	e.UpdatedAt = now.UTC()
	e.SyncStatus = models.SyncPending
	if e.CategoryID == 0 {
		e.CategoryID = models.MainCategoryID
	}
	return id, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Entry, error) {
	query := `SELECT ` + selectColumns + ` FROM entries WHERE _id = ? AND is_deleted = 0`
	e, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry %d: %w", id, err)
	}
	return e, nil
}

// Update bumps updated_at and marks the row pending. An entry emptied by the
// caller must be soft-deleted instead; Update refuses it.
func (r *SQLiteRepository) Update(ctx context.Context, e *models.Entry) error {
	if e.IsEmpty() {
		return common.ErrEmptyEntry
	}

	now := r.now()
	query := `UPDATE entries SET title = ?, body = ?, is_encrypted = ?, updated_at = ?, sync_status = ?
		WHERE _id = ? AND is_deleted = 0`
	res, err := r.db.ExecContext(ctx, query,
		e.Title, e.Body, e.IsEncrypted, dbx.FormatTime(now), models.SyncPending, e.ID)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	if err := dbx.ExpectOne(res); err != nil {
		return err
	}
	e.UpdatedAt = now.UTC()
	e.SyncStatus = models.SyncPending
	return nil
}

func (r *SQLiteRepository) Move(ctx context.Context, id, categoryID int64) error {
	query := `UPDATE entries SET category_id = ?, updated_at = ?, sync_status = ?
		WHERE _id = ? AND is_deleted = 0`
	res, err := r.db.ExecContext(ctx, query,
		categoryArg(categoryID), dbx.FormatTime(r.now()), models.SyncPending, id)
	if err != nil {
		return fmt.Errorf("failed to move entry: %w", err)
	}
	return dbx.ExpectOne(res)
}

// SoftDelete marks an entry as deleted. It expects exactly one row to be affected.
func (r *SQLiteRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE entries SET is_deleted = 1, updated_at = ?, sync_status = ?
		WHERE _id = ? AND is_deleted = 0`
	res, err := r.db.ExecContext(ctx, query, dbx.FormatTime(r.now()), models.SyncPending, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return dbx.ExpectOne(res)
}

func (r *SQLiteRepository) SoftDeleteByCategory(ctx context.Context, categoryID int64) (int64, error) {
	if models.IsMain(categoryID) {
		return 0, common.ErrMainCategory
	}
	query := `UPDATE entries SET is_deleted = 1, updated_at = ?, sync_status = ?
		WHERE category_id = ? AND is_deleted = 0`
	res, err := r.db.ExecContext(ctx, query, dbx.FormatTime(r.now()), models.SyncPending, categoryID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete entries of category %d: %w", categoryID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) List(ctx context.Context, categoryID int64) ([]models.Entry, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if models.IsMain(categoryID) {
		rows, err = r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM entries
			WHERE category_id IS NULL AND is_deleted = 0 ORDER BY updated_at DESC, _id DESC`)
	} else {
		rows, err = r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM entries
			WHERE category_id = ? AND is_deleted = 0 ORDER BY updated_at DESC, _id DESC`, categoryID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) ListPending(ctx context.Context) ([]*models.Entry, error) {
	query := `SELECT ` + selectColumns + ` FROM entries WHERE sync_status = ? ORDER BY _id`
	rows, err := r.db.QueryContext(ctx, query, models.SyncPending)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending entries: %w", err)
	}
	defer rows.Close()

	var pending []*models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		pending = append(pending, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pending, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*models.Entry, error) {
	var (
		e          models.Entry
		categoryID sql.NullInt64
		createdAt  string
		updatedAt  string
		syncStatus string
		lastSynced sql.NullString
		serverID   sql.NullString
	)
	err := s.Scan(&e.ID, &e.Title, &e.Body, &categoryID, &createdAt, &updatedAt,
		&e.IsEncrypted, &syncStatus, &lastSynced, &serverID, &e.IsDeleted)
	if err != nil {
		return nil, err
	}

	e.CategoryID = models.MainCategoryID
	if categoryID.Valid {
		e.CategoryID = categoryID.Int64
	}
	if e.CreatedAt, err = dbx.ParseTime(createdAt); err != nil {
		return nil, err
	}
	if e.UpdatedAt, err = dbx.ParseTime(updatedAt); err != nil {
		return nil, err
	}
	if e.LastSyncedAt, err = dbx.ParseNullTime(lastSynced); err != nil {
		return nil, err
	}
	e.SyncStatus = models.SyncStatus(syncStatus)
	e.ServerID = serverID.String
	return &e, nil
}
