package categories

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

const selectColumns = `_id, name, created_at, updated_at, sync_status, last_synced_at, server_id, is_deleted`

type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Create(ctx context.Context, c *models.Category) (int64, error) {
	now := r.now()
	ts := dbx.FormatTime(now)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, created_at, updated_at, sync_status, is_deleted) VALUES (?, ?, ?, ?, 0)`,
		c.Name, ts, ts, models.SyncPending)
	if err != nil {
		return 0, fmt.Errorf("failed to insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get category id: %w", err)
	}
	c.ID = id
	c.CreatedAt = now.UTC()
	c.UpdatedAt = now.UTC()
	c.SyncStatus = models.SyncPending
	return id, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	if models.IsMain(id) {
		main := models.MainCategory()
		return &main, nil
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM categories WHERE _id = ? AND is_deleted = 0`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category %d: %w", id, err)
	}
	return c, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM categories WHERE is_deleted = 0 ORDER BY name COLLATE NOCASE, _id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select categories: %w", err)
	}
	defer rows.Close()

	var result []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Rename(ctx context.Context, id int64, name string) error {
	if models.IsMain(id) {
		return common.ErrMainCategory
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, updated_at = ?, sync_status = ? WHERE _id = ? AND is_deleted = 0`,
		name, dbx.FormatTime(r.now()), models.SyncPending, id)
	if err != nil {
		return fmt.Errorf("failed to rename category: %w", err)
	}
	return dbx.ExpectOne(res)
}

// SoftDelete marks only the category row. Cascading to its entries is the
// caller's job and belongs in the same transaction.
func (r *SQLiteRepository) SoftDelete(ctx context.Context, id int64) error {
	if models.IsMain(id) {
		return common.ErrMainCategory
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET is_deleted = 1, updated_at = ?, sync_status = ? WHERE _id = ? AND is_deleted = 0`,
		dbx.FormatTime(r.now()), models.SyncPending, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return dbx.ExpectOne(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(s scanner) (*models.Category, error) {
	var (
		c          models.Category
		createdAt  string
		updatedAt  string
		syncStatus string
		lastSynced sql.NullString
		serverID   sql.NullString
	)
	if err := s.Scan(&c.ID, &c.Name, &createdAt, &updatedAt, &syncStatus, &lastSynced, &serverID, &c.IsDeleted); err != nil {
		return nil, err
	}
	var err error
	if c.CreatedAt, err = dbx.ParseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = dbx.ParseTime(updatedAt); err != nil {
		return nil, err
	}
	if c.LastSyncedAt, err = dbx.ParseNullTime(lastSynced); err != nil {
		return nil, err
	}
	c.SyncStatus = models.SyncStatus(syncStatus)
	c.ServerID = serverID.String
	return &c, nil
}
