// Package database opens the Writer SQLite file, applies the migration ladder
// and hands out repositories bound to either the database or a transaction.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/writer/internal/database/migrations"
	"github.com/dmitrijs2005/writer/internal/dbx"
	"github.com/dmitrijs2005/writer/internal/repositories/categories"
	"github.com/dmitrijs2005/writer/internal/repositories/entries"
	"github.com/dmitrijs2005/writer/internal/repositories/metadata"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Repositories bundles every gateway over one DBTX.
type Repositories struct {
	Entries    entries.Repository
	Categories categories.Repository
	Metadata   metadata.Repository
}

// NewRepositories binds all repositories to db, which may be a transaction.
func NewRepositories(db dbx.DBTX) *Repositories {
	return &Repositories{
		Entries:    entries.NewSQLiteRepository(db),
		Categories: categories.NewSQLiteRepository(db),
		Metadata:   metadata.NewSQLiteRepository(db),
	}
}

func setupGoose() error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

// RunMigrations brings the schema up to the latest version. Running it on an
// up-to-date database is a no-op.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	if err := setupGoose(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// MigrateTo moves the schema to an exact version, up or down.
func MigrateTo(ctx context.Context, db *sql.DB, version int64) error {
	if err := setupGoose(); err != nil {
		return err
	}
	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version >= current {
		err = goose.UpToContext(ctx, db, ".", version)
	} else {
		err = goose.DownToContext(ctx, db, ".", version)
	}
	if err != nil {
		return fmt.Errorf("failed to migrate to version %d: %w", version, err)
	}
	return nil
}

// Version reports the current schema version.
func Version(ctx context.Context, db *sql.DB) (int64, error) {
	if err := setupGoose(); err != nil {
		return 0, err
	}
	v, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)"
}

// OpenNoMigrate opens the database at path without touching its schema.
// All access goes through a single connection, matching the synchronous,
// single-user usage.
func OpenNoMigrate(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// Open opens the database at path and migrates it to the latest version.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := OpenNoMigrate(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
