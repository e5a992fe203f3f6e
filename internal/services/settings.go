package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/writer/internal/database"
	"github.com/dmitrijs2005/writer/internal/privacy"
	"github.com/dmitrijs2005/writer/internal/repositories/metadata"
)

// SettingsService persists user settings that live inside the database file.
type SettingsService interface {
	// Privacy returns stored privacy settings, or def when none are stored.
	Privacy(ctx context.Context, def privacy.Settings) (privacy.Settings, error)
	SetPrivacy(ctx context.Context, s privacy.Settings) error
	// LastBackup returns when the named backup last succeeded; zero if never.
	LastBackup(ctx context.Context, key string) (time.Time, error)
	MarkBackup(ctx context.Context, key string, at time.Time) error
}

type settingsService struct {
	db *sql.DB
}

func NewSettingsService(db *sql.DB) SettingsService {
	return &settingsService{db: db}
}

func (s *settingsService) repo() metadata.Repository {
	return database.NewRepositories(s.db).Metadata
}

func (s *settingsService) Privacy(ctx context.Context, def privacy.Settings) (privacy.Settings, error) {
	ps := def
	if _, err := metadata.GetJSON(ctx, s.repo(), metadata.KeyPrivacy, &ps); err != nil {
		return def, err
	}
	return ps, nil
}

func (s *settingsService) SetPrivacy(ctx context.Context, ps privacy.Settings) error {
	if err := ps.Validate(); err != nil {
		return err
	}
	if err := metadata.SetJSON(ctx, s.repo(), metadata.KeyPrivacy, ps); err != nil {
		return fmt.Errorf("saving error: %w", err)
	}
	return nil
}

func (s *settingsService) LastBackup(ctx context.Context, key string) (time.Time, error) {
	var at time.Time
	if _, err := metadata.GetJSON(ctx, s.repo(), key, &at); err != nil {
		return time.Time{}, err
	}
	return at, nil
}

func (s *settingsService) MarkBackup(ctx context.Context, key string, at time.Time) error {
	return metadata.SetJSON(ctx, s.repo(), key, at.UTC())
}
