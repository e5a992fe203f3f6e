package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/writer/internal/database"
	"github.com/dmitrijs2005/writer/internal/models"
)

// EntryService exposes note operations other than editing, which lives in
// the editor package.
type EntryService interface {
	Get(ctx context.Context, id int64) (*models.Entry, error)
	List(ctx context.Context, categoryID int64) ([]models.Entry, error)
	Create(ctx context.Context, e *models.Entry) (int64, error)
	Update(ctx context.Context, e *models.Entry) error
	Delete(ctx context.Context, id int64) error
	Move(ctx context.Context, id, categoryID int64) error
	Details(ctx context.Context, id int64) (Details, error)
	Pending(ctx context.Context) ([]*models.Entry, error)
}

// Details is the metadata shown for a note without opening it.
type Details struct {
	ID          int64
	Category    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	IsEncrypted bool
	SyncStatus  models.SyncStatus
}

type entryService struct {
	db *sql.DB
}

func NewEntryService(db *sql.DB) EntryService {
	return &entryService{db: db}
}

func (s *entryService) repos() *database.Repositories {
	return database.NewRepositories(s.db)
}

func (s *entryService) Get(ctx context.Context, id int64) (*models.Entry, error) {
	return s.repos().Entries.GetByID(ctx, id)
}

func (s *entryService) List(ctx context.Context, categoryID int64) ([]models.Entry, error) {
	list, err := s.repos().Entries.List(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("listing error: %w", err)
	}
	return list, nil
}

func (s *entryService) Create(ctx context.Context, e *models.Entry) (int64, error) {
	id, err := s.repos().Entries.Create(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("saving error: %w", err)
	}
	return id, nil
}

func (s *entryService) Update(ctx context.Context, e *models.Entry) error {
	if err := s.repos().Entries.Update(ctx, e); err != nil {
		return fmt.Errorf("saving error: %w", err)
	}
	return nil
}

func (s *entryService) Delete(ctx context.Context, id int64) error {
	if err := s.repos().Entries.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("deleting error: %w", err)
	}
	return nil
}

// Move checks the target category is live before reassigning the entry.
func (s *entryService) Move(ctx context.Context, id, categoryID int64) error {
	repos := s.repos()
	if _, err := repos.Categories.GetByID(ctx, categoryID); err != nil {
		return fmt.Errorf("category %d: %w", categoryID, err)
	}
	if err := repos.Entries.Move(ctx, id, categoryID); err != nil {
		return fmt.Errorf("moving error: %w", err)
	}
	return nil
}

func (s *entryService) Details(ctx context.Context, id int64) (Details, error) {
	repos := s.repos()
	e, err := repos.Entries.GetByID(ctx, id)
	if err != nil {
		return Details{}, err
	}
	cat, err := repos.Categories.GetByID(ctx, e.CategoryID)
	if err != nil {
		return Details{}, fmt.Errorf("category %d: %w", e.CategoryID, err)
	}
	return Details{
		ID:          e.ID,
		Category:    cat.Name,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		IsEncrypted: e.IsEncrypted,
		SyncStatus:  e.SyncStatus,
	}, nil
}

func (s *entryService) Pending(ctx context.Context) ([]*models.Entry, error) {
	return s.repos().Entries.ListPending(ctx)
}

// CopyText is what the copy action puts on the clipboard: the title and body
// separated by a newline, or just the body when there is no title.
func CopyText(title, body string) string {
	if title == "" {
		return body
	}
	return title + "\n" + body
}
