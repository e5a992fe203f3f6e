package entries

import (
	"context"

	"github.com/dmitrijs2005/writer/internal/models"
)

// Repository describes persistence operations for entries. Reads never
// return soft-deleted rows, except ListPending.
type Repository interface {
	// Create inserts a new entry and returns its id. Empty entries are
	// rejected with common.ErrEmptyEntry.
	Create(ctx context.Context, entry *models.Entry) (int64, error)

	// GetByID returns a live entry or common.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*models.Entry, error)

	// Update rewrites title, body and the encryption flag of a live entry.
	Update(ctx context.Context, entry *models.Entry) error

	// Move reassigns an entry to another category.
	Move(ctx context.Context, id, categoryID int64) error

	// SoftDelete marks a single entry deleted.
	SoftDelete(ctx context.Context, id int64) error

	// SoftDeleteByCategory marks every live entry of a category deleted and
	// returns how many rows changed.
	SoftDeleteByCategory(ctx context.Context, categoryID int64) (int64, error)

	// List returns live entries of a category, most recently updated first.
	List(ctx context.Context, categoryID int64) ([]models.Entry, error)

	// ListPending returns rows whose sync status is pending, deleted included.
	ListPending(ctx context.Context) ([]*models.Entry, error)
}
