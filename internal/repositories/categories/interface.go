// Package categories is the persistence gateway for note categories.
// The synthetic Main category is never stored here; operations given its id
// fail with common.ErrMainCategory.
package categories

import (
	"context"

	"github.com/dmitrijs2005/writer/internal/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Category) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	// List returns live categories ordered by name.
	List(ctx context.Context) ([]models.Category, error)
	Rename(ctx context.Context, id int64, name string) error
	SoftDelete(ctx context.Context, id int64) error
}
