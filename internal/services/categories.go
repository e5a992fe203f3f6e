package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/writer/internal/common"
	"github.com/dmitrijs2005/writer/internal/database"
	"github.com/dmitrijs2005/writer/internal/dbx"
	"github.com/dmitrijs2005/writer/internal/models"
)

type CategoryService interface {
	Create(ctx context.Context, name string) (*models.Category, error)
	Get(ctx context.Context, id int64) (*models.Category, error)
	// List returns Main first, then stored categories by name.
	List(ctx context.Context) ([]models.Category, error)
	Rename(ctx context.Context, id int64, name string) error
	// Delete soft-deletes the category and every entry in it, atomically.
	// It returns the number of entries removed.
	Delete(ctx context.Context, id int64) (int64, error)
}

type categoryService struct {
	db *sql.DB
}

func NewCategoryService(db *sql.DB) CategoryService {
	return &categoryService{db: db}
}

func (s *categoryService) Create(ctx context.Context, name string) (*models.Category, error) {
	if err := models.ValidateCategoryName(name); err != nil {
		return nil, err
	}
	c := &models.Category{Name: strings.TrimSpace(name)}
	if _, err := database.NewRepositories(s.db).Categories.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("saving error: %w", err)
	}
	return c, nil
}

func (s *categoryService) Get(ctx context.Context, id int64) (*models.Category, error) {
	return database.NewRepositories(s.db).Categories.GetByID(ctx, id)
}

func (s *categoryService) List(ctx context.Context) ([]models.Category, error) {
	stored, err := database.NewRepositories(s.db).Categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing error: %w", err)
	}
	return append([]models.Category{models.MainCategory()}, stored...), nil
}

func (s *categoryService) Rename(ctx context.Context, id int64, name string) error {
	if models.IsMain(id) {
		return common.ErrMainCategory
	}
	if err := models.ValidateCategoryName(name); err != nil {
		return err
	}
	if err := database.NewRepositories(s.db).Categories.Rename(ctx, id, strings.TrimSpace(name)); err != nil {
		return fmt.Errorf("renaming error: %w", err)
	}
	return nil
}

func (s *categoryService) Delete(ctx context.Context, id int64) (int64, error) {
	if models.IsMain(id) {
		return 0, common.ErrMainCategory
	}

	var removed int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repos := database.NewRepositories(tx)
		n, err := repos.Entries.SoftDeleteByCategory(ctx, id)
		if err != nil {
			return err
		}
		if err := repos.Categories.SoftDelete(ctx, id); err != nil {
			return err
		}
		removed = n
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("deleting error: %w", err)
	}
	return removed, nil
}
