package models

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	// MainCategoryID is the synthetic id of the Main category.
	MainCategoryID int64 = -1
	// MainCategoryName is reserved; no stored category may use it.
	MainCategoryName = "Main"

	maxCategoryNameLen = 100
)

// Category groups entries.
type Category struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time

	SyncStatus   SyncStatus
	LastSyncedAt *time.Time
	ServerID     string
	IsDeleted    bool
}

// MainCategory returns the synthetic Main category.
func MainCategory() Category {
	return Category{ID: MainCategoryID, Name: MainCategoryName}
}

// IsMain reports whether id refers to the synthetic Main category.
func IsMain(id int64) bool {
	return id == MainCategoryID
}

var notMain = validation.NewStringRule(func(s string) bool {
	return !strings.EqualFold(strings.TrimSpace(s), MainCategoryName)
}, "name is reserved")

// ValidateCategoryName checks a user supplied category name.
func ValidateCategoryName(name string) error {
	return validation.Validate(strings.TrimSpace(name),
		validation.Required.Error("name is required"),
		validation.RuneLength(1, maxCategoryNameLen),
		notMain,
	)
}
