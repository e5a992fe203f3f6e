package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// SyncStatus is the inert sync marker stored with every row.
type SyncStatus string

const (
	SyncPending  SyncStatus = "pending"
	SyncSynced   SyncStatus = "synced"
	SyncConflict SyncStatus = "conflict"
)

// LockedPreview is shown in listings instead of an encrypted body.
const LockedPreview = "[locked]"

// Entry is a single note.
type Entry struct {
	ID    int64
	Title string
	// Body holds ciphertext when IsEncrypted is set.
	Body       string
	CategoryID int64

	CreatedAt time.Time
	UpdatedAt time.Time

	IsEncrypted bool

	SyncStatus   SyncStatus
	LastSyncedAt *time.Time
	ServerID     string
	IsDeleted    bool
}

// IsEmpty reports whether both title and body are empty. Empty entries are
// never created and are deleted when emptied during edit.
func (e *Entry) IsEmpty() bool {
	return e.Title == "" && e.Body == ""
}

// InMain reports whether the entry belongs to the synthetic Main category.
func (e *Entry) InMain() bool {
	return e.CategoryID == MainCategoryID || e.CategoryID == 0
}

// Preview returns a one-line label for listings, at most n runes long.
func (e *Entry) Preview(n int) string {
	s := firstLine(e.Title)
	if s == "" {
		if e.IsEncrypted {
			return LockedPreview
		}
		s = firstLine(e.Body)
	}
	if n > 0 && utf8.RuneCountInString(s) > n {
		r := []rune(s)
		s = string(r[:n]) + "…"
	}
	if e.IsEncrypted {
		s += " " + LockedPreview
	}
	return s
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}
