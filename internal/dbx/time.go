package dbx

import (
	"database/sql"
	"fmt"
	"time"
)

// TimeLayout is how timestamps are written. Rows created by column defaults
// use SQLite's datetime('now') form, which ParseTime also accepts.
const TimeLayout = "2006-01-02 15:04:05.000"

var parseLayouts = []string{
	TimeLayout,
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

// FormatTime renders t in UTC using TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a stored timestamp as UTC.
func ParseTime(s string) (time.Time, error) {
	for _, l := range parseLayouts {
		if t, err := time.ParseInLocation(l, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ParseNullTime maps NULL to nil.
func ParseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := ParseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
