// Package metadata stores application settings as key/value pairs in the
// Writer database: privacy-mode parameters, last backup timestamps and
// similar small records that travel with the database file.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyPrivacy          = "privacy"
	KeyLastLocalBackup  = "backup.local.last"
	KeyLastExport       = "backup.export.last"
	KeyLastRemotePrefix = "backup.remote.last."
)

// Repository is a key/value store. Get returns (nil, nil) for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
