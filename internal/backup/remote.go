package backup

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	backupNamePrefix = "WriterBackup_"
	backupNameSuffix = ".db"
	nameTimeLayout   = "20060102_150405"
)

// Remote is a place backups can be pushed to and pulled from.
// Names passed to and returned by a Remote are bare object names; any
// directory or key prefix is applied by the Remote itself.
type Remote interface {
	Name() string
	Upload(ctx context.Context, name string, r io.Reader) error
	Download(ctx context.Context, name string) (io.ReadCloser, error)
	// Latest returns the newest backup name, or common.ErrBackupNotFound.
	Latest(ctx context.Context) (string, error)
}

// ExportFileName is the file name used for exports taken at now.
func ExportFileName(now time.Time) string {
	return backupNamePrefix + now.Format(nameTimeLayout) + backupNameSuffix
}

// NewObjectName returns a unique remote object name for a backup taken at now.
// Names sort by time.
func NewObjectName(now time.Time) string {
	return fmt.Sprintf("%s%s_%v%s", backupNamePrefix, now.Format(nameTimeLayout), uuid.New(), backupNameSuffix)
}

func isBackupName(name string) bool {
	return strings.HasPrefix(name, backupNamePrefix) && strings.HasSuffix(name, backupNameSuffix)
}

// newest picks the lexically greatest backup name from names, which may be
// full paths or keys.
func newest(names []string) string {
	var best string
	for _, n := range names {
		b := path.Base(n)
		if isBackupName(b) && b > best {
			best = b
		}
	}
	return best
}
