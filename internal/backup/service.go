package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/writer/internal/common"
	"github.com/dmitrijs2005/writer/internal/filex"
	"github.com/dmitrijs2005/writer/internal/logging"
	"golang.org/x/sync/errgroup"
)

var sqliteHeader = []byte("SQLite format 3\x00")

type Service struct {
	dbPath    string
	localPath string
	logger    logging.Logger
	now       func() time.Time
}

func NewService(dbPath, localPath string, logger logging.Logger) *Service {
	return &Service{
		dbPath:    dbPath,
		localPath: localPath,
		logger:    logger,
		now:       time.Now,
	}
}

// LocalBackup copies the database over the single local backup slot.
func (s *Service) LocalBackup(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := filex.CopyFile(s.dbPath, s.localPath); err != nil {
		return fmt.Errorf("failed to create local backup: %w", err)
	}
	s.logger.Info(ctx, "local backup created", "path", s.localPath)
	return nil
}

// LocalRestore replaces the database with the local backup.
func (s *Service) LocalRestore(ctx context.Context) error {
	ok, err := filex.Exists(s.localPath)
	if err != nil {
		return fmt.Errorf("failed to stat local backup: %w", err)
	}
	if !ok {
		return common.ErrBackupNotFound
	}
	if err := s.Import(ctx, s.localPath); err != nil {
		return err
	}
	s.logger.Info(ctx, "database restored from local backup", "path", s.localPath)
	return nil
}

// LastLocalBackup returns the modification time of the local backup, or the
// zero time when there is none.
func (s *Service) LastLocalBackup() (time.Time, error) {
	fi, err := os.Stat(s.localPath)
	if errors.Is(err, fs.ErrNotExist) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to stat local backup: %w", err)
	}
	return fi.ModTime(), nil
}

// Export writes a timestamped copy of the database into dir and returns its path.
func (s *Service) Export(ctx context.Context, dir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := filex.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("failed to export: %w", err)
	}
	dst := filepath.Join(dir, ExportFileName(s.now()))
	if err := filex.CopyFile(s.dbPath, dst); err != nil {
		return "", fmt.Errorf("failed to export: %w", err)
	}
	s.logger.Info(ctx, "database exported", "path", dst)
	return dst, nil
}

// ExportTo streams the database to w.
func (s *Service) ExportTo(w io.Writer) error {
	f, err := os.Open(s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	return nil
}

// Import replaces the database with the file at path.
func (s *Service) Import(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return common.ErrBackupNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer f.Close()
	return s.ImportFrom(f)
}

// ImportFrom replaces the database with the SQLite image read from r.
// The current database is left untouched when r is not a SQLite file or
// the write fails.
func (s *Service) ImportFrom(r io.Reader) error {
	hdr := make([]byte, len(sqliteHeader))
	if _, err := io.ReadFull(r, hdr); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return common.ErrInvalidBackup
		}
		return fmt.Errorf("failed to read backup: %w", err)
	}
	if !bytes.Equal(hdr, sqliteHeader) {
		return common.ErrInvalidBackup
	}
	if err := filex.WriteAtomic(s.dbPath, io.MultiReader(bytes.NewReader(hdr), r)); err != nil {
		return fmt.Errorf("failed to restore database: %w", err)
	}
	return nil
}

// Push uploads the database to remote and returns the object name.
func (s *Service) Push(ctx context.Context, remote Remote) (string, error) {
	f, err := os.Open(s.dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to open database: %w", err)
	}
	defer f.Close()

	name := NewObjectName(s.now())
	if err := remote.Upload(ctx, name, f); err != nil {
		return "", fmt.Errorf("%s upload: %w", remote.Name(), err)
	}
	s.logger.Info(ctx, "backup pushed", "remote", remote.Name(), "name", name)
	return name, nil
}

// PushAll pushes to every remote concurrently. It returns the object name per
// remote name and the first error encountered.
func (s *Service) PushAll(ctx context.Context, remotes ...Remote) (map[string]string, error) {
	var (
		mu    sync.Mutex
		names = make(map[string]string, len(remotes))
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, r := range remotes {
		g.Go(func() error {
			name, err := s.Push(ctx, r)
			if err != nil {
				return err
			}
			mu.Lock()
			names[r.Name()] = name
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	return names, err
}

// Pull replaces the database with the newest backup on remote and returns
// the name that was restored.
func (s *Service) Pull(ctx context.Context, remote Remote) (string, error) {
	name, err := remote.Latest(ctx)
	if err != nil {
		if errors.Is(err, common.ErrBackupNotFound) {
			return "", err
		}
		return "", fmt.Errorf("%s list: %w", remote.Name(), err)
	}

	rc, err := remote.Download(ctx, name)
	if err != nil {
		return "", fmt.Errorf("%s download: %w", remote.Name(), err)
	}
	defer rc.Close()

	if err := s.ImportFrom(rc); err != nil {
		return "", err
	}
	s.logger.Info(ctx, "backup pulled", "remote", remote.Name(), "name", name)
	return name, nil
}
