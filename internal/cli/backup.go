package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/writer/internal/backup"
	"github.com/dmitrijs2005/writer/internal/common"
	"github.com/dmitrijs2005/writer/internal/repositories/metadata"
)

const restoreWarning = "This will remove all notes created after the backup! Are you sure you want to continue?"

func (a *App) markBackup(ctx context.Context, key string) {
	if err := a.settings.MarkBackup(ctx, key, time.Now()); err != nil {
		a.logger.Warn(ctx, "failed to record backup time", "key", key, "err", err)
	}
}

func (a *App) Backup(ctx context.Context) error {
	if err := a.backup.LocalBackup(ctx); err != nil {
		return err
	}
	a.markBackup(ctx, metadata.KeyLastLocalBackup)
	a.println("Backup created.")
	return nil
}

func (a *App) Restore(ctx context.Context) error {
	last, err := a.backup.LastLocalBackup()
	if err != nil {
		return err
	}
	if last.IsZero() {
		return common.ErrBackupNotFound
	}
	a.printf("Last backup: %s\n", last.Local().Format(detailLayout))
	if ok, err := Confirm(a.reader, restoreWarning, a.out); err != nil {
		return err
	} else if !ok {
		return common.ErrCancelled
	}

	if err := a.withDatabaseClosed(ctx, func() error { return a.backup.LocalRestore(ctx) }); err != nil {
		return err
	}
	a.println("Backup restored.")
	return nil
}

// Export writes a timestamped copy of the database to dir, or to the
// configured export directory when dir is empty.
func (a *App) Export(ctx context.Context, dir string) error {
	if dir == "" {
		dir = a.config.ExportDir
	}
	path, err := a.backup.Export(ctx, dir)
	if err != nil {
		return err
	}
	a.markBackup(ctx, metadata.KeyLastExport)
	a.printf("Exported to %s\n", path)
	return nil
}

func (a *App) Import(ctx context.Context, path string) error {
	if ok, err := Confirm(a.reader, restoreWarning, a.out); err != nil {
		return err
	} else if !ok {
		return common.ErrCancelled
	}
	if err := a.withDatabaseClosed(ctx, func() error { return a.backup.Import(ctx, path) }); err != nil {
		return err
	}
	a.println("Backup imported.")
	return nil
}

// SelectRemotes resolves a push or pull target against all. An empty target
// or "all" means every configured remote.
func SelectRemotes(all map[string]backup.Remote, target string) ([]backup.Remote, error) {
	target = strings.ToLower(target)
	if target == "" || target == "all" {
		names := make([]string, 0, len(all))
		for n := range all {
			names = append(names, n)
		}
		sort.Strings(names)
		out := make([]backup.Remote, 0, len(names))
		for _, n := range names {
			out = append(out, all[n])
		}
		if len(out) == 0 {
			return nil, common.ErrRemoteNotConfigured
		}
		return out, nil
	}
	r, ok := all[target]
	if !ok {
		switch target {
		case "s3", "ftp":
			return nil, common.ErrRemoteNotConfigured
		}
		return nil, fmt.Errorf("unknown remote %q", target)
	}
	return []backup.Remote{r}, nil
}

func (a *App) Push(ctx context.Context, target string) error {
	remotes, err := SelectRemotes(a.remotes, target)
	if err != nil {
		return err
	}
	names, err := a.backup.PushAll(ctx, remotes...)
	for _, r := range remotes {
		if name, ok := names[r.Name()]; ok {
			a.markBackup(ctx, metadata.KeyLastRemotePrefix+r.Name())
			a.printf("Pushed to %s as %s\n", r.Name(), name)
		}
	}
	return err
}

func (a *App) Pull(ctx context.Context, target string) error {
	if strings.EqualFold(target, "all") {
		return fmt.Errorf("pull needs a single remote")
	}
	remotes, err := SelectRemotes(a.remotes, target)
	if err != nil {
		return err
	}
	if ok, err := Confirm(a.reader, restoreWarning, a.out); err != nil {
		return err
	} else if !ok {
		return common.ErrCancelled
	}

	var name string
	err = a.withDatabaseClosed(ctx, func() error {
		var perr error
		name, perr = a.backup.Pull(ctx, remotes[0])
		return perr
	})
	if err != nil {
		return err
	}
	a.printf("Restored %s from %s\n", name, remotes[0].Name())
	return nil
}
