package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/writer/internal/backup"
	"github.com/dmitrijs2005/writer/internal/cli"
	"github.com/dmitrijs2005/writer/internal/config"
	"github.com/dmitrijs2005/writer/internal/database"
	"github.com/dmitrijs2005/writer/internal/filex"
	"github.com/dmitrijs2005/writer/internal/logging"
	_ "github.com/joho/godotenv/autoload"
	ucli "github.com/urfave/cli/v3"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var errNeedsYes = errors.New("this replaces the database; pass --yes to confirm")

type env struct {
	cfg    *config.Config
	logger logging.Logger
	close  func()
}

// setup resolves configuration and logging for any command.
func setup(cmd *ucli.Command) (*env, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if p := cmd.String("db"); p != "" {
		cfg.DatabasePath = p
	}
	if l := cmd.String("log-level"); l != "" {
		cfg.LogLevel = l
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	var (
		w       io.Writer = os.Stderr
		closeFn           = func() {}
	)
	if cfg.LogFile != "" {
		if err := filex.EnsureParentDir(cfg.LogFile); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}

	return &env{cfg: cfg, logger: logging.New(w, level), close: closeFn}, nil
}

func (e *env) backupService() *backup.Service {
	return backup.NewService(e.cfg.DatabasePath, e.cfg.LocalBackupPath, e.logger)
}

func runREPL(ctx context.Context, cmd *ucli.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	app, err := cli.NewApp(ctx, e.cfg, e.logger)
	if err != nil {
		return fmt.Errorf("app init error: %w", err)
	}
	defer app.Close()

	app.Run(ctx)
	return nil
}

func runBackup(ctx context.Context, cmd *ucli.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.backupService().LocalBackup(ctx); err != nil {
		return err
	}
	fmt.Println("Backup written to", e.cfg.LocalBackupPath)
	return nil
}

func runRestore(ctx context.Context, cmd *ucli.Command) error {
	if !cmd.Bool("yes") {
		return errNeedsYes
	}
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	return e.backupService().LocalRestore(ctx)
}

func runExport(ctx context.Context, cmd *ucli.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	dir := e.cfg.ExportDir
	if cmd.Args().Present() {
		dir = cmd.Args().First()
	}
	path, err := e.backupService().Export(ctx, dir)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func runImport(ctx context.Context, cmd *ucli.Command) error {
	if !cmd.Args().Present() {
		return errors.New("usage: writer import <path> --yes")
	}
	if !cmd.Bool("yes") {
		return errNeedsYes
	}
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	return e.backupService().Import(ctx, cmd.Args().First())
}

func runPush(ctx context.Context, cmd *ucli.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	remotes, err := cli.SelectRemotes(cli.Remotes(e.cfg), cmd.Args().First())
	if err != nil {
		return err
	}
	names, err := e.backupService().PushAll(ctx, remotes...)
	for remote, name := range names {
		fmt.Printf("%s: %s\n", remote, name)
	}
	return err
}

func runPull(ctx context.Context, cmd *ucli.Command) error {
	target := cmd.Args().First()
	if target == "" || target == "all" {
		return errors.New("usage: writer pull <s3|ftp> --yes")
	}
	if !cmd.Bool("yes") {
		return errNeedsYes
	}
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	remotes, err := cli.SelectRemotes(cli.Remotes(e.cfg), target)
	if err != nil {
		return err
	}
	name, err := e.backupService().Pull(ctx, remotes[0])
	if err != nil {
		return err
	}
	fmt.Println("Restored", name)
	return nil
}

func runMigrate(ctx context.Context, cmd *ucli.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	if err := filex.EnsureParentDir(e.cfg.DatabasePath); err != nil {
		return err
	}
	db, err := database.OpenNoMigrate(ctx, e.cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	if to := int64(cmd.Int("to")); to > 0 {
		err = database.MigrateTo(ctx, db, to)
	} else {
		err = database.RunMigrations(ctx, db)
	}
	if err != nil {
		return err
	}

	v, err := database.Version(ctx, db)
	if err != nil {
		return err
	}
	fmt.Println("Schema version", v)
	return nil
}

func yesFlag() ucli.Flag {
	return &ucli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm replacing the database"}
}

func main() {
	cmd := &ucli.Command{
		Name:    "writer",
		Usage:   "Notes in a local SQLite file, with per-note encryption and backups",
		Version: version,
		Action:  runREPL,
		Flags: []ucli.Flag{
			&ucli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: config.DefaultPath(),
				Sources:     ucli.EnvVars("WRITER_CONFIG"),
			},
			&ucli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the notes database",
				Sources: ucli.EnvVars("WRITER_DB"),
			},
			&ucli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				Sources: ucli.EnvVars("WRITER_LOG_LEVEL"),
			},
		},
		Commands: []*ucli.Command{
			{Name: "backup", Usage: "Copy the database to the local backup slot", Action: runBackup},
			{Name: "restore", Usage: "Replace the database with the local backup", Action: runRestore, Flags: []ucli.Flag{yesFlag()}},
			{Name: "export", Usage: "Write a timestamped copy of the database", ArgsUsage: "[dir]", Action: runExport},
			{Name: "import", Usage: "Replace the database with a backup file", ArgsUsage: "<path>", Action: runImport, Flags: []ucli.Flag{yesFlag()}},
			{Name: "push", Usage: "Upload a backup to remote storage", ArgsUsage: "[s3|ftp|all]", Action: runPush},
			{Name: "pull", Usage: "Restore the newest remote backup", ArgsUsage: "<s3|ftp>", Action: runPull, Flags: []ucli.Flag{yesFlag()}},
			{
				Name:   "migrate",
				Usage:  "Bring the schema up to date, or to a given version",
				Action: runMigrate,
				Flags:  []ucli.Flag{&ucli.IntFlag{Name: "to", Usage: "Target schema version"}},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
