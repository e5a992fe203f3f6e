package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/dmitrijs2005/writer/internal/backup"
	"github.com/dmitrijs2005/writer/internal/config"
	"github.com/dmitrijs2005/writer/internal/cryptox"
	"github.com/dmitrijs2005/writer/internal/database"
	"github.com/dmitrijs2005/writer/internal/editor"
	"github.com/dmitrijs2005/writer/internal/filex"
	"github.com/dmitrijs2005/writer/internal/logging"
	"github.com/dmitrijs2005/writer/internal/models"
	"github.com/dmitrijs2005/writer/internal/privacy"
	"github.com/dmitrijs2005/writer/internal/services"
)

// writeClipboard is a test seam for clipboard.WriteAll.
var writeClipboard = clipboard.WriteAll

type App struct {
	config *config.Config
	logger logging.Logger

	db         *sql.DB
	entries    services.EntryService
	categories services.CategoryService
	settings   services.SettingsService
	backup     *backup.Service
	remotes    map[string]backup.Remote

	cipher   *cryptox.Cipher
	sessions *cryptox.Sessions
	renderer *privacy.Renderer

	category int64
	reader   *bufio.Reader
	out      io.Writer
}

// Option customises an App, mostly for tests.
type Option func(*App)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(a *App) {
		a.reader = bufio.NewReader(in)
		a.out = out
	}
}

// WithRemote adds or replaces a remote backup target.
func WithRemote(r backup.Remote) Option {
	return func(a *App) {
		a.remotes[r.Name()] = r
	}
}

// NewApp opens the database named by c and wires the services around it.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger, opts ...Option) (*App, error) {
	a := &App{
		config:   c,
		logger:   logger,
		backup:   backup.NewService(c.DatabasePath, c.LocalBackupPath, logger),
		remotes:  Remotes(c),
		cipher:   cryptox.NewCipher(cryptox.WithIterations(c.KDFIterations)),
		sessions: cryptox.NewSessions(),
		category: models.MainCategoryID,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}
	for _, o := range opts {
		o(a)
	}
	if err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		return nil, err
	}
	if err := a.openDB(ctx); err != nil {
		return nil, err
	}

	a.renderer = privacy.NewRenderer(a.out, a.loadPrivacy(ctx))
	return a, nil
}

// loadPrivacy reads the stored privacy settings, falling back to the
// configured ones.
func (a *App) loadPrivacy(ctx context.Context) privacy.Settings {
	ps, err := a.settings.Privacy(ctx, a.config.Privacy)
	if err != nil {
		a.logger.Warn(ctx, "failed to load privacy settings", "err", err)
		return a.config.Privacy
	}
	return ps
}

// Remotes builds the remote backup targets that c configures, by name.
func Remotes(c *config.Config) map[string]backup.Remote {
	remotes := map[string]backup.Remote{}
	if c.S3.Configured() {
		remotes["s3"] = backup.NewS3Remote(c.S3)
	}
	if c.FTP.Configured() {
		remotes["ftp"] = backup.NewFTPRemote(c.FTP)
	}
	return remotes
}

func (a *App) openDB(ctx context.Context) error {
	db, err := database.Open(ctx, a.config.DatabasePath)
	if err != nil {
		a.logger.Error(ctx, "error initializing database", "err", err)
		return err
	}
	a.db = db
	a.entries = services.NewEntryService(db)
	a.categories = services.NewCategoryService(db)
	a.settings = services.NewSettingsService(db)
	return nil
}

// withDatabaseClosed runs fn while the database file is not in use, then
// reopens it. Session passwords are dropped since ids may now name other notes,
// and privacy settings are reread from the reopened file.
func (a *App) withDatabaseClosed(ctx context.Context, fn func() error) error {
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	err := fn()
	a.sessions.ClearAll()
	a.cipher.ClearKeys()
	a.category = models.MainCategoryID
	if oerr := a.openDB(ctx); oerr != nil {
		return errors.Join(err, oerr)
	}
	a.renderer.SetSettings(a.loadPrivacy(ctx))
	return err
}

func (a *App) editorDeps() editor.Deps {
	return editor.Deps{
		Store:    a.entries,
		Cipher:   a.cipher,
		Sessions: a.sessions,
		Prompter: terminalPrompter{reader: a.reader, out: a.out},
		Logger:   a.logger,
	}
}

// Close wipes session passwords and closes the database.
func (a *App) Close() error {
	a.sessions.ClearAll()
	a.cipher.ClearKeys()
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Run starts the REPL and blocks until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	a.println("Welcome to Writer (type 'help' for commands)")
	runREPL(ctx, a, func() string { return a.status(ctx) }, a.reader, a.logger)
}

func (a *App) status(ctx context.Context) string {
	name := models.MainCategoryName
	if c, err := a.categories.Get(ctx, a.category); err == nil {
		name = c.Name
	}
	if a.renderer.Settings().Enabled {
		name += " private"
	}
	return "(" + name + ")"
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func parseID(ref string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(ref, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", ref)
	}
	return id, nil
}

func parseCategory(ref string) (int64, error) {
	if strings.EqualFold(ref, models.MainCategoryName) {
		return models.MainCategoryID, nil
	}
	return parseID(ref)
}
