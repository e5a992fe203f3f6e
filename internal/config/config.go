package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/writer/internal/backup"
	"github.com/dmitrijs2005/writer/internal/cryptox"
	"github.com/dmitrijs2005/writer/internal/privacy"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const appDirName = "writer"

// Config holds runtime settings for the Writer CLI.
type Config struct {
	DatabasePath    string `yaml:"database_path"`
	LocalBackupPath string `yaml:"local_backup_path"`
	ExportDir       string `yaml:"export_dir"`
	LogLevel        string `yaml:"log_level"`
	// LogFile receives structured logs; empty means stderr.
	LogFile       string `yaml:"log_file"`
	KDFIterations int    `yaml:"kdf_iterations"`

	// Privacy seeds privacy mode until the user changes it in the app.
	Privacy privacy.Settings  `yaml:"privacy"`
	S3      backup.S3Options  `yaml:"s3"`
	FTP     backup.FTPOptions `yaml:"ftp"`
}

// DataDir is where Writer keeps its files by default.
func DataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, appDirName)
}

// DefaultPath is the config file consulted when none is given.
func DefaultPath() string {
	return filepath.Join(DataDir(), "config.yaml")
}

// LoadDefaults populates c with defaults rooted at DataDir.
func (c *Config) LoadDefaults() {
	dir := DataDir()
	c.DatabasePath = filepath.Join(dir, "writer.db")
	c.LocalBackupPath = filepath.Join(dir, "backup", "writer_backup.db")
	c.ExportDir = filepath.Join(dir, "exports")
	c.LogLevel = "warn"
	c.KDFIterations = cryptox.DefaultIterations
	c.Privacy = privacy.Settings{Meter: 120, Scanlines: 40, Aberration: 30, Shadow: true}
	c.S3.Prefix = "writer/"
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.DatabasePath, validation.Required),
		validation.Field(&c.LocalBackupPath, validation.Required),
		validation.Field(&c.ExportDir, validation.Required),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.KDFIterations, validation.Required, validation.Min(1000)),
		validation.Field(&c.Privacy),
		validation.Field(&c.S3),
		validation.Field(&c.FTP),
	)
}

// Load builds a Config from defaults and the YAML file at path. An empty
// path falls back to DefaultPath, which may be absent.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	var err error
	if strings.TrimSpace(path) == "" {
		err = LoadOptional(DefaultPath(), cfg)
	} else {
		err = LoadFile(path, cfg)
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
