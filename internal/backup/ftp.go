package backup

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/dmitrijs2005/writer/internal/common"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jlaffaye/ftp"
)

// FTPOptions configures an FTP backup directory.
type FTPOptions struct {
	Addr     string        `yaml:"addr"`
	User     string        `yaml:"user"`
	Password string        `yaml:"password"`
	Dir      string        `yaml:"dir"`
	Timeout  time.Duration `yaml:"timeout"`
}

func (o FTPOptions) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.User, validation.When(o.Addr != "", validation.Required)),
		validation.Field(&o.Timeout, validation.Min(time.Duration(0))),
	)
}

func (o FTPOptions) Configured() bool { return o.Addr != "" }

type ftpConn interface {
	Login(user, password string) error
	Stor(path string, r io.Reader) error
	Retr(path string) (io.ReadCloser, error)
	NameList(path string) ([]string, error)
	MakeDir(path string) error
	Quit() error
}

// serverConn adapts *ftp.ServerConn, whose Retr returns a concrete response.
type serverConn struct {
	*ftp.ServerConn
}

func (c serverConn) Retr(path string) (io.ReadCloser, error) {
	return c.ServerConn.Retr(path)
}

var dialFTP = func(addr string, timeout time.Duration) (ftpConn, error) {
	c, err := ftp.Dial(addr, ftp.DialWithTimeout(timeout))
	if err != nil {
		return nil, err
	}
	return serverConn{c}, nil
}

const defaultFTPTimeout = 10 * time.Second

// FTPRemote stores backups as files in a directory on an FTP server.
// Every operation uses its own connection.
type FTPRemote struct {
	opts FTPOptions
}

func NewFTPRemote(opts FTPOptions) *FTPRemote {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultFTPTimeout
	}
	return &FTPRemote{opts: opts}
}

func (r *FTPRemote) Name() string { return "ftp" }

func (r *FTPRemote) path(name string) string {
	if r.opts.Dir == "" {
		return name
	}
	return path.Join(r.opts.Dir, name)
}

func (r *FTPRemote) connect(ctx context.Context) (ftpConn, error) {
	if !r.opts.Configured() {
		return nil, common.ErrRemoteNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conn, err := dialFTP(r.opts.Addr, r.opts.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to FTP: %w", err)
	}
	if err := conn.Login(r.opts.User, r.opts.Password); err != nil {
		_ = conn.Quit()
		return nil, fmt.Errorf("failed to login to FTP: %w", err)
	}
	return conn, nil
}

func (r *FTPRemote) Upload(ctx context.Context, name string, body io.Reader) error {
	conn, err := r.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Quit()

	if r.opts.Dir != "" {
		// fails when the directory already exists
		_ = conn.MakeDir(r.opts.Dir)
	}
	if err := conn.Stor(r.path(name), body); err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	return nil
}

type ftpReadCloser struct {
	io.ReadCloser
	conn ftpConn
}

func (f ftpReadCloser) Close() error {
	err := f.ReadCloser.Close()
	_ = f.conn.Quit()
	return err
}

func (r *FTPRemote) Download(ctx context.Context, name string) (io.ReadCloser, error) {
	conn, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}

	rc, err := conn.Retr(r.path(name))
	if err != nil {
		_ = conn.Quit()
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	return ftpReadCloser{ReadCloser: rc, conn: conn}, nil
}

func (r *FTPRemote) Latest(ctx context.Context) (string, error) {
	conn, err := r.connect(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Quit()

	dir := r.opts.Dir
	if dir == "" {
		dir = "."
	}
	names, err := conn.NameList(dir)
	if err != nil {
		return "", fmt.Errorf("failed to list files: %w", err)
	}

	name := newest(names)
	if name == "" {
		return "", common.ErrBackupNotFound
	}
	return name, nil
}
