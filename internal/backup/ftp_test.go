package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/writer/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFTP struct {
	files    map[string][]byte
	loginErr error
	quits    int
	dirs     []string
}

func (f *fakeFTP) Login(user, password string) error { return f.loginErr }

func (f *fakeFTP) Stor(p string, r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.files[p] = b
	return nil
}

func (f *fakeFTP) Retr(p string) (io.ReadCloser, error) {
	b, ok := f.files[p]
	if !ok {
		return nil, errors.New("550 file unavailable")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (f *fakeFTP) NameList(dir string) ([]string, error) {
	var out []string
	for p := range f.files {
		if path.Dir(p) == dir {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeFTP) MakeDir(p string) error {
	f.dirs = append(f.dirs, p)
	return nil
}

func (f *fakeFTP) Quit() error {
	f.quits++
	return nil
}

func stubFTP(t *testing.T, conn *fakeFTP) {
	t.Helper()
	orig := dialFTP
	t.Cleanup(func() { dialFTP = orig })
	dialFTP = func(addr string, timeout time.Duration) (ftpConn, error) {
		assert.Equal(t, "ftp.example.com:21", addr)
		assert.Equal(t, defaultFTPTimeout, timeout)
		return conn, nil
	}
}

func testFTPOptions() FTPOptions {
	return FTPOptions{Addr: "ftp.example.com:21", User: "u", Password: "p", Dir: "writer"}
}

func TestFTPRemote_RoundTrip(t *testing.T) {
	conn := &fakeFTP{files: map[string][]byte{}}
	stubFTP(t, conn)
	r := NewFTPRemote(testFTPOptions())
	ctx := context.Background()

	_, err := r.Latest(ctx)
	require.ErrorIs(t, err, common.ErrBackupNotFound)

	require.NoError(t, r.Upload(ctx, "WriterBackup_20240101_000000_a.db", strings.NewReader("old")))
	require.NoError(t, r.Upload(ctx, "WriterBackup_20250101_000000_b.db", strings.NewReader("new")))
	assert.Contains(t, conn.dirs, "writer")

	name, err := r.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "WriterBackup_20250101_000000_b.db", name)

	rc, err := r.Download(ctx, name)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "new", string(got))

	// one connection per operation, each closed
	assert.Equal(t, 5, conn.quits)
}

func TestFTPRemote_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewFTPRemote(FTPOptions{}).Download(ctx, "x")
	require.ErrorIs(t, err, common.ErrRemoteNotConfigured)

	conn := &fakeFTP{files: map[string][]byte{}, loginErr: errors.New("530 login incorrect")}
	stubFTP(t, conn)
	err = NewFTPRemote(testFTPOptions()).Upload(ctx, "x", strings.NewReader(""))
	require.ErrorContains(t, err, "failed to login to FTP: 530 login incorrect")
	assert.Equal(t, 1, conn.quits)

	conn.loginErr = nil
	_, err = NewFTPRemote(testFTPOptions()).Download(ctx, "missing.db")
	require.ErrorContains(t, err, "failed to download file")

	dialFTP = func(addr string, timeout time.Duration) (ftpConn, error) {
		return nil, errors.New("connection refused")
	}
	_, err = NewFTPRemote(testFTPOptions()).Latest(ctx)
	require.ErrorContains(t, err, "failed to connect to FTP: connection refused")
}
