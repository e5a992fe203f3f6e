package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/writer/internal/common"
	"github.com/dmitrijs2005/writer/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	calls []string
	err   error
}

func (f *fakeExec) record(parts ...string) error {
	f.calls = append(f.calls, strings.Join(parts, " "))
	return f.err
}

func (f *fakeExec) List(ctx context.Context) error       { return f.record("list") }
func (f *fakeExec) Categories(ctx context.Context) error { return f.record("cats") }
func (f *fakeExec) SelectCategory(ctx context.Context, ref string) error {
	return f.record("cat", ref)
}
func (f *fakeExec) AddCategory(ctx context.Context) error { return f.record("addcat") }
func (f *fakeExec) RenameCategory(ctx context.Context, ref string) error {
	return f.record("renamecat", ref)
}
func (f *fakeExec) DeleteCategory(ctx context.Context, ref string) error {
	return f.record("delcat", ref)
}
func (f *fakeExec) New(ctx context.Context) error               { return f.record("new") }
func (f *fakeExec) Edit(ctx context.Context, ref string) error    { return f.record("edit", ref) }
func (f *fakeExec) Show(ctx context.Context, ref string) error    { return f.record("show", ref) }
func (f *fakeExec) Delete(ctx context.Context, ref string) error  { return f.record("delete", ref) }
func (f *fakeExec) Details(ctx context.Context, ref string) error { return f.record("details", ref) }
func (f *fakeExec) Copy(ctx context.Context, ref string) error    { return f.record("copy", ref) }
func (f *fakeExec) Move(ctx context.Context, ref, category string) error {
	return f.record("move", ref, category)
}
func (f *fakeExec) Lock(ctx context.Context) error            { return f.record("lock") }
func (f *fakeExec) Backup(ctx context.Context) error          { return f.record("backup") }
func (f *fakeExec) Restore(ctx context.Context) error         { return f.record("restore") }
func (f *fakeExec) Export(ctx context.Context, dir string) error { return f.record("export", dir) }
func (f *fakeExec) Import(ctx context.Context, path string) error {
	return f.record("import", path)
}
func (f *fakeExec) Push(ctx context.Context, target string) error { return f.record("push", target) }
func (f *fakeExec) Pull(ctx context.Context, target string) error { return f.record("pull", target) }
func (f *fakeExec) Privacy(ctx context.Context) error             { return f.record("privacy") }
func (f *fakeExec) Pending(ctx context.Context) error             { return f.record("pending") }

// capturePrint swaps printlnFn for a recorder.
func capturePrint(t *testing.T) *[]string {
	t.Helper()
	var out []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		out = append(out, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &out
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	capturePrint(t)

	input := strings.Join([]string{
		"help",
		"l",
		"list",
		"new",
		"edit 3",
		"show 3",
		"details 3",
		"copy 3",
		"move 3 main",
		"delete 3",
		"cats",
		"cat 2",
		"addcat",
		"renamecat 2",
		"delcat 2",
		"lock",
		"backup",
		"restore",
		"export",
		"export /tmp/out",
		"import /tmp/in.db",
		"push",
		"push s3",
		"pull ftp",
		"privacy",
		"pending",
		"",
		"exit",
		"list",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "(Main)" }, bufio.NewReader(strings.NewReader(input)), logging.Discard())

	want := []string{
		"list", "list", "new", "edit 3", "show 3", "details 3", "copy 3", "move 3 main", "delete 3",
		"cats", "cat 2", "addcat", "renamecat 2", "delcat 2", "lock",
		"backup", "restore", "export ", "export /tmp/out", "import /tmp/in.db",
		"push ", "push s3", "pull ftp", "privacy", "pending",
	}
	assert.Equal(t, want, exec.calls)
}

func TestRunREPL_UsageUnknownAndQuit(t *testing.T) {
	out := capturePrint(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" },
		bufio.NewReader(strings.NewReader("edit\nmove 1\nfoobar\nquit\nnew\n")), logging.Discard())

	assert.Empty(t, exec.calls)
	assert.Contains(t, *out, "Usage: edit <id>")
	assert.Contains(t, *out, "Usage: move <id> <category|main>")
	assert.Contains(t, *out, "Unknown command: foobar")
	assert.Contains(t, *out, "Bye!")
}

func TestRunREPL_ReportsErrorsAndContinues(t *testing.T) {
	out := capturePrint(t)

	exec := &fakeExec{err: fmt.Errorf("opening: %w", common.ErrWrongPassword)}
	runREPL(context.Background(), exec, func() string { return "s" },
		bufio.NewReader(strings.NewReader("show 1\nlist")), logging.Discard())

	assert.Equal(t, []string{"show 1", "list"}, exec.calls, "last line without newline still runs")
	assert.Contains(t, *out, "Wrong password.")
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{common.ErrCancelled, "Cancelled."},
		{fmt.Errorf("x: %w", common.ErrNotFound), "Not found."},
		{common.ErrMainCategory, "The Main category cannot be changed."},
		{common.ErrPasswordMismatch, "Passwords do not match."},
		{common.ErrBackupNotFound, "No backup found."},
		{common.ErrInvalidBackup, "That file is not a Writer database."},
		{common.ErrRemoteNotConfigured, "Remote backup is not configured."},
		{errors.New("disk full"), "Error: disk full"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, userMessage(tt.err))
	}
}
