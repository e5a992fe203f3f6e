package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/writer/internal/common"
	"github.com/dmitrijs2005/writer/internal/logging"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	List(ctx context.Context) error
	Categories(ctx context.Context) error
	SelectCategory(ctx context.Context, ref string) error
	AddCategory(ctx context.Context) error
	RenameCategory(ctx context.Context, ref string) error
	DeleteCategory(ctx context.Context, ref string) error

	New(ctx context.Context) error
	Edit(ctx context.Context, ref string) error
	Show(ctx context.Context, ref string) error
	Delete(ctx context.Context, ref string) error
	Details(ctx context.Context, ref string) error
	Copy(ctx context.Context, ref string) error
	Move(ctx context.Context, ref, category string) error
	Lock(ctx context.Context) error

	Backup(ctx context.Context) error
	Restore(ctx context.Context) error
	Export(ctx context.Context, dir string) error
	Import(ctx context.Context, path string) error
	Push(ctx context.Context, target string) error
	Pull(ctx context.Context, target string) error

	Privacy(ctx context.Context) error
	Pending(ctx context.Context) error
}

const helpText = `Notes:      (l)ist, new, edit <id>, show <id>, delete <id>, details <id>,
            copy <id>, move <id> <category|main>, lock
Categories: cats, cat <id|main>, addcat, renamecat <id>, delcat <id>
Backup:     backup, restore, export [dir], import <path>,
            push [s3|ftp|all], pull <s3|ftp>
Other:      privacy, pending, help, exit`

// usage lists commands that need arguments and how many.
var usage = map[string]struct {
	args int
	text string
}{
	"cat":       {1, "cat <id|main>"},
	"renamecat": {1, "renamecat <id>"},
	"delcat":    {1, "delcat <id>"},
	"edit":      {1, "edit <id>"},
	"show":      {1, "show <id>"},
	"delete":    {1, "delete <id>"},
	"details":   {1, "details <id>"},
	"copy":      {1, "copy <id>"},
	"move":      {2, "move <id> <category|main>"},
	"import":    {1, "import <path>"},
	"pull":      {1, "pull <s3|ftp>"},
}

// runREPL starts the read-eval-print loop for the Writer CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on a. Errors returned by handlers are logged, reported
// to the user, and the loop continues. The loop exits on EOF or when the user types
// "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, logger logging.Logger) {
	for {
		printlnFn(fmt.Sprintf("writer %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if u, ok := usage[cmd]; ok && len(args) < u.args {
			printlnFn("Usage:", u.text)
			continue
		}
		arg := func(i int) string {
			if i < len(args) {
				return args[i]
			}
			return ""
		}

		var cmdErr error
		switch cmd {
		case "help":
			printlnFn(helpText)

		case "l", "list":
			cmdErr = a.List(ctx)
		case "new":
			cmdErr = a.New(ctx)
		case "edit":
			cmdErr = a.Edit(ctx, arg(0))
		case "show":
			cmdErr = a.Show(ctx, arg(0))
		case "delete":
			cmdErr = a.Delete(ctx, arg(0))
		case "details":
			cmdErr = a.Details(ctx, arg(0))
		case "copy":
			cmdErr = a.Copy(ctx, arg(0))
		case "move":
			cmdErr = a.Move(ctx, arg(0), arg(1))
		case "lock":
			cmdErr = a.Lock(ctx)

		case "cats":
			cmdErr = a.Categories(ctx)
		case "cat":
			cmdErr = a.SelectCategory(ctx, arg(0))
		case "addcat":
			cmdErr = a.AddCategory(ctx)
		case "renamecat":
			cmdErr = a.RenameCategory(ctx, arg(0))
		case "delcat":
			cmdErr = a.DeleteCategory(ctx, arg(0))

		case "backup":
			cmdErr = a.Backup(ctx)
		case "restore":
			cmdErr = a.Restore(ctx)
		case "export":
			cmdErr = a.Export(ctx, arg(0))
		case "import":
			cmdErr = a.Import(ctx, arg(0))
		case "push":
			cmdErr = a.Push(ctx, arg(0))
		case "pull":
			cmdErr = a.Pull(ctx, arg(0))

		case "privacy":
			cmdErr = a.Privacy(ctx)
		case "pending":
			cmdErr = a.Pending(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			logger.Warn(ctx, "command failed", "cmd", cmd, "err", cmdErr)
			printlnFn(userMessage(cmdErr))
		}
		if errors.Is(err, io.EOF) {
			return
		}
	}
}

// userMessage turns a handler error into a line for the user.
func userMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrCancelled):
		return "Cancelled."
	case errors.Is(err, common.ErrWrongPassword):
		return "Wrong password."
	case errors.Is(err, common.ErrPasswordMismatch):
		return "Passwords do not match."
	case errors.Is(err, common.ErrNotFound):
		return "Not found."
	case errors.Is(err, common.ErrMainCategory):
		return "The Main category cannot be changed."
	case errors.Is(err, common.ErrBackupNotFound):
		return "No backup found."
	case errors.Is(err, common.ErrInvalidBackup):
		return "That file is not a Writer database."
	case errors.Is(err, common.ErrRemoteNotConfigured):
		return "Remote backup is not configured."
	}
	return "Error: " + err.Error()
}
