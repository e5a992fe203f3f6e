package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/writer/internal/common"
	"github.com/dmitrijs2005/writer/internal/editor"
	"github.com/dmitrijs2005/writer/internal/services"
)

const (
	previewLen   = 48
	detailLayout = "02-Jan-06 03:04 PM"
)

// List prints the live notes of the current category, newest first.
func (a *App) List(ctx context.Context) error {
	list, err := a.entries.List(ctx, a.category)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("No notes here yet. Type 'new' to write one.")
		return nil
	}
	var b strings.Builder
	for _, e := range list {
		fmt.Fprintf(&b, "%5d  %-*s  %s\n", e.ID, previewLen, e.Preview(previewLen), e.UpdatedAt.Local().Format(detailLayout))
	}
	a.println(a.renderer.Render(strings.TrimRight(b.String(), "\n")))
	return nil
}

func (a *App) printNote(s *editor.Session) {
	var b strings.Builder
	if s.Title() != "" {
		b.WriteString(s.Title())
		b.WriteString("\n\n")
	}
	b.WriteString(s.Body())
	a.println(a.renderer.Render(b.String()))
}

func (a *App) open(ctx context.Context, ref string) (*editor.Session, error) {
	id, err := parseID(ref)
	if err != nil {
		return nil, err
	}
	return editor.Open(ctx, a.editorDeps(), id)
}

// Show prints a note, asking for its password if it is encrypted.
func (a *App) Show(ctx context.Context, ref string) error {
	s, err := a.open(ctx, ref)
	if err != nil {
		return err
	}
	defer s.Close()
	a.printNote(s)
	return nil
}

// New writes a note into the current category.
func (a *App) New(ctx context.Context) error {
	s := editor.New(a.editorDeps(), a.category)
	defer s.Close()

	title, err := GetSimpleText(a.reader, "Title", a.out)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	body, err := GetMultiline(a.reader, "Note", a.out)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	s.SetTitle(title)
	s.SetBody(body)

	if title != "" || body != "" {
		encrypt, err := Confirm(a.reader, "Encrypt this note?", a.out)
		if err != nil {
			return err
		}
		if encrypt {
			if err := s.SetEncrypted(ctx, true); err != nil {
				return err
			}
		}
	}
	return a.save(ctx, s)
}

func (a *App) save(ctx context.Context, s *editor.Session) error {
	outcome, err := s.Save(ctx)
	if err != nil {
		return err
	}
	switch outcome {
	case editor.OutcomeCreated:
		a.printf("Note #%d saved.\n", s.ID())
	case editor.OutcomeUpdated:
		a.printf("Note #%d updated.\n", s.ID())
	case editor.OutcomeDeleted:
		a.println("Note was empty and has been deleted.")
	case editor.OutcomeDiscarded:
		a.println("Empty note discarded.")
	default:
		a.println("No changes.")
	}
	return nil
}

const editHelp = "Editing: title, body, append, encrypt, decrypt, password, show, save, cancel"

// Edit opens a note in a small sub-loop. Ending input saves like the save
// command does.
func (a *App) Edit(ctx context.Context, ref string) error {
	s, err := a.open(ctx, ref)
	if err != nil {
		return err
	}
	defer s.Close()

	a.printNote(s)
	a.println(editHelp)
	for {
		lock := ""
		if s.Encrypted() {
			lock = " locked"
		}
		cmd, err := GetSimpleText(a.reader, fmt.Sprintf("edit #%d%s", s.ID(), lock), a.out)
		if errors.Is(err, io.EOF) {
			return a.save(ctx, s)
		}
		if err != nil {
			return err
		}

		switch cmd {
		case "title":
			// Input ending at the prompt keeps the current title.
			t, err := GetSimpleText(a.reader, "New title", a.out)
			if errors.Is(err, io.EOF) {
				return a.save(ctx, s)
			}
			if err != nil {
				return err
			}
			s.SetTitle(t)
		case "body":
			b, err := GetMultiline(a.reader, "New text", a.out)
			if errors.Is(err, io.EOF) {
				return a.save(ctx, s)
			}
			if err != nil {
				return err
			}
			s.SetBody(b)
		case "append":
			b, err := GetMultiline(a.reader, "Text to append", a.out)
			if errors.Is(err, io.EOF) {
				return a.save(ctx, s)
			}
			if err != nil {
				return err
			}
			if s.Body() == "" {
				s.SetBody(b)
			} else if b != "" {
				s.SetBody(s.Body() + "\n" + b)
			}
		case "encrypt":
			if err := s.SetEncrypted(ctx, true); err != nil {
				a.println(userMessage(err))
			}
		case "decrypt":
			if err := s.SetEncrypted(ctx, false); err != nil {
				a.println(userMessage(err))
			}
		case "password":
			if err := s.ChangePassword(ctx); err != nil {
				a.println(userMessage(err))
			}
		case "show":
			a.printNote(s)
		case "save":
			return a.save(ctx, s)
		case "cancel", "quit":
			if s.Dirty() {
				ok, err := Confirm(a.reader, "Discard unsaved changes?", a.out)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
			}
			a.println("Changes discarded.")
			return nil
		default:
			a.println(editHelp)
		}
	}
}

// Delete soft-deletes a note after confirmation.
func (a *App) Delete(ctx context.Context, ref string) error {
	id, err := parseID(ref)
	if err != nil {
		return err
	}
	if _, err := a.entries.Get(ctx, id); err != nil {
		return err
	}
	ok, err := Confirm(a.reader, "Do you really want to delete this?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrCancelled
	}
	if err := a.entries.Delete(ctx, id); err != nil {
		return err
	}
	a.sessions.Clear(id)
	a.println("Note deleted.")
	return nil
}

func (a *App) Details(ctx context.Context, ref string) error {
	id, err := parseID(ref)
	if err != nil {
		return err
	}
	d, err := a.entries.Details(ctx, id)
	if err != nil {
		return err
	}
	a.printf("Created on: %s\nUpdated on: %s\nCategory:   %s\nEncrypted:  %t\nSync:       %s\n",
		d.CreatedAt.Local().Format(detailLayout),
		d.UpdatedAt.Local().Format(detailLayout),
		d.Category, d.IsEncrypted, d.SyncStatus)
	return nil
}

// Copy puts the note's text on the system clipboard.
func (a *App) Copy(ctx context.Context, ref string) error {
	s, err := a.open(ctx, ref)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := writeClipboard(services.CopyText(s.Title(), s.Body())); err != nil {
		return fmt.Errorf("failed to copy: %w", err)
	}
	a.println("Note copied.")
	return nil
}

func (a *App) Move(ctx context.Context, ref, category string) error {
	id, err := parseID(ref)
	if err != nil {
		return err
	}
	cat, err := parseCategory(category)
	if err != nil {
		return err
	}
	if err := a.entries.Move(ctx, id, cat); err != nil {
		return err
	}
	a.printf("Note #%d moved.\n", id)
	return nil
}

// Lock forgets every remembered note password and derived key.
func (a *App) Lock(ctx context.Context) error {
	a.sessions.ClearAll()
	a.cipher.ClearKeys()
	a.println("All notes locked.")
	return nil
}

// Pending lists changes not yet synced.
func (a *App) Pending(ctx context.Context) error {
	list, err := a.entries.Pending(ctx)
	if err != nil {
		return err
	}
	a.printf("%d pending change(s)\n", len(list))
	for _, e := range list {
		state := "changed"
		if e.IsDeleted {
			state = "deleted"
		}
		a.printf("%5d  %s\n", e.ID, state)
	}
	return nil
}
