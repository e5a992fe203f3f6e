package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/writer/internal/common"
	"github.com/dmitrijs2005/writer/internal/cryptox"
	"github.com/dmitrijs2005/writer/internal/logging"
	"github.com/dmitrijs2005/writer/internal/models"
)

// Store is the subset of entry persistence the editor needs.
type Store interface {
	Get(ctx context.Context, id int64) (*models.Entry, error)
	Create(ctx context.Context, e *models.Entry) (int64, error)
	Update(ctx context.Context, e *models.Entry) error
	Delete(ctx context.Context, id int64) error
}

// Prompter asks the user for passwords and confirmations.
type Prompter interface {
	// NewPassword asks for a new password and its confirmation.
	NewPassword(ctx context.Context) (password, confirm []byte, err error)
	// Password asks for the password of an encrypted note.
	Password(ctx context.Context) ([]byte, error)
	// ConfirmDisableEncryption asks whether to store the note unencrypted.
	ConfirmDisableEncryption(ctx context.Context) (bool, error)
}

type Deps struct {
	Store    Store
	Cipher   *cryptox.Cipher
	Sessions *cryptox.Sessions
	Prompter Prompter
	Logger   logging.Logger
}

// Outcome tells what Save did.
type Outcome int

const (
	OutcomeUnchanged Outcome = iota
	OutcomeDiscarded
	OutcomeCreated
	OutcomeUpdated
	OutcomeDeleted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDiscarded:
		return "discarded"
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	case OutcomeDeleted:
		return "deleted"
	}
	return "unchanged"
}

// Session is one pass through the editor for a single note.
type Session struct {
	deps Deps

	id         int64
	categoryID int64

	origTitle     string
	origBody      string
	origEncrypted bool

	title     string
	body      string
	encrypted bool

	password        []byte
	salt            []byte
	passwordChanged bool
}

// New starts a session for a note that does not exist yet.
func New(deps Deps, categoryID int64) *Session {
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	return &Session{deps: deps, categoryID: categoryID}
}

// Open loads a note. Encrypted notes are decrypted with the session password
// for that note if one is known, otherwise with a prompted one.
func Open(ctx context.Context, deps Deps, id int64) (*Session, error) {
	s := New(deps, models.MainCategoryID)

	e, err := deps.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.id = e.ID
	s.categoryID = e.CategoryID
	s.origTitle = e.Title
	s.origEncrypted = e.IsEncrypted

	body := e.Body
	if e.IsEncrypted {
		body, err = s.unlock(ctx, e.Body)
		if err != nil {
			return nil, err
		}
		if s.salt, err = cryptox.ExtractSalt(e.Body); err != nil {
			return nil, err
		}
	}
	s.origBody = body
	s.title, s.body, s.encrypted = s.origTitle, s.origBody, s.origEncrypted
	return s, nil
}

func (s *Session) unlock(ctx context.Context, sealed string) (string, error) {
	if pw := s.deps.Sessions.Get(s.id); pw != nil {
		plain, err := s.deps.Cipher.Decrypt(sealed, pw)
		if err == nil {
			s.password = pw
			return plain, nil
		}
		common.WipeByteArray(pw)
		if !errors.Is(err, common.ErrWrongPassword) {
			return "", err
		}
		s.deps.Sessions.Clear(s.id)
	}

	pw, err := s.deps.Prompter.Password(ctx)
	if err != nil {
		return "", err
	}
	plain, err := s.deps.Cipher.Decrypt(sealed, pw)
	if err != nil {
		common.WipeByteArray(pw)
		return "", err
	}
	s.password = pw
	s.deps.Sessions.Set(s.id, pw)
	return plain, nil
}

func (s *Session) ID() int64         { return s.id }
func (s *Session) CategoryID() int64 { return s.categoryID }
func (s *Session) Title() string     { return s.title }
func (s *Session) Body() string      { return s.body }
func (s *Session) Encrypted() bool   { return s.encrypted }

func (s *Session) SetTitle(t string) { s.title = t }
func (s *Session) SetBody(b string)  { s.body = b }

func (s *Session) askNewPassword(ctx context.Context) ([]byte, error) {
	pw, confirm, err := s.deps.Prompter.NewPassword(ctx)
	defer common.WipeByteArray(confirm)
	if err != nil {
		return nil, err
	}
	if err := cryptox.ValidateNewPassword(pw, confirm); err != nil {
		common.WipeByteArray(pw)
		return nil, err
	}
	return pw, nil
}

// SetEncrypted turns encryption on or off. Turning it on without a known
// password runs the password setup. Turning it off on a note that was stored
// encrypted needs confirmation; declining returns common.ErrCancelled and
// leaves encryption on.
func (s *Session) SetEncrypted(ctx context.Context, on bool) error {
	if on == s.encrypted {
		return nil
	}

	if on {
		if s.password == nil {
			pw, err := s.askNewPassword(ctx)
			if err != nil {
				return err
			}
			s.password = pw
			s.salt = nil
		}
		s.encrypted = true
		return nil
	}

	if s.origEncrypted {
		ok, err := s.deps.Prompter.ConfirmDisableEncryption(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return common.ErrCancelled
		}
	}
	s.encrypted = false
	return nil
}

// ChangePassword sets a new password for an encrypted note. The next save
// uses a fresh salt.
func (s *Session) ChangePassword(ctx context.Context) error {
	if !s.encrypted {
		return errors.New("note is not encrypted")
	}
	pw, err := s.askNewPassword(ctx)
	if err != nil {
		return err
	}
	common.WipeByteArray(s.password)
	s.password = pw
	s.salt = nil
	s.passwordChanged = true
	return nil
}

// Dirty reports whether Save would write anything for an existing note.
func (s *Session) Dirty() bool {
	return s.title != s.origTitle ||
		s.body != s.origBody ||
		s.encrypted != s.origEncrypted ||
		s.passwordChanged
}

func (s *Session) isEmpty() bool {
	return s.title == "" && s.body == ""
}

func (s *Session) sealBody() (string, error) {
	if !s.encrypted {
		return s.body, nil
	}
	sealed, err := s.deps.Cipher.Encrypt(s.body, s.password, s.salt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrEncryption, err)
	}
	return sealed, nil
}

// Save persists the session according to the rules in the package comment.
func (s *Session) Save(ctx context.Context) (Outcome, error) {
	var (
		outcome Outcome
		err     error
	)
	if s.id == 0 {
		outcome, err = s.saveNew(ctx)
	} else {
		outcome, err = s.saveExisting(ctx)
	}
	if err != nil {
		return OutcomeUnchanged, err
	}
	s.deps.Logger.Debug(ctx, "editor save", "id", s.id, "outcome", outcome.String(), "encrypted", s.encrypted)
	return outcome, nil
}

func (s *Session) saveNew(ctx context.Context) (Outcome, error) {
	if s.isEmpty() {
		return OutcomeDiscarded, nil
	}
	body, err := s.sealBody()
	if err != nil {
		return OutcomeUnchanged, err
	}
	e := &models.Entry{Title: s.title, Body: body, CategoryID: s.categoryID, IsEncrypted: s.encrypted}
	id, err := s.deps.Store.Create(ctx, e)
	if err != nil {
		return OutcomeUnchanged, err
	}
	s.id = id
	s.committed(body)
	return OutcomeCreated, nil
}

func (s *Session) saveExisting(ctx context.Context) (Outcome, error) {
	if s.isEmpty() {
		if err := s.deps.Store.Delete(ctx, s.id); err != nil {
			return OutcomeUnchanged, err
		}
		s.deps.Sessions.Clear(s.id)
		return OutcomeDeleted, nil
	}
	if !s.Dirty() {
		return OutcomeUnchanged, nil
	}
	body, err := s.sealBody()
	if err != nil {
		return OutcomeUnchanged, err
	}
	e := &models.Entry{ID: s.id, Title: s.title, Body: body, CategoryID: s.categoryID, IsEncrypted: s.encrypted}
	if err := s.deps.Store.Update(ctx, e); err != nil {
		return OutcomeUnchanged, err
	}
	s.committed(body)
	return OutcomeUpdated, nil
}

// committed makes the just written state the new baseline.
func (s *Session) committed(storedBody string) {
	s.origTitle, s.origBody, s.origEncrypted = s.title, s.body, s.encrypted
	s.passwordChanged = false
	if s.encrypted {
		s.salt, _ = cryptox.ExtractSalt(storedBody)
		s.deps.Sessions.Set(s.id, s.password)
		return
	}
	s.deps.Sessions.Clear(s.id)
	common.WipeByteArray(s.password)
	s.password = nil
	s.salt = nil
}

// Close wipes the in-memory password copy held by the session.
func (s *Session) Close() {
	common.WipeByteArray(s.password)
	s.password = nil
}
