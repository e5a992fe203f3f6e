package cli

import (
	"bufio"
	"context"
	"io"

	"github.com/dmitrijs2005/writer/internal/common"
)

// terminalPrompter answers the editor's password and confirmation requests
// on the terminal.
type terminalPrompter struct {
	reader *bufio.Reader
	out    io.Writer
}

func (p terminalPrompter) NewPassword(ctx context.Context) ([]byte, []byte, error) {
	pw, err := GetPassword(p.reader, "New password (min 6 characters)", p.out)
	if err != nil {
		return nil, nil, err
	}
	confirm, err := GetPassword(p.reader, "Confirm password", p.out)
	if err != nil {
		common.WipeByteArray(pw)
		return nil, nil, err
	}
	return pw, confirm, nil
}

func (p terminalPrompter) Password(ctx context.Context) ([]byte, error) {
	return GetPassword(p.reader, "Password", p.out)
}

func (p terminalPrompter) ConfirmDisableEncryption(ctx context.Context) (bool, error) {
	return Confirm(p.reader, "Store this note without encryption?", p.out)
}
