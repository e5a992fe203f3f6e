package cli

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("  hello world \n"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(bufio.NewReader(strings.NewReader("lastline")), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(bufio.NewReader(strings.NewReader("")), "Name?", &out)
	require.Error(t, err)
}

func TestGetMultiline_DoubleEnter(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("a\nb\n\nrest\n"))
	var out bytes.Buffer
	got, err := GetMultiline(in, "Enter text", &out)
	require.NoError(t, err)
	assert.Equal(t, "a\nb", got)

	rest, err := in.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "rest\n", rest, "reader stops right after the empty line")
}

func TestGetMultiline_EOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetMultiline(bufio.NewReader(strings.NewReader("only line")), "Enter text", &out)
	require.NoError(t, err)
	assert.Equal(t, "only line", got)

	_, err = GetMultiline(bufio.NewReader(strings.NewReader("")), "Enter text", &out)
	require.ErrorIs(t, err, io.EOF)
}

func TestGetMultiline_KeepsWhitespace(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("  indented\r\ntrailing  \n\n"))
	var out bytes.Buffer
	got, err := GetMultiline(in, "Enter text", &out)
	require.NoError(t, err)
	assert.Equal(t, "  indented\ntrailing  ", got)
}

func TestConfirm(t *testing.T) {
	for in, want := range map[string]bool{
		"y\n": true, "YES\n": true, "n\n": false, "\n": false, "maybe\n": false, "": false,
	} {
		var out bytes.Buffer
		got, err := Confirm(bufio.NewReader(strings.NewReader(in)), "Sure?", &out)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
		assert.Equal(t, "Sure? [y/N]: ", out.String())
	}
}

func stubTerminal(t *testing.T, terminal bool, pw []byte, err error) {
	t.Helper()
	origIs, origRead := isTerminal, readPassword
	t.Cleanup(func() { isTerminal, readPassword = origIs, origRead })
	isTerminal = func(int) bool { return terminal }
	readPassword = func(int) ([]byte, error) { return pw, err }
}

func TestGetPassword_Terminal(t *testing.T) {
	stubTerminal(t, true, []byte("s3cret!"), nil)

	var out bytes.Buffer
	pw, err := GetPassword(bufio.NewReader(strings.NewReader("")), "Password", &out)
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cret!"), pw)
	assert.Equal(t, "Password: \n", out.String())
}

func TestGetPassword_TerminalError(t *testing.T) {
	stubTerminal(t, true, nil, errors.New("no tty"))

	var out bytes.Buffer
	_, err := GetPassword(bufio.NewReader(strings.NewReader("")), "Password", &out)
	require.EqualError(t, err, "no tty")
}

func TestGetPassword_PipedInput(t *testing.T) {
	stubTerminal(t, false, nil, errors.New("must not be called"))

	var out bytes.Buffer
	pw, err := GetPassword(bufio.NewReader(strings.NewReader("piped-pw\n")), "Password", &out)
	require.NoError(t, err)
	assert.Equal(t, []byte("piped-pw"), pw)
}

func TestGetPassword_PipedInputKeepsSpaces(t *testing.T) {
	stubTerminal(t, false, nil, errors.New("must not be called"))

	var out bytes.Buffer
	pw, err := GetPassword(bufio.NewReader(strings.NewReader(" pass word \r\n")), "Password", &out)
	require.NoError(t, err)
	assert.Equal(t, []byte(" pass word "), pw)

	pw, err = GetPassword(bufio.NewReader(strings.NewReader("no-newline")), "Password", &out)
	require.NoError(t, err)
	assert.Equal(t, []byte("no-newline"), pw)

	_, err = GetPassword(bufio.NewReader(strings.NewReader("")), "Password", &out)
	require.ErrorIs(t, err, io.EOF)
}
