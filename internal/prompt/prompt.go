// Package prompt reads secrets from the user.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/term"
)

// ErrNoInput is returned when input ends before a line is read.
var ErrNoInput = errors.New("no input")

// fder is implemented by *os.File.
type fder interface {
	Fd() uintptr
}

// Terminal prompts on out and reads answers from in. When in is a terminal
// the answer is read without echo; otherwise one line is read.
type Terminal struct {
	in     io.Reader
	out    io.Writer
	reader *bufio.Reader
}

// New creates a Terminal prompter.
func New(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out, reader: bufio.NewReader(in)}
}

// Secret prints prompt and reads an answer. Its signature matches
// gate.Prompter.
func (t *Terminal) Secret(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprintf(t.out, "%s: ", prompt)

	if f, ok := t.in.(fder); ok && term.IsTerminal(f.Fd()) {
		secret, err := term.ReadPassword(f.Fd())
		fmt.Fprintln(t.out)
		if err != nil {
			return "", fmt.Errorf("read from terminal: %w", err)
		}
		return string(secret), nil
	}

	line, err := t.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
