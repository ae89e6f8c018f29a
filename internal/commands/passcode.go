package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"locktodo/internal/config"
	"locktodo/internal/exitcode"
	"locktodo/internal/gate/passcode"
	"locktodo/internal/prompt"
	"locktodo/internal/store"
)

func init() {
	Register(&PasscodeCmd{})
}

// PasscodeCmd implements the passcode command.
type PasscodeCmd struct {
	clear bool
	in    io.Reader
}

// SetClear sets the --clear flag (for testing).
func (c *PasscodeCmd) SetClear(clear bool) {
	c.clear = clear
}

// SetInput replaces stdin (for testing).
func (c *PasscodeCmd) SetInput(in io.Reader) {
	c.in = in
}

func (c *PasscodeCmd) Name() string      { return "passcode" }
func (c *PasscodeCmd) Aliases() []string { return nil }
func (c *PasscodeCmd) Synopsis() string  { return "Set or clear the passcode" }
func (c *PasscodeCmd) Usage() string     { return "locktodo passcode [--clear]" }
func (c *PasscodeCmd) NeedsAuth() bool   { return false }

func (c *PasscodeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.clear, "clear", false, "")
}

func (c *PasscodeCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	in := c.in
	if in == nil {
		in = os.Stdin
	}
	ask := prompt.New(in, errOut).Secret
	path := cfg.PasscodePath()

	// Changing or clearing requires the current passcode.
	if passcode.IsSet(path) {
		current, err := ask(ctx, "Current passcode")
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		if err := passcode.Verify(path, current); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.AuthError
		}
	} else if c.clear {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no passcode set")
		}
		return exitcode.Success
	}

	if c.clear {
		if err := passcode.Clear(path); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		if !cfg.Quiet {
			fmt.Fprintln(out, "ok")
		}
		return exitcode.Success
	}

	code, err := ask(ctx, "New passcode")
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	confirm, err := ask(ctx, "Confirm passcode")
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if code != confirm {
		fmt.Fprintln(errOut, "error: passcodes do not match")
		return exitcode.UserError
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.UserError
	}
	if err := passcode.Set(path, code); err != nil {
		if errors.Is(err, passcode.ErrTooShort) {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		fmt.Fprintf(errOut, "error: failed to save passcode: %v\n", err)
		return exitcode.UserError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
