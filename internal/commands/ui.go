package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"locktodo/internal/config"
	"locktodo/internal/exitcode"
	"locktodo/internal/store"
	"locktodo/internal/ui"
)

func init() {
	Register(&UICmd{})
}

// UICmd implements the ui command.
type UICmd struct {
	inline bool
	in     io.Reader
	run    func(ctx context.Context, st *store.Store, opts ...ui.Option) error
}

// SetRunner replaces the interactive program (for testing).
func (c *UICmd) SetRunner(run func(ctx context.Context, st *store.Store, opts ...ui.Option) error) {
	c.run = run
}

// SetInline sets the --inline flag (for testing).
func (c *UICmd) SetInline(inline bool) {
	c.inline = inline
}

// SetInput replaces stdin as the key source (for testing).
func (c *UICmd) SetInput(in io.Reader) {
	c.in = in
}

func (c *UICmd) Name() string      { return "ui" }
func (c *UICmd) Aliases() []string { return nil }
func (c *UICmd) Synopsis() string  { return "Open the interactive list" }
func (c *UICmd) Usage() string     { return "locktodo ui [--inline]" }
func (c *UICmd) NeedsAuth() bool   { return true }

func (c *UICmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.inline, "inline", false, "")
}

func (c *UICmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	run := c.run
	if run == nil {
		run = ui.Run
	}

	opts := []ui.Option{ui.WithOutput(out), ui.WithAltScreen(!c.inline)}
	if c.in != nil {
		opts = append(opts, ui.WithInput(c.in))
	}

	if err := run(ctx, st, opts...); err != nil {
		// Interrupted by a signal: the list was saved as it went.
		if killedByContext(ctx, err) {
			return exitcode.Success
		}
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}

func killedByContext(ctx context.Context, err error) bool {
	return ctx.Err() != nil &&
		errors.Is(err, tea.ErrProgramKilled) &&
		!errors.Is(err, tea.ErrProgramPanic)
}
