package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"locktodo/internal/config"
	"locktodo/internal/exitcode"
	"locktodo/internal/store"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command.
type EditCmd struct{}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Replace a task's text" }
func (c *EditCmd) Usage() string     { return "locktodo edit <ref> <text...>" }
func (c *EditCmd) NeedsAuth() bool   { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	t, ok := resolveTask(st, args, errOut)
	if !ok {
		return exitcode.UserError
	}
	if len(args) < 2 {
		fmt.Fprintln(errOut, "error: text required")
		return exitcode.UserError
	}

	st.SetEditTarget(t.ID)
	if _, _, ok := st.Submit(strings.Join(args[1:], " ")); !ok {
		st.ClearEditTarget()
		return exitcode.Success
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
