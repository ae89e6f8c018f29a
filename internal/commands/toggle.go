package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"locktodo/internal/config"
	"locktodo/internal/exitcode"
	"locktodo/internal/store"
)

func init() {
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command. Toggling a completed task
// reopens it.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string      { return "toggle" }
func (c *ToggleCmd) Aliases() []string { return []string{"done"} }
func (c *ToggleCmd) Synopsis() string  { return "Mark a task completed, or reopen it" }
func (c *ToggleCmd) Usage() string     { return "locktodo toggle <ref>" }
func (c *ToggleCmd) NeedsAuth() bool   { return true }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	t, ok := resolveTask(st, args, errOut)
	if !ok {
		return exitcode.UserError
	}

	st.ToggleComplete(t.ID)

	if !cfg.Quiet {
		updated, _ := st.Get(t.ID)
		if updated.Completed {
			fmt.Fprintln(out, "ok: done")
		} else {
			fmt.Fprintln(out, "ok: open")
		}
	}
	return exitcode.Success
}
