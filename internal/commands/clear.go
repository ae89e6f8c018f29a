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
	Register(&ClearCmd{})
}

// ClearCmd implements the clear command.
// Removes completed tasks, or every task with --all.
type ClearCmd struct {
	all bool
}

// SetAll sets the --all flag (for testing).
func (c *ClearCmd) SetAll(all bool) {
	c.all = all
}

func (c *ClearCmd) Name() string      { return "clear" }
func (c *ClearCmd) Aliases() []string { return nil }
func (c *ClearCmd) Synopsis() string  { return "Delete completed tasks" }
func (c *ClearCmd) Usage() string     { return "locktodo clear [--all]" }
func (c *ClearCmd) NeedsAuth() bool   { return true }

func (c *ClearCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.all, "all", false, "")
}

func (c *ClearCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	removed := 0
	for _, t := range st.Tasks() {
		if !c.all && !t.Completed {
			continue
		}
		if _, ok := st.Remove(t.ID); ok {
			removed++
		}
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "ok: removed %d\n", removed)
	}
	return exitcode.Success
}
