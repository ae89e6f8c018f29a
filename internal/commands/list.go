package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"locktodo/internal/config"
	"locktodo/internal/exitcode"
	"locktodo/internal/output"
	"locktodo/internal/store"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `locktodo` (no args) and `locktodo list`.
type ListCmd struct {
	ids bool
}

// SetIDs enables the id column (for testing).
func (c *ListCmd) SetIDs(ids bool) {
	c.ids = ids
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return "locktodo list [--ids]" }
func (c *ListCmd) NeedsAuth() bool   { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.ids, "ids", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	tasks := st.Tasks()
	if len(tasks) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, output.NoTasks)
		}
		return exitcode.Success
	}

	output.FormatTasks(out, tasks, c.ids)
	return exitcode.Success
}
