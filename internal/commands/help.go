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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct {
	registry *Registry
}

// SetRegistry sets the registry listed by help (for testing).
func (c *HelpCmd) SetRegistry(r *Registry) {
	c.registry = r
}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "locktodo help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	r := c.registry
	if r == nil {
		r = DefaultRegistry
	}
	fmt.Fprint(out, usageText(r.All()))
	return exitcode.Success
}

// usageColumn is the width usage strings are padded to.
const usageColumn = 58

func usageText(cmds []Command) string {
	var b strings.Builder
	b.WriteString("Usage:\n")
	fmt.Fprintf(&b, "  %-*s %s\n", usageColumn, "locktodo", "List all tasks")
	for _, cmd := range cmds {
		synopsis := cmd.Synopsis()
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			synopsis += " (alias: " + strings.Join(aliases, ", ") + ")"
		}
		fmt.Fprintf(&b, "  %-*s %s\n", usageColumn, cmd.Usage(), synopsis)
	}
	b.WriteString(helpFooter)
	return b.String()
}

const helpFooter = `
<ref> is a 1-based position from "locktodo list" or a task id from "list --ids".

Common flags (after the command):
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
