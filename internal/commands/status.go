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
	Register(&StatusCmd{})
}

// StatusCmd implements the status command.
type StatusCmd struct{}

func (c *StatusCmd) Name() string      { return "status" }
func (c *StatusCmd) Aliases() []string { return nil }
func (c *StatusCmd) Synopsis() string  { return "Show storage and task counts" }
func (c *StatusCmd) Usage() string     { return "locktodo status" }
func (c *StatusCmd) NeedsAuth() bool   { return true }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	s := cfg.Settings
	fmt.Fprintf(out, "config:  %s\n", cfg.Dir)
	fmt.Fprintf(out, "backend: %s\n", s.Storage.Backend)
	switch s.Storage.Backend {
	case config.BackendFile:
		fmt.Fprintf(out, "data:    %s\n", cfg.DataPath())
	case config.BackendSQLite:
		fmt.Fprintf(out, "data:    %s\n", cfg.DatabasePath())
	}
	fmt.Fprintf(out, "key:     %s\n", st.Key())
	gate := s.Gate.Method
	if gate == config.GatePasscode && !cfg.HasPasscode() {
		gate += " (not set)"
	}
	fmt.Fprintf(out, "gate:    %s\n", gate)
	fmt.Fprintf(out, "tasks:   %s\n", output.Summary(st.Tasks()))
	return exitcode.Success
}
