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
	"locktodo/internal/export"
	"locktodo/internal/store"
)

func init() {
	Register(&ExportCmd{})
}

// ExportCmd implements the export command.
type ExportCmd struct {
	format string
	output string
}

// SetFormat sets the export format (for testing).
func (c *ExportCmd) SetFormat(format string) {
	c.format = format
}

// SetOutput sets the output file (for testing).
func (c *ExportCmd) SetOutput(path string) {
	c.output = path
}

func (c *ExportCmd) Name() string      { return "export" }
func (c *ExportCmd) Aliases() []string { return nil }
func (c *ExportCmd) Synopsis() string  { return "Write the list as JSON, CSV or PDF" }
func (c *ExportCmd) Usage() string {
	return "locktodo export [--format json|csv|pdf] [--output <file>]"
}
func (c *ExportCmd) NeedsAuth() bool { return true }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", "json", "")
	fs.StringVar(&c.format, "f", "json", "")
	fs.StringVar(&c.output, "output", "", "")
	fs.StringVar(&c.output, "o", "", "")
}

func (c *ExportCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	format := c.format
	if format == "" {
		format = "json"
	}

	data, err := export.Export(st.Tasks(), format)
	if err != nil {
		if errors.Is(err, export.ErrUnknownFormat) {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		fmt.Fprintf(errOut, "error: export failed: %v\n", err)
		return exitcode.BackendError
	}

	if c.output == "" {
		out.Write(data)
		return exitcode.Success
	}

	if err := os.WriteFile(c.output, data, 0600); err != nil {
		fmt.Fprintf(errOut, "error: failed to write %s: %v\n", c.output, err)
		return exitcode.UserError
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
