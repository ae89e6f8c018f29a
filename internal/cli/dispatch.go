// Package cli parses the command line, opens the access gate and the task
// store, and runs the selected command.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"locktodo/internal/backend"
	"locktodo/internal/commands"
	"locktodo/internal/config"
	"locktodo/internal/exitcode"
	"locktodo/internal/gate"
	"locktodo/internal/gate/googleid"
	"locktodo/internal/gate/passcode"
	"locktodo/internal/kv"
	"locktodo/internal/logging"
	"locktodo/internal/prompt"
	"locktodo/internal/store"
)

// BackendOpener opens the key-value store the task list lives in.
// Used to inject the backend during dispatch.
type BackendOpener func(ctx context.Context, cfg *config.Config) (kv.Store, error)

// AuthFactory builds the authenticator for the configured gate method.
// ask reads a secret from the user.
type AuthFactory func(cfg *config.Config, ask gate.Prompter) (gate.Authenticator, error)

// DefaultAuth picks the authenticator named by gate.method.
func DefaultAuth(cfg *config.Config, ask gate.Prompter) (gate.Authenticator, error) {
	switch cfg.Settings.Gate.Method {
	case config.GateNone:
		return gate.Unlocked, nil
	case config.GatePasscode:
		return passcode.New(cfg.PasscodePath(), ask), nil
	case config.GateGoogle:
		return googleid.New(cfg, googleid.WithEmail(cfg.Settings.Gate.Email)), nil
	default:
		return nil, fmt.Errorf("unknown gate.method: %s", cfg.Settings.Gate.Method)
	}
}

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	open     BackendOpener
	auth     AuthFactory
	in       io.Reader
}

// NewDispatcher creates a new dispatcher with the given registry, backend
// opener and authenticator factory. Nil functions select backend.Open and
// DefaultAuth.
func NewDispatcher(registry *commands.Registry, open BackendOpener, auth AuthFactory) *Dispatcher {
	if open == nil {
		open = backend.Open
	}
	if auth == nil {
		auth = DefaultAuth
	}
	return &Dispatcher{
		registry: registry,
		open:     open,
		auth:     auth,
		in:       os.Stdin,
	}
}

// SetInput replaces stdin for gate prompts (for testing).
func (d *Dispatcher) SetInput(in io.Reader) {
	d.in = in
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", flagError(err))
		return exitcode.UserError
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	if err := cfg.Load(); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.AuthError
	}
	logger := logging.New(errOut, cfg)
	logger.Debug("dispatching", "command", cmd.Name(), "config", cfg.Dir)

	if !cmd.NeedsAuth() {
		return cmd.Run(ctx, cfg, nil, positionalArgs, out, errOut)
	}

	// Access gate
	auth, err := d.auth(cfg, prompt.New(d.in, errOut).Secret)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.AuthError
	}
	g := gate.New(auth,
		gate.WithPrompt(cfg.Settings.Gate.Prompt),
		gate.WithLogger(logger),
	)
	if !unlock(ctx, g, cfg.Settings.Gate.Attempts, errOut) {
		return exitcode.AuthError
	}

	// Task store
	kvs, err := d.open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
	defer func() {
		if err := kvs.Close(); err != nil {
			logger.Error("failed to close storage", "err", err)
		}
	}()

	st := store.New(kvs,
		store.WithKey(cfg.Settings.Storage.Key),
		store.WithLogger(logger),
	)
	st.Load(ctx)

	code := cmd.Run(ctx, cfg, st, positionalArgs, out, errOut)

	// Drain writes even if ctx was cancelled, so the last mutation lands.
	if err := st.Wait(context.WithoutCancel(ctx)); err != nil {
		logger.Error("failed waiting for saves", "err", err)
	}
	return code
}

// unlock opens g, retrying up to attempts times. Every failure is reported
// on errOut; unsupported methods are not retried.
func unlock(ctx context.Context, g *gate.Gate, attempts int, errOut io.Writer) bool {
	res := g.Open(ctx)
	for tries := 1; !res.Success; tries++ {
		fmt.Fprintf(errOut, "error: authentication failed: %s\n", res.Reason)
		if res.Unsupported || tries >= attempts || ctx.Err() != nil {
			return false
		}
		res = g.Retry(ctx)
	}
	return true
}

// flagError rewrites flag package errors into the CLI's wording.
func flagError(err error) string {
	errStr := err.Error()

	// Missing flag value
	if strings.Contains(errStr, "flag needs an argument") {
		parts := strings.SplitN(errStr, ":", 2)
		if len(parts) == 2 {
			return "flag needs an argument: " + strings.TrimSpace(parts[1])
		}
	}

	// Unknown flag
	if strings.HasPrefix(errStr, "flag provided but not defined:") {
		return "unknown flag: " + strings.TrimPrefix(errStr, "flag provided but not defined: ")
	}

	return errStr
}
