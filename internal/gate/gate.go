// Package gate guards the task list behind an authentication check.
//
// A Gate is closed until its Authenticator reports success. How the user is
// authenticated (passcode, Google account, nothing at all) is left to the
// Authenticator; the Gate only tracks the outcome and exposes a retry.
package gate

import (
	"context"

	"github.com/charmbracelet/log"

	"locktodo/internal/config"
	"locktodo/internal/logging"
)

// Result is the outcome of one authentication attempt.
type Result struct {
	// Success is true when the user was authenticated.
	Success bool

	// Unsupported is true when the method cannot run at all on this
	// machine (no passcode set, not logged in). Retrying won't help.
	Unsupported bool

	// Reason explains a failure for display.
	Reason string

	// Subject names who was authenticated, when known.
	Subject string
}

// Authenticator performs one authentication attempt.
type Authenticator interface {
	Authenticate(ctx context.Context, prompt string) (Result, error)
}

// Prompter asks the user for a secret.
type Prompter func(ctx context.Context, prompt string) (string, error)

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, prompt string) (Result, error)

// Authenticate calls f.
func (f AuthenticatorFunc) Authenticate(ctx context.Context, prompt string) (Result, error) {
	return f(ctx, prompt)
}

// Unlocked always succeeds. It backs gate.method = "none".
var Unlocked Authenticator = AuthenticatorFunc(func(context.Context, string) (Result, error) {
	return Result{Success: true}, nil
})

// Option configures a Gate.
type Option func(*Gate)

// WithPrompt sets the message shown when authenticating.
func WithPrompt(prompt string) Option {
	return func(g *Gate) {
		if prompt != "" {
			g.prompt = prompt
		}
	}
}

// WithLogger sets the logger for attempts.
func WithLogger(logger *log.Logger) Option {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// DefaultPrompt is shown when no prompt is configured.
const DefaultPrompt = config.DefaultGatePrompt

// Gate tracks whether the user has authenticated.
type Gate struct {
	auth     Authenticator
	prompt   string
	logger   *log.Logger
	open     bool
	attempts int
}

// New creates a closed gate.
func New(auth Authenticator, opts ...Option) *Gate {
	g := &Gate{
		auth:   auth,
		prompt: DefaultPrompt,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Open authenticates unless the gate is already open.
func (g *Gate) Open(ctx context.Context) Result {
	if g.open {
		return Result{Success: true}
	}
	return g.attempt(ctx)
}

// Retry authenticates again after a failed Open.
func (g *Gate) Retry(ctx context.Context) Result {
	g.open = false
	return g.attempt(ctx)
}

// IsOpen reports whether the last attempt succeeded.
func (g *Gate) IsOpen() bool {
	return g.open
}

// Attempts returns how many times the Authenticator has been called.
func (g *Gate) Attempts() int {
	return g.attempts
}

// Close locks the gate again.
func (g *Gate) Close() {
	g.open = false
}

func (g *Gate) attempt(ctx context.Context) Result {
	g.attempts++
	res, err := g.auth.Authenticate(ctx, g.prompt)
	if err != nil {
		res = Result{Reason: err.Error()}
	}
	if res.Success && res.Unsupported {
		res.Success = false
	}
	if !res.Success && res.Reason == "" {
		if res.Unsupported {
			res.Reason = "authentication is not available"
		} else {
			res.Reason = "authentication failed"
		}
	}

	g.open = res.Success
	if res.Success {
		g.logger.Debug("gate opened", "attempt", g.attempts, "subject", res.Subject)
	} else {
		g.logger.Debug("gate stayed closed", "attempt", g.attempts, "unsupported", res.Unsupported, "reason", res.Reason)
	}
	return res
}
