package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"locktodo/internal/config"
	"locktodo/internal/exitcode"
	"locktodo/internal/gate/googleid"
	"locktodo/internal/store"
)

const (
	// Starting port for OAuth callback server
	oauthStartPort = 8085

	// Max port attempts
	oauthMaxPortAttempts = 5
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command. The stored token backs the
// google gate method.
type LoginCmd struct {
	port    int
	browser func(authURL string)
}

// SetPort sets the first callback port tried; 0 picks any free port (for testing).
func (c *LoginCmd) SetPort(port int) {
	c.port = port
}

// SetBrowser replaces printing the consent URL (for testing).
func (c *LoginCmd) SetBrowser(fn func(authURL string)) {
	c.browser = fn
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in with Google" }
func (c *LoginCmd) Usage() string     { return "locktodo login [--port <n>]" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.port, "port", oauthStartPort, "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	if !cfg.HasOAuthClient() {
		printOAuthSetup(errOut, cfg)
		return exitcode.AuthError
	}

	if cfg.HasToken() && googleid.TokenValid(ctx, cfg.OAuthClientPath(), cfg.TokenPath()) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	oauthConfig, err := googleid.LoadConfig(cfg.OAuthClientPath())
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	attempts := oauthMaxPortAttempts
	if c.port == 0 {
		attempts = 1
	}
	listener, err := googleid.Listen(c.port, attempts)
	if err != nil {
		fmt.Fprintf(errOut, "error: could not bind to local port for OAuth callback\n")
		return exitcode.AuthError
	}

	browser := c.browser
	if browser == nil {
		browser = func(authURL string) {
			fmt.Fprintln(errOut, "Open this URL in your browser:")
			fmt.Fprintln(errOut, authURL)
		}
	}

	flow := &googleid.Flow{Config: oauthConfig, Listener: listener}
	token, err := flow.Run(ctx, browser)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(errOut, "error: cancelled")
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return exitcode.AuthError
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}
	if err := googleid.SaveToken(cfg.TokenPath(), token); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	if cfg.Settings.Gate.Method != config.GateGoogle {
		fmt.Fprintf(errOut, "note: gate.method is %q; set method = \"google\" under [gate] in %s to unlock with this account\n",
			cfg.Settings.Gate.Method, config.SettingsFile)
	}
	return exitcode.Success
}

func printOAuthSetup(errOut io.Writer, cfg *config.Config) {
	fmt.Fprintf(errOut, "error: %s not found in %s\n\n", config.OAuthClientFile, cfg.Dir)
	fmt.Fprintln(errOut, "To unlock your list with a Google account, you need OAuth credentials:")
	fmt.Fprintln(errOut, "")
	fmt.Fprintln(errOut, "1. Go to https://console.cloud.google.com/apis/credentials")
	fmt.Fprintln(errOut, "2. Create OAuth 2.0 credentials of type 'Desktop app'")
	fmt.Fprintln(errOut, "3. Download the JSON file and save it as:")
	fmt.Fprintf(errOut, "   %s\n", cfg.OAuthClientPath())
	fmt.Fprintln(errOut, "")
	fmt.Fprintf(errOut, "Then run 'locktodo login' again, and set method = \"google\" under [gate] in %s.\n", config.SettingsFile)
}
