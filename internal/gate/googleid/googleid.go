// Package googleid authenticates the user as the Google account stored by
// `locktodo login`.
package googleid

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"locktodo/internal/config"
	"locktodo/internal/gate"
)

// APITimeout bounds the userinfo lookup.
const APITimeout = 10 * time.Second

// Scopes are requested by login and needed for the identity check.
var Scopes = []string{oauth2api.UserinfoEmailScope}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithEmail requires the signed-in account to have this address.
func WithEmail(email string) Option {
	return func(a *Authenticator) {
		a.email = strings.TrimSpace(email)
	}
}

// WithClientOptions adds options to the userinfo service (for testing).
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(a *Authenticator) {
		a.clientOpts = append(a.clientOpts, opts...)
	}
}

// Authenticator checks that the stored OAuth token belongs to a live Google
// account.
type Authenticator struct {
	clientPath string
	tokenPath  string
	email      string
	clientOpts []option.ClientOption
}

// New creates an Authenticator using the credentials in cfg's directory.
func New(cfg *config.Config, opts ...Option) *Authenticator {
	a := &Authenticator{
		clientPath: cfg.OAuthClientPath(),
		tokenPath:  cfg.TokenPath(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authenticate implements gate.Authenticator. The prompt is unused: the
// browser consent already happened during login.
func (a *Authenticator) Authenticate(ctx context.Context, prompt string) (gate.Result, error) {
	if _, err := os.Stat(a.clientPath); err != nil {
		return gate.Result{Unsupported: true, Reason: fmt.Sprintf("%s not found", config.OAuthClientFile)}, nil
	}
	if _, err := os.Stat(a.tokenPath); err != nil {
		return gate.Result{Unsupported: true, Reason: "not logged in (run: locktodo login)"}, nil
	}

	oauthConfig, err := LoadConfig(a.clientPath)
	if err != nil {
		return gate.Result{}, err
	}
	token, err := LoadToken(a.tokenPath)
	if err != nil {
		return gate.Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, token))
	opts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, a.clientOpts...)
	svc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return gate.Result{}, fmt.Errorf("failed to create userinfo service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return gate.Result{Reason: wrapError(err).Error()}, nil
	}

	if info.VerifiedEmail != nil && !*info.VerifiedEmail {
		return gate.Result{Reason: fmt.Sprintf("email %s is not verified", info.Email)}, nil
	}
	if a.email != "" && !strings.EqualFold(info.Email, a.email) {
		return gate.Result{Reason: fmt.Sprintf("signed in as %s, expected %s", info.Email, a.email)}, nil
	}
	return gate.Result{Success: true, Subject: info.Email}, nil
}

// LoadConfig reads the OAuth client credentials file.
func LoadConfig(path string) (*oauth2.Config, error) {
	clientJSON, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.OAuthClientFile, err)
	}
	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.OAuthClientFile, err)
	}
	return oauthConfig, nil
}

// LoadToken reads a token written by SaveToken.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.TokenFile, err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.TokenFile, err)
	}
	return &token, nil
}

// SaveToken saves an OAuth token to a file with mode 0600.
func SaveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// TokenValid reports whether the stored token has a refresh token and can
// still produce an access token.
func TokenValid(ctx context.Context, clientPath, tokenPath string) bool {
	token, err := LoadToken(tokenPath)
	if err != nil || token.RefreshToken == "" {
		return false
	}
	oauthConfig, err := LoadConfig(clientPath)
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	_, err = oauthConfig.TokenSource(ctx, token).Token()
	return err == nil
}

func wrapError(err error) error {
	errStr := err.Error()

	if strings.Contains(errStr, "context deadline exceeded") {
		return fmt.Errorf("request timed out")
	}
	if strings.Contains(errStr, "401") || strings.Contains(errStr, "403") ||
		strings.Contains(errStr, "oauth2: ") {
		return fmt.Errorf("token expired or revoked (run: locktodo login)")
	}
	return err
}
