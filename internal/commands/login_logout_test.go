package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"locktodo/internal/commands"
	"locktodo/internal/config"
	"locktodo/internal/exitcode"
)

func newLoginConfig(t *testing.T, tokenURL string) *config.Config {
	t.Helper()
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	oauthClient := fmt.Sprintf(`{"installed":{"client_id":"test","client_secret":"test",`+
		`"redirect_uris":["http://localhost"],"auth_uri":"https://accounts.example.com/auth","token_uri":%q}}`, tokenURL)
	if err := os.WriteFile(cfg.OAuthClientPath(), []byte(oauthClient), 0600); err != nil {
		t.Fatalf("failed to write oauth_client.json: %v", err)
	}
	return cfg
}

// tokenServer answers the code exchange, checking the PKCE verifier is sent.
func tokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.Form.Get("code") != "the-code" {
			http.Error(w, "bad code", http.StatusBadRequest)
			return
		}
		if r.Form.Get("code_verifier") == "" {
			http.Error(w, "missing verifier", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"at","token_type":"Bearer","refresh_token":"rt","expires_in":3600}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// redirectBrowser follows the consent URL straight to the callback with query.
func redirectBrowser(t *testing.T, query url.Values) func(string) {
	return func(authURL string) {
		u, err := url.Parse(authURL)
		if err != nil {
			t.Errorf("bad auth URL: %v", err)
			return
		}
		if u.Query().Get("code_challenge") == "" {
			t.Error("auth URL should carry a PKCE challenge")
		}
		query.Set("state", u.Query().Get("state"))
		resp, err := http.Get(u.Query().Get("redirect_uri") + "?" + query.Encode())
		if err != nil {
			t.Errorf("callback request failed: %v", err)
			return
		}
		resp.Body.Close()
	}
}

// TestLoginCommand_NoOAuthClient verifies login fails without oauth_client.json
func TestLoginCommand_NoOAuthClient(t *testing.T) {
	cmd := &commands.LoginCmd{}

	var outBuf, errBuf bytes.Buffer
	cfg := &config.Config{Dir: t.TempDir()}

	code := cmd.Run(context.Background(), cfg, nil, nil, &outBuf, &errBuf)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if outBuf.String() != "" {
		t.Errorf("expected no stdout, got %q", outBuf.String())
	}
	if !strings.Contains(errBuf.String(), "oauth_client.json not found") {
		t.Errorf("expected error message about missing oauth_client.json, got %q", errBuf.String())
	}
	if !strings.Contains(errBuf.String(), `method = "google"`) {
		t.Error("expected setup instructions to mention the google gate method")
	}
}

func TestLoginCommand_SavesToken(t *testing.T) {
	srv := tokenServer(t)
	cfg := newLoginConfig(t, srv.URL)

	cmd := &commands.LoginCmd{}
	cmd.SetPort(0)
	cmd.SetBrowser(redirectBrowser(t, url.Values{"code": {"the-code"}}))

	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(context.Background(), cfg, nil, nil, &outBuf, &errBuf)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d: %s", exitcode.Success, code, errBuf.String())
	}
	if outBuf.String() != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", outBuf.String())
	}
	// Default gate method is passcode, so login points at the setting.
	if !strings.Contains(errBuf.String(), `set method = "google"`) {
		t.Errorf("expected gate method note, got %q", errBuf.String())
	}

	data, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		t.Fatalf("token.json not written: %v", err)
	}
	var saved map[string]any
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatal(err)
	}
	if saved["refresh_token"] != "rt" {
		t.Errorf("unexpected token %s", data)
	}
	info, _ := os.Stat(cfg.TokenPath())
	if info.Mode().Perm() != 0600 {
		t.Errorf("token.json mode %v, want 0600", info.Mode().Perm())
	}
}

func TestLoginCommand_GoogleGateNoNote(t *testing.T) {
	srv := tokenServer(t)
	cfg := newLoginConfig(t, srv.URL)
	cfg.Settings.Gate.Method = config.GateGoogle
	cfg.Quiet = true

	cmd := &commands.LoginCmd{}
	cmd.SetBrowser(redirectBrowser(t, url.Values{"code": {"the-code"}}))

	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(context.Background(), cfg, nil, nil, &outBuf, &errBuf)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d: %s", exitcode.Success, code, errBuf.String())
	}
	if outBuf.String() != "" || errBuf.String() != "" {
		t.Errorf("expected silence, got %q / %q", outBuf.String(), errBuf.String())
	}
}

func TestLoginCommand_Denied(t *testing.T) {
	srv := tokenServer(t)
	cfg := newLoginConfig(t, srv.URL)

	cmd := &commands.LoginCmd{}
	cmd.SetBrowser(redirectBrowser(t, url.Values{"error": {"access_denied"}}))

	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(context.Background(), cfg, nil, nil, &outBuf, &errBuf)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if errBuf.String() != "error: authorization denied: access_denied\n" {
		t.Errorf("unexpected stderr %q", errBuf.String())
	}
	if cfg.HasToken() {
		t.Error("no token should be saved")
	}
}

// TestLoginCommand_NoRefreshToken verifies login proceeds when token has no refresh token
func TestLoginCommand_NoRefreshToken(t *testing.T) {
	cfg := newLoginConfig(t, "https://oauth2.example.com/token")
	tokenWithoutRefresh := `{"access_token":"test","token_type":"Bearer","expiry":"2020-01-01T00:00:00Z"}`
	if err := os.WriteFile(cfg.TokenPath(), []byte(tokenWithoutRefresh), 0600); err != nil {
		t.Fatalf("failed to write token.json: %v", err)
	}

	// Cancelled up front so the callback wait ends immediately.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := &commands.LoginCmd{}
	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(ctx, cfg, nil, nil, &outBuf, &errBuf)

	if outBuf.String() == "already logged in\n" {
		t.Error("should not say 'already logged in' with token missing refresh_token")
	}
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.Contains(errBuf.String(), "Open this URL in your browser:") {
		t.Errorf("expected consent URL, got %q", errBuf.String())
	}
	if !strings.HasSuffix(errBuf.String(), "error: cancelled\n") {
		t.Errorf("expected cancellation, got %q", errBuf.String())
	}
}

// TestLogoutCommand_OnlyRemovesToken verifies logout only removes token.json
func TestLogoutCommand_OnlyRemovesToken(t *testing.T) {
	cmd := &commands.LogoutCmd{}

	tmpDir := t.TempDir()
	oauthPath := filepath.Join(tmpDir, "oauth_client.json")
	if err := os.WriteFile(oauthPath, []byte(`{"installed":{"client_id":"test","client_secret":"test"}}`), 0600); err != nil {
		t.Fatalf("failed to write oauth_client.json: %v", err)
	}
	tokenPath := filepath.Join(tmpDir, "token.json")
	if err := os.WriteFile(tokenPath, []byte(`{"access_token":"test","refresh_token":"test"}`), 0600); err != nil {
		t.Fatalf("failed to write token.json: %v", err)
	}

	var outBuf, errBuf bytes.Buffer
	cfg := &config.Config{Dir: tmpDir}

	code := cmd.Run(context.Background(), cfg, nil, nil, &outBuf, &errBuf)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if errBuf.String() != "" {
		t.Errorf("expected no stderr, got %q", errBuf.String())
	}
	if outBuf.String() != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", outBuf.String())
	}
	if _, err := os.Stat(tokenPath); !os.IsNotExist(err) {
		t.Error("token.json should have been deleted")
	}
	if _, err := os.Stat(oauthPath); err != nil {
		t.Error("oauth_client.json should NOT have been deleted")
	}
}

func TestLogoutCommand_WarnsGoogleGate(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir(), Settings: config.DefaultSettings()}
	cfg.Settings.Gate.Method = config.GateGoogle
	if err := os.WriteFile(cfg.TokenPath(), []byte(`{}`), 0600); err != nil {
		t.Fatal(err)
	}

	var outBuf, errBuf bytes.Buffer
	code := (&commands.LogoutCmd{}).Run(context.Background(), cfg, nil, nil, &outBuf, &errBuf)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(errBuf.String(), "google gate stays closed") {
		t.Errorf("expected gate note, got %q", errBuf.String())
	}
}

// TestLogoutCommand_NotLoggedIn verifies logout handles not being logged in
func TestLogoutCommand_NotLoggedIn(t *testing.T) {
	for _, quiet := range []bool{false, true} {
		var outBuf, errBuf bytes.Buffer
		cfg := &config.Config{Dir: t.TempDir(), Quiet: quiet}

		code := (&commands.LogoutCmd{}).Run(context.Background(), cfg, nil, nil, &outBuf, &errBuf)

		if code != exitcode.Success {
			t.Errorf("quiet=%v: expected exit code %d, got %d", quiet, exitcode.Success, code)
		}
		if errBuf.String() != "" {
			t.Errorf("quiet=%v: expected no stderr, got %q", quiet, errBuf.String())
		}
		want := "not logged in\n"
		if quiet {
			want = ""
		}
		if outBuf.String() != want {
			t.Errorf("quiet=%v: expected %q, got %q", quiet, want, outBuf.String())
		}
	}
}
