package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"locktodo/internal/config"
)

func writeSettings(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte(content), 0600); err != nil {
		t.Fatalf("failed to write settings: %v", err)
	}
}

func TestNew_DefaultDirFromXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	cfg, err := config.New("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(xdg, "locktodo")
	if cfg.Dir != want {
		t.Errorf("expected dir %q, got %q", want, cfg.Dir)
	}
}

func TestNew_ExplicitDir(t *testing.T) {
	cfg, err := config.New("/tmp/somewhere")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Dir != "/tmp/somewhere" {
		t.Errorf("expected explicit dir, got %q", cfg.Dir)
	}
	if cfg.Settings != config.DefaultSettings() {
		t.Errorf("expected default settings, got %+v", cfg.Settings)
	}
}

func TestPaths(t *testing.T) {
	cfg := &config.Config{Dir: "/cfg"}
	checks := map[string]string{
		cfg.SettingsPath():    "/cfg/config.toml",
		cfg.OAuthClientPath(): "/cfg/oauth_client.json",
		cfg.TokenPath():       "/cfg/token.json",
		cfg.PasscodePath():    "/cfg/passcode.hash",
		cfg.DataPath():        "/cfg/data",
		cfg.DatabasePath():    "/cfg/locktodo.db",
	}
	for got, want := range checks {
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}

func TestDatabasePath_Override(t *testing.T) {
	cfg := &config.Config{Dir: "/cfg"}
	cfg.Settings.Storage.Path = "other.db"
	if got := cfg.DatabasePath(); got != "/cfg/other.db" {
		t.Errorf("expected relative path under config dir, got %q", got)
	}
	cfg.Settings.Storage.Path = "/var/lib/todo.db"
	if got := cfg.DatabasePath(); got != "/var/lib/todo.db" {
		t.Errorf("expected absolute path kept, got %q", got)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(config.DSNEnv, "")
	cfg := &config.Config{Dir: t.TempDir()}
	if err := cfg.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Settings != config.DefaultSettings() {
		t.Errorf("expected defaults, got %+v", cfg.Settings)
	}
}

func TestLoad_ReadsFile(t *testing.T) {
	t.Setenv(config.DSNEnv, "")
	dir := t.TempDir()
	writeSettings(t, dir, `
[storage]
backend = "SQLite"
key = "@work"

[gate]
method = "none"
attempts = 5

[log]
level = "debug"
`)
	cfg := &config.Config{Dir: dir}
	if err := cfg.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := cfg.Settings
	if s.Storage.Backend != config.BackendSQLite {
		t.Errorf("expected sqlite backend, got %q", s.Storage.Backend)
	}
	if s.Storage.Key != "@work" {
		t.Errorf("expected key @work, got %q", s.Storage.Key)
	}
	if s.Gate.Method != config.GateNone || s.Gate.Attempts != 5 {
		t.Errorf("unexpected gate settings: %+v", s.Gate)
	}
	if s.Gate.Prompt != config.DefaultGatePrompt {
		t.Errorf("expected default prompt, got %q", s.Gate.Prompt)
	}
	if s.Log.Level != "debug" || s.Log.Format != config.DefaultLogFormat {
		t.Errorf("unexpected log settings: %+v", s.Log)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv(config.DSNEnv, "")
	cases := map[string]string{
		"unknown backend":   "[storage]\nbackend = \"redis\"\n",
		"unknown gate":      "[gate]\nmethod = \"face\"\n",
		"mysql without dsn": "[storage]\nbackend = \"mysql\"\n",
		"negative attempts": "[gate]\nattempts = -1\n",
		"bad toml":          "[storage\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeSettings(t, dir, content)
			cfg := &config.Config{Dir: dir}
			err := cfg.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), "config.toml") {
				t.Errorf("expected error to name config.toml, got %v", err)
			}
		})
	}
}

func TestLoad_DSNFromEnv(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, "[storage]\nbackend = \"mysql\"\n")
	t.Setenv(config.DSNEnv, "user:pw@tcp(localhost:3306)/todo")

	cfg := &config.Config{Dir: dir}
	if err := cfg.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Settings.Storage.DSN != "user:pw@tcp(localhost:3306)/todo" {
		t.Errorf("expected dsn from env, got %q", cfg.Settings.Storage.DSN)
	}
}

func TestHasHelpers(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{Dir: dir}
	if cfg.HasToken() || cfg.HasOAuthClient() || cfg.HasPasscode() {
		t.Fatal("expected no files in empty dir")
	}
	if err := os.WriteFile(cfg.TokenPath(), []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
	if !cfg.HasToken() {
		t.Error("expected token to exist")
	}
	if err := cfg.RemoveToken(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HasToken() {
		t.Error("expected token removed")
	}
}
