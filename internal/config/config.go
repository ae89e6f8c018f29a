// Package config handles the XDG configuration directory, its files, and settings.
package config

import (
	"os"
	"path/filepath"
)

const (
	// AppName is the application directory name.
	AppName = "locktodo"

	// SettingsFile is the TOML settings filename.
	SettingsFile = "config.toml"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// PasscodeFile holds the bcrypt hash of the passcode.
	PasscodeFile = "passcode.hash"

	// DataDir is the subdirectory used by the file backend.
	DataDir = "data"

	// DatabaseFile is the default SQLite database filename.
	DatabaseFile = "locktodo.db"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Settings are read from config.toml, or defaults when it is absent.
	Settings Settings
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/locktodo or $HOME/.config/locktodo.
// Settings start at their defaults; call Load to read config.toml.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{Dir: dir, Settings: DefaultSettings()}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SettingsPath returns the path to config.toml.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// PasscodePath returns the path to the passcode hash file.
func (c *Config) PasscodePath() string {
	return filepath.Join(c.Dir, PasscodeFile)
}

// DataPath returns the directory used by the file backend.
func (c *Config) DataPath() string {
	return filepath.Join(c.Dir, DataDir)
}

// DatabasePath returns the SQLite database path.
// A relative storage.path is resolved against the config directory.
func (c *Config) DatabasePath() string {
	p := c.Settings.Storage.Path
	if p == "" {
		return filepath.Join(c.Dir, DatabaseFile)
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}

// HasPasscode checks if a passcode has been set.
func (c *Config) HasPasscode() bool {
	_, err := os.Stat(c.PasscodePath())
	return err == nil
}
