package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
)

// Gate methods.
const (
	GateNone     = "none"
	GatePasscode = "passcode"
	GateGoogle   = "google"
)

// Defaults.
const (
	DefaultStorageKey   = "@todos"
	DefaultGatePrompt   = "Authenticate to access your To-Do List"
	DefaultGateAttempts = 3
	DefaultLogLevel     = "warn"
	DefaultLogFormat    = "text"
)

// DSNEnv overrides storage.dsn for the mysql backend.
const DSNEnv = "LOCKTODO_DSN"

// Settings mirrors config.toml.
type Settings struct {
	Storage StorageSettings `toml:"storage"`
	Gate    GateSettings    `toml:"gate"`
	Log     LogSettings     `toml:"log"`
}

// StorageSettings selects and configures the persistence backend.
type StorageSettings struct {
	Backend string `toml:"backend"`
	Key     string `toml:"key"`
	Path    string `toml:"path"`
	DSN     string `toml:"dsn"`
}

// GateSettings configures the access gate.
type GateSettings struct {
	Method   string `toml:"method"`
	Prompt   string `toml:"prompt"`
	Attempts int    `toml:"attempts"`
	Email    string `toml:"email"`
}

// LogSettings configures the process logger.
type LogSettings struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultSettings returns the settings used when config.toml is absent.
func DefaultSettings() Settings {
	return Settings{
		Storage: StorageSettings{
			Backend: BackendFile,
			Key:     DefaultStorageKey,
		},
		Gate: GateSettings{
			Method:   GatePasscode,
			Prompt:   DefaultGatePrompt,
			Attempts: DefaultGateAttempts,
		},
		Log: LogSettings{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Load reads config.toml from the config directory over the defaults.
// A missing file is not an error.
func (c *Config) Load() error {
	settings := DefaultSettings()
	if _, err := toml.DecodeFile(c.SettingsPath(), &settings); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read %s: %w", SettingsFile, err)
		}
	}

	if dsn := os.Getenv(DSNEnv); dsn != "" {
		settings.Storage.DSN = dsn
	}

	settings.fillDefaults()
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid %s: %w", SettingsFile, err)
	}
	c.Settings = settings
	return nil
}

// fillDefaults restores defaults for keys present but left empty.
func (s *Settings) fillDefaults() {
	d := DefaultSettings()
	s.Storage.Backend = strings.ToLower(strings.TrimSpace(s.Storage.Backend))
	if s.Storage.Backend == "" {
		s.Storage.Backend = d.Storage.Backend
	}
	if s.Storage.Key == "" {
		s.Storage.Key = d.Storage.Key
	}
	s.Gate.Method = strings.ToLower(strings.TrimSpace(s.Gate.Method))
	if s.Gate.Method == "" {
		s.Gate.Method = d.Gate.Method
	}
	if s.Gate.Prompt == "" {
		s.Gate.Prompt = d.Gate.Prompt
	}
	if s.Gate.Attempts == 0 {
		s.Gate.Attempts = d.Gate.Attempts
	}
	if s.Log.Level == "" {
		s.Log.Level = d.Log.Level
	}
	if s.Log.Format == "" {
		s.Log.Format = d.Log.Format
	}
}

// Validate checks enumerated values and required combinations.
func (s Settings) Validate() error {
	switch s.Storage.Backend {
	case BackendFile, BackendSQLite:
	case BackendMySQL:
		if s.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn required for mysql backend (or set %s)", DSNEnv)
		}
	default:
		return fmt.Errorf("unknown storage.backend: %s", s.Storage.Backend)
	}

	switch s.Gate.Method {
	case GateNone, GatePasscode, GateGoogle:
	default:
		return fmt.Errorf("unknown gate.method: %s", s.Gate.Method)
	}

	if s.Gate.Attempts < 1 {
		return fmt.Errorf("gate.attempts must be at least 1: %d", s.Gate.Attempts)
	}
	return nil
}
