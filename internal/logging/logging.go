// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"locktodo/internal/config"
)

// Prefix is printed before every log line.
const Prefix = "locktodo"

// New returns a logger writing to w. --debug forces debug level;
// otherwise log.level and log.format from the settings apply, falling back
// to warn/text when they don't parse.
func New(w io.Writer, cfg *config.Config) *log.Logger {
	level, err := ParseLevel(cfg.Settings.Log.Level)
	if err != nil {
		level = log.WarnLevel
	}
	if cfg.Debug {
		level = log.DebugLevel
	}

	formatter, err := ParseFormatter(cfg.Settings.Log.Format)
	if err != nil {
		formatter = log.TextFormatter
	}

	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		Prefix:          Prefix,
		ReportTimestamp: cfg.Debug,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// ParseLevel parses debug, info, warn, error (case-insensitive).
func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel, nil
	case "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.WarnLevel, fmt.Errorf("unknown log level: %s", s)
	}
}

// ParseFormatter parses text, json, logfmt (case-insensitive).
func ParseFormatter(s string) (log.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	default:
		return log.TextFormatter, fmt.Errorf("unknown log format: %s", s)
	}
}
