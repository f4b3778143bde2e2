// Package config resolves the settings shared by the mapflow binaries from
// the environment.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultDBPath is used when MAPFLOW_DB is unset.
	DefaultDBPath = "~/.mapflow/mapflow.db"
	// DefaultLogLevel is used when MAPFLOW_LOG_LEVEL is unset.
	DefaultLogLevel = "info"

	EnvDB       = "MAPFLOW_DB"
	EnvLogLevel = "MAPFLOW_LOG_LEVEL"
)

// DBPath returns the SQLite path from MAPFLOW_DB, falling back to
// DefaultDBPath.
func DBPath() string {
	if env := os.Getenv(EnvDB); env != "" {
		return env
	}

	return DefaultDBPath
}

// LogLevel returns the log level name from MAPFLOW_LOG_LEVEL, falling back
// to DefaultLogLevel.
func LogLevel() string {
	if env := os.Getenv(EnvLogLevel); env != "" {
		return env
	}

	return DefaultLogLevel
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: home directory: %w", err)
	}

	return filepath.Join(home, path[1:]), nil
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(strings.TrimSpace(name)))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("config: log level %q: %w", name, err)
	}

	return level, nil
}

// NewLogger returns a text logger writing to w at the named level.
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
