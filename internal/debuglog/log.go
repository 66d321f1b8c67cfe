// Package debuglog is the file-backed logger for the app. The TUI owns the
// terminal, so logs always go to a file, never to stdout/stderr. Logging is
// off by default.
package debuglog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu      sync.Mutex
	logger  = zerolog.Nop()
	logFile *os.File
)

// ParseLevel parses a config string into a zerolog level. Unknown strings
// default to info; "off" (or empty) disables logging.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Setup opens the log file and installs the package logger at the given
// level. An empty path defaults to ~/.cinefeed/cinefeed.log. Setup with
// zerolog.Disabled tears logging down.
func Setup(level zerolog.Level, path string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	logger = zerolog.Nop()

	if level == zerolog.Disabled {
		return nil
	}

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving home directory: %w", err)
		}
		dir := filepath.Join(home, ".cinefeed")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
		path = filepath.Join(dir, "cinefeed.log")
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", path, err)
	}

	logFile = f
	logger = zerolog.New(f).Level(level).With().Timestamp().Logger()
	return nil
}

// Close closes the log file if open.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	logger = zerolog.Nop()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

func current() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

func Debugf(format string, args ...any) {
	l := current()
	l.Debug().Msgf(format, args...)
}

func Infof(format string, args ...any) {
	l := current()
	l.Info().Msgf(format, args...)
}

func Warnf(format string, args ...any) {
	l := current()
	l.Warn().Msgf(format, args...)
}

func Errorf(format string, args ...any) {
	l := current()
	l.Error().Msgf(format, args...)
}
