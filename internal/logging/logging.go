// Package logging sets up the debug log. The dialogs own the terminal, so
// diagnostics never go to stderr; with --debug they go to a file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// FileName is the debug log written under the temp directory.
const FileName = "opencode-helix-debug.log"

// Path returns the debug log location.
func Path() string {
	return filepath.Join(os.TempDir(), FileName)
}

// Setup installs the default logger. When debug is false every record is
// discarded. The returned func closes the log file.
func Setup(debug bool) (*slog.Logger, func() error, error) {
	if !debug {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		slog.SetDefault(logger)
		return logger, func() error { return nil }, nil
	}

	f, err := os.OpenFile(Path(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, err
	}
	logger := New(f, true)
	slog.SetDefault(logger)
	return logger, f.Close, nil
}

// New returns a text logger on w.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
