// Package logger builds charmbracelet/log loggers that share the process-wide level.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New creates a prefixed logger writing to stdout
func New(prefix string) *log.Logger {
	return NewWithWriter(os.Stdout, prefix)
}

// NewWithWriter creates a prefixed logger writing to w
func NewWithWriter(w io.Writer, prefix string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: true,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}

// Discard returns a logger that drops everything, for tests
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// SetLevel parses a level name ("debug", "info", "warn", "error") and applies it globally.
// Loggers created afterwards inherit it.
func SetLevel(name string) error {
	level, err := log.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", name, err)
	}
	log.SetLevel(level)
	return nil
}
