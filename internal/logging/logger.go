// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// defaultLogger is the package-level default logger instance.
//
//nolint:gochecknoglobals // Package-level logger is intentional for convenience
var (
	defaultLogger     *log.Logger
	defaultLoggerOnce sync.Once
)

func getDefaultLogger() *log.Logger {
	defaultLoggerOnce.Do(func() {
		defaultLogger = New("info")
	})
	return defaultLogger
}

// Options configures a logger.
type Options struct {
	// Level is debug, info, warn, or error. Unknown values mean info.
	Level string

	// Writer receives log lines. Defaults to os.Stderr.
	Writer io.Writer

	// Prefix is printed before every message, e.g. a sketch name.
	Prefix string

	// Timestamps adds a time field. Long-running watch sessions turn it on.
	Timestamps bool
}

// New creates a new logger with the specified level.
// Valid levels: "debug", "info", "warn", "error".
func New(level string) *log.Logger {
	return NewWithOptions(Options{Level: level})
}

// NewWithOptions creates a logger from opts.
func NewWithOptions(opts Options) *log.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: opts.Timestamps,
		TimeFormat:      time.Kitchen,
		ReportCaller:    false,
		Prefix:          opts.Prefix,
	})

	setLoggerLevel(logger, opts.Level)

	return logger
}

// NewInteractive creates an info-level logger for commands that talk to a
// person at a terminal rather than to a pipeline.
func NewInteractive() *log.Logger {
	logger := NewWithOptions(Options{Level: "info"})
	logger.SetReportTimestamp(false)
	return logger
}

// Discard returns a logger that drops everything. Tests and library callers
// that pass no logger get this one.
func Discard() *log.Logger {
	return NewWithOptions(Options{Level: "error", Writer: io.Discard})
}

func setLoggerLevel(logger *log.Logger, level string) {
	switch strings.ToLower(level) {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn", "warning":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
}

// Default returns the package-level default logger.
func Default() *log.Logger {
	return getDefaultLogger()
}

// SetDefault sets the package-level default logger.
func SetDefault(logger *log.Logger) {
	getDefaultLogger()
	defaultLogger = logger
}

// SetLevel updates the log level of the default logger.
func SetLevel(level string) {
	setLoggerLevel(getDefaultLogger(), level)
}
