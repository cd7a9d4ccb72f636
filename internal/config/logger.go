package config

import (
	"io"

	"github.com/charmbracelet/log"
)

// Logger provides structured logging for installer operations.
// *log.Logger from charmbracelet/log satisfies it.
type Logger interface {
	// Debug logs debug-level messages with optional key-value pairs.
	Debug(msg interface{}, keyvals ...interface{})

	// Info logs info-level messages with optional key-value pairs.
	Info(msg interface{}, keyvals ...interface{})

	// Warn logs warning-level messages with optional key-value pairs.
	Warn(msg interface{}, keyvals ...interface{})

	// Error logs error-level messages with optional key-value pairs.
	Error(msg interface{}, keyvals ...interface{})
}

// noopLogger is a Logger implementation that does nothing.
type noopLogger struct{}

func (n *noopLogger) Debug(msg interface{}, keyvals ...interface{}) {}
func (n *noopLogger) Info(msg interface{}, keyvals ...interface{})  {}
func (n *noopLogger) Warn(msg interface{}, keyvals ...interface{})  {}
func (n *noopLogger) Error(msg interface{}, keyvals ...interface{}) {}

// NopLogger returns a Logger that discards everything.
func NopLogger() Logger {
	return &noopLogger{}
}

// NewLogger creates the CLI logger writing to w. verbose enables debug output.
func NewLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}

	return log.NewWithOptions(w, log.Options{
		Prefix: "texloader",
		Level:  level,
	})
}
