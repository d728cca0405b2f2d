// ABOUTME: Structured logger construction shared by the CLI, MCP server, and webhook.
// ABOUTME: Wraps charmbracelet/log with the coach prefix and a named level.
package logging

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to w at the named level
// (debug, info, warn, error). Unknown names fall back to info.
func New(w io.Writer, level string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "coach",
		Level:           ParseLevel(level),
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// ParseLevel maps a level name to a log level.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	}
	return log.InfoLevel
}
