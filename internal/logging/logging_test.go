// ABOUTME: Tests for logger construction and level parsing.
// ABOUTME: Checks that level filtering and the prefix apply.
package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug":   log.DebugLevel,
		" WARN ":  log.WarnLevel,
		"warning": log.WarnLevel,
		"error":   log.ErrorLevel,
		"info":    log.InfoLevel,
		"":        log.InfoLevel,
		"verbose": log.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn")

	logger.Info("hidden")
	logger.Warn("generation failed", "user", "yoel")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, "generation failed") || !strings.Contains(out, "user=yoel") {
		t.Errorf("warn line missing fields: %q", out)
	}
	if !strings.Contains(out, "coach") {
		t.Errorf("prefix missing: %q", out)
	}
}
