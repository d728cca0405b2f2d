// ABOUTME: Tests for the chat completions generator against a local HTTP server.
// ABOUTME: Covers the request shape, response parsing, and failure wrapping.
package coach

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/coach/internal/models"
)

func testContext() *Context {
	return &Context{
		Profile:       models.NewProfile("yoel"),
		RecentEntries: []*models.Entry{models.NewEntry("yoel", "2025-01-13")},
		AnalysisText:  "Recent analysis (last 7 days, 1 entries):",
	}
}

func TestChatGeneratorRequest(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  Go lift something.  "}}]}`))
	}))
	defer srv.Close()

	g := NewChatGenerator(srv.URL, "", "sk-test")
	reply, err := g.Generate(context.Background(), testContext(), "what now?")
	require.NoError(t, err)
	assert.Equal(t, "Go lift something.", reply)

	assert.Equal(t, DefaultChatModel, got.Model)
	assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
	assert.InDelta(t, DefaultTemperature, got.Temperature, 1e-9)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	for _, part := range []string{"PROFILE:", "RECENT PATTERNS:", "RECENT LOGS", "2025-01-13", "User says: what now?"} {
		assert.Contains(t, got.Messages[1].Content, part)
	}
}

func TestChatGeneratorTextFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"text":"legacy completion"}]}`))
	}))
	defer srv.Close()

	reply, err := NewChatGenerator(srv.URL, "m", "k").Generate(context.Background(), testContext(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "legacy completion", reply)
}

func TestChatGeneratorFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"server error", http.StatusInternalServerError, "upstream exploded", "http 500"},
		{"bad json", http.StatusOK, "not json", "decode response"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "no choices"},
		{"empty content", http.StatusOK, `{"choices":[{"message":{"content":"  "}}]}`, "empty content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewChatGenerator(srv.URL, "m", "k").Generate(context.Background(), testContext(), "hi")
			if !errors.Is(err, ErrGenerationUnavailable) {
				t.Fatalf("expected ErrGenerationUnavailable, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestChatGeneratorWithoutKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := NewChatGenerator(srv.URL, "m", " ").Generate(context.Background(), testContext(), "hi")
	assert.ErrorIs(t, err, ErrGenerationUnavailable)
	assert.False(t, called, "no request should be sent without a key")
}

func TestChatGeneratorHonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewChatGenerator(srv.URL, "m", "k").Generate(ctx, testContext(), "hi")
	assert.ErrorIs(t, err, ErrGenerationUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
