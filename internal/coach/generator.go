// ABOUTME: Reply generators: the interface and an OpenAI-compatible chat completions client.
// ABOUTME: Every failure wraps ErrGenerationUnavailable so callers can fall back uniformly.
package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrGenerationUnavailable means no generated reply could be produced.
var ErrGenerationUnavailable = errors.New("generation unavailable")

// Generator defaults.
const (
	DefaultChatURL     = "https://api.openai.com/v1/chat/completions"
	DefaultChatModel   = "gpt-3.5-turbo"
	DefaultMaxTokens   = 300
	DefaultTemperature = 0.7
	DefaultTimeout     = 30 * time.Second
)

// Generator produces a reply to userText given a context bundle.
type Generator interface {
	Generate(ctx context.Context, c *Context, userText string) (string, error)
}

// ChatGenerator posts to an OpenAI-compatible /chat/completions endpoint.
type ChatGenerator struct {
	URL         string
	Model       string
	APIKey      string
	MaxTokens   int
	Temperature float64
	Client      *http.Client
}

// NewChatGenerator returns a generator with default model settings.
// Empty url and model fall back to the OpenAI defaults.
func NewChatGenerator(url, model, apiKey string) *ChatGenerator {
	if url == "" {
		url = DefaultChatURL
	}
	if model == "" {
		model = DefaultChatModel
	}
	return &ChatGenerator{
		URL:         url,
		Model:       model,
		APIKey:      apiKey,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		Client:      &http.Client{Timeout: DefaultTimeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Text string `json:"text"`
	} `json:"choices"`
}

// Generate sends one non-streaming completion request.
func (g *ChatGenerator) Generate(ctx context.Context, c *Context, userText string) (string, error) {
	if strings.TrimSpace(g.APIKey) == "" {
		return "", fmt.Errorf("%w: no API key configured", ErrGenerationUnavailable)
	}

	payload, err := json.Marshal(chatRequest{
		Model: g.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: c.Prompt(userText)},
		},
		MaxTokens:   g.MaxTokens,
		Temperature: g.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %w", ErrGenerationUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %w", ErrGenerationUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.APIKey)

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerationUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: http %d: %s", ErrGenerationUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var r chatResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrGenerationUnavailable, err)
	}
	if len(r.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrGenerationUnavailable)
	}
	if content := strings.TrimSpace(r.Choices[0].Message.Content); content != "" {
		return content, nil
	}
	if text := strings.TrimSpace(r.Choices[0].Text); text != "" {
		return text, nil
	}
	return "", fmt.Errorf("%w: empty content", ErrGenerationUnavailable)
}
