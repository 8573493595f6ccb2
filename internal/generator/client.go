// Package generator turns a free-form prompt into task suggestions
// through a Messages-style completion API.
package generator

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

	"github.com/rs/zerolog"
)

const (
	apiVersion    = "2023-06-01"
	maxSnippetLen = 300
)

var (
	ErrNotConfigured = errors.New("task generation is not configured")
	ErrEmptyPrompt   = errors.New("prompt is empty")
)

type Options struct {
	APIURL    string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

type Client struct {
	logger    zerolog.Logger
	apiURL    string
	apiKey    string
	model     string
	maxTokens int
	prompts   Prompts
	client    *http.Client
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func New(logger zerolog.Logger, opts Options) (*Client, error) {
	prompts, err := LoadPrompts()
	if err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}

	return &Client{
		logger:    logger,
		apiURL:    opts.APIURL,
		apiKey:    opts.APIKey,
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		prompts:   prompts,
		client:    &http.Client{Timeout: opts.Timeout},
	}, nil
}

// Enabled reports whether the client has the credentials it needs.
func (c *Client) Enabled() bool {
	return c.apiKey != "" && c.model != "" && c.apiURL != ""
}

// Generate asks the model for task suggestions. It makes a single
// request and never stores anything. Replies that can't be repaired
// into a task list yield ErrUnparseable.
func (c *Client) Generate(ctx context.Context, prompt string, now time.Time, loc *time.Location) ([]Candidate, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}
	if loc == nil {
		loc = time.UTC
	}

	system, user := c.prompts.TaskGeneration.Render(map[string]string{
		"date":     now.In(loc).Format(time.DateOnly),
		"timezone": loc.String(),
		"prompt":   prompt,
	})

	body, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    system,
		Messages:  []message{{Role: "user", Content: user}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error().
			Err(err).
			Msg("failed to call completion api")
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("body", snippet(respBody)).
			Msg("completion api returned an error")
		return nil, fmt.Errorf("completion api error (%d): %s", resp.StatusCode, snippet(respBody))
	}

	var apiResp messagesResponse
	err = json.Unmarshal(respBody, &apiResp)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	var text strings.Builder
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	candidates, err := ParseCandidates(text.String())
	if err != nil {
		c.logger.Warn().
			Str("reply", snippet([]byte(text.String()))).
			Msg("failed to parse task suggestions")
		return nil, err
	}

	c.logger.Info().
		Int("candidates", len(candidates)).
		Str("stop_reason", apiResp.StopReason).
		Dur("took", time.Since(start)).
		Msg("generated task suggestions")
	return candidates, nil
}

func snippet(b []byte) string {
	s := string(b)
	if len(s) > maxSnippetLen {
		return s[:maxSnippetLen] + "..."
	}
	return s
}
