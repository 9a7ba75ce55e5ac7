package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"jobportal/internal/apperr"
	"jobportal/internal/llm"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "openai/gpt-3.5-turbo"
	DefaultAppURL  = "http://localhost:3000"
	DefaultTitle   = "Job Portal"
)

type Config struct {
	APIKey   string
	Model    string
	BaseURL  string
	AppURL   string
	AppTitle string
	// Timeout bounds the whole HTTP exchange; zero leaves it to the request context.
	Timeout time.Duration
}

type Client struct {
	apiKey   string
	model    string
	baseURL  string
	appURL   string
	appTitle string
	client   *http.Client
}

func NewClient(cfg Config) *Client {
	c := &Client{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		appURL:   cfg.AppURL,
		appTitle: cfg.AppTitle,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.appURL == "" {
		c.appURL = DefaultAppURL
	}
	if c.appTitle == "" {
		c.appTitle = DefaultTitle
	}
	return c
}

func (c *Client) Model() string {
	return c.model
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Complete sends the prompt as a single user turn after the fixed system
// instruction and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: llm.SystemInstruction},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", apperr.Upstream("failed to encode completion request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", apperr.Network("failed to build completion request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("HTTP-Referer", c.appURL)
	req.Header.Set("X-Title", c.appTitle)

	slog.DebugContext(ctx, "requesting completion", "model", c.model, "prompt_chars", len(prompt))

	resp, err := c.client.Do(req)
	if err != nil {
		return "", apperr.Network("completion request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.Network("failed to read completion response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apperr.Upstream(fmt.Sprintf("openrouter api error: %d", resp.StatusCode), nil).
			WithPayload(providerPayload(raw))
	}

	var result chatResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", apperr.Upstream("malformed completion response", err).WithPayload(providerPayload(raw))
	}
	if len(result.Choices) == 0 {
		return "", apperr.Upstream("completion response has no choices", errors.New("empty choices")).
			WithPayload(providerPayload(raw))
	}

	return result.Choices[0].Message.Content, nil
}

// providerPayload keeps a provider body as structured JSON when it parses,
// otherwise as text.
func providerPayload(raw []byte) any {
	var v any
	if err := json.Unmarshal(raw, &v); err == nil && v != nil {
		return v
	}
	return string(raw)
}
