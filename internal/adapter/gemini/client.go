package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"jobportal/internal/apperr"
	"jobportal/internal/llm"
)

const DefaultModel = "gemini-1.5-flash"

type Client struct {
	client *genai.Client
	model  string
}

// NewClient builds a completer over the Gemini API. Extra options are
// appended after the API key, which lets tests point it at a local endpoint.
func NewClient(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{client: client, model: model}, nil
}

func (c *Client) Model() string {
	return c.model
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	slog.DebugContext(ctx, "requesting completion", "model", c.model, "prompt_chars", len(prompt))

	m := c.client.GenerativeModel(c.model)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(llm.SystemInstruction)}}
	m.ResponseMIMEType = "application/json"

	res, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		slog.ErrorContext(ctx, "completion failed", "model", c.model, "error", err)
		return "", classify(err)
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return "", apperr.Upstream("completion response has no candidates", errors.New("empty candidates"))
	}

	var sb strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

func classify(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apperr.Upstream(fmt.Sprintf("gemini api error: %d", apiErr.Code), err).WithPayload(providerPayload(apiErr))
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
		errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return apperr.Network("completion request failed", err)
	}

	return apperr.Upstream("completion failed", err)
}

func providerPayload(apiErr *googleapi.Error) any {
	if apiErr.Body != "" {
		return apiErr.Body
	}
	return apiErr.Message
}
