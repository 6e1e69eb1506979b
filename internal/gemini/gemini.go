package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/deusflow/dailyreads/internal/llm"
)

// DefaultModel is used when MODEL_NAME is not set.
const DefaultModel = "gemini-2.0-flash"

type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}

	return &Client{client: client, model: model}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Complete sends a single-turn prompt and returns the concatenated text parts
// of the first candidate.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.model)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", llm.ErrEmptyResponse
	}

	text := partsText(resp.Candidates[0].Content.Parts)
	if text == "" {
		return "", llm.ErrEmptyResponse
	}
	return llm.SanitizeText(text), nil
}

func partsText(parts []genai.Part) string {
	var b strings.Builder
	for _, p := range parts {
		switch v := p.(type) {
		case genai.Text:
			b.WriteString(string(v))
		default:
			fmt.Fprintf(&b, "%v", v)
		}
	}
	return strings.TrimSpace(b.String())
}
