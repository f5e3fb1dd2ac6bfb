package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/kingrea/storyforge/internal/config"
)

// TextClient completes prompts against an OpenRouter-compatible endpoint.
type TextClient struct {
	llm         llms.Model
	temperature float64
}

// NewTextClient builds the completion client from config.
func NewTextClient(cfg config.Config) (*TextClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gateway: api key is required (set STORYFORGE_API_KEY or OPENROUTER_API_KEY)")
	}
	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("gateway: init text client: %w", err)
	}
	return &TextClient{llm: llm, temperature: cfg.Temperature}, nil
}

// Complete sends one system+user exchange and returns the model's text.
// Transient connection failures are retried up to the bounded count; remote
// errors and timeouts are surfaced immediately.
func (c *TextClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, system),
		llms.TextParts(schema.ChatMessageTypeHuman, prompt),
	}
	var lastErr *Error
	for attempt := 0; attempt <= maxConnectionRetries; attempt++ {
		resp, err := c.llm.GenerateContent(ctx, messages, llms.WithTemperature(c.temperature))
		if err != nil {
			lastErr = classify("complete", err)
			if lastErr.Kind == ErrConnection {
				continue
			}
			return "", lastErr
		}
		if len(resp.Choices) == 0 {
			return "", &Error{Kind: ErrRemote, Op: "complete", Err: fmt.Errorf("empty response")}
		}
		return strings.TrimSpace(resp.Choices[0].Content), nil
	}
	return "", lastErr
}
