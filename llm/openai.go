package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"pingchain/config"
)

type OpenAIProvider struct {
	client *openai.Client
	apiKey string
	model  string
}

func NewOpenAIProvider(apiKey, model string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	return &OpenAIProvider{client: openai.NewClient(apiKey), apiKey: apiKey, model: model}, nil
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func (p *OpenAIProvider) WithBaseURL(baseURL string) *OpenAIProvider {
	cfg := openai.DefaultConfig(p.apiKey)
	cfg.BaseURL = baseURL
	p.client = openai.NewClientWithConfig(cfg)
	return p
}

func (p *OpenAIProvider) Name() string { return OpenAI }

func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: config.SuggestionTemperature,
		MaxTokens:   config.SuggestionMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenAI")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("empty completion from OpenAI")
	}
	return text, nil
}
