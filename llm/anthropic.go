package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"pingchain/config"
)

const (
	anthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
)

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type AnthropicProvider struct {
	http  *resty.Client
	model string
}

func NewAnthropicProvider(apiKey, model string) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
	}
	return &AnthropicProvider{
		http: resty.New().
			SetBaseURL(anthropicBaseURL).
			SetHeader("Content-Type", "application/json").
			SetHeader("x-api-key", apiKey).
			SetHeader("anthropic-version", anthropicVersion).
			SetTimeout(30 * time.Second),
		model: model,
	}, nil
}

func (p *AnthropicProvider) WithBaseURL(url string) *AnthropicProvider {
	p.http.SetBaseURL(url)
	return p
}

func (p *AnthropicProvider) Name() string { return Anthropic }

func (p *AnthropicProvider) Complete(ctx context.Context, prompt string) (string, error) {
	var out anthropicResponse
	resp, err := p.http.R().
		SetContext(ctx).
		SetBody(anthropicRequest{
			Model:       p.model,
			MaxTokens:   config.SuggestionMaxTokens,
			Temperature: config.SuggestionTemperature,
			Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
		}).
		SetResult(&out).
		Post("/v1/messages")
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("anthropic API returned status %d", resp.StatusCode())
	}

	for _, block := range out.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", fmt.Errorf("no text content returned from Anthropic")
}
