package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"pingchain/config"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com"

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type GeminiProvider struct {
	http   *resty.Client
	apiKey string
	model  string
}

func NewGeminiProvider(apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	return &GeminiProvider{
		http: resty.New().
			SetBaseURL(geminiBaseURL).
			SetHeader("Content-Type", "application/json").
			SetTimeout(30 * time.Second),
		apiKey: apiKey,
		model:  model,
	}, nil
}

func (p *GeminiProvider) WithBaseURL(url string) *GeminiProvider {
	p.http.SetBaseURL(url)
	return p
}

func (p *GeminiProvider) Name() string { return Gemini }

func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	var body geminiRequest
	body.Contents = []geminiContent{{Parts: []geminiPart{{Text: prompt}}}}
	body.GenerationConfig.Temperature = config.SuggestionTemperature
	body.GenerationConfig.MaxOutputTokens = config.SuggestionMaxTokens

	var out geminiResponse
	resp, err := p.http.R().
		SetContext(ctx).
		SetQueryParam("key", p.apiKey).
		SetBody(body).
		SetResult(&out).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", p.model))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("gemini API returned status %d", resp.StatusCode())
	}

	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}
	text := strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("empty completion from Gemini")
	}
	return text, nil
}
