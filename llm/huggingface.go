package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"pingchain/config"
)

const huggingFaceBaseURL = "https://api-inference.huggingface.co"

type huggingFaceRequest struct {
	Inputs     string `json:"inputs"`
	Parameters struct {
		Temperature    float64 `json:"temperature"`
		MaxNewTokens   int     `json:"max_new_tokens"`
		ReturnFullText bool    `json:"return_full_text"`
	} `json:"parameters"`
}

type huggingFaceResult struct {
	GeneratedText string `json:"generated_text"`
}

// HuggingFaceProvider calls the hosted inference API for text-generation models.
type HuggingFaceProvider struct {
	http  *resty.Client
	model string
}

func NewHuggingFaceProvider(apiKey, model string) (*HuggingFaceProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("HUGGINGFACE_API_KEY not set")
	}
	return &HuggingFaceProvider{
		http: resty.New().
			SetBaseURL(huggingFaceBaseURL).
			SetAuthToken(apiKey).
			SetHeader("Content-Type", "application/json").
			SetTimeout(30 * time.Second),
		model: model,
	}, nil
}

func (p *HuggingFaceProvider) WithBaseURL(url string) *HuggingFaceProvider {
	p.http.SetBaseURL(url)
	return p
}

func (p *HuggingFaceProvider) Name() string { return HuggingFace }

func (p *HuggingFaceProvider) Complete(ctx context.Context, prompt string) (string, error) {
	var body huggingFaceRequest
	body.Inputs = prompt
	body.Parameters.Temperature = config.SuggestionTemperature
	body.Parameters.MaxNewTokens = config.SuggestionMaxTokens

	var out []huggingFaceResult
	resp, err := p.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		Post("/models/" + p.model)
	if err != nil {
		return "", fmt.Errorf("huggingface request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("huggingface API returned status %d", resp.StatusCode())
	}

	if len(out) == 0 || strings.TrimSpace(out[0].GeneratedText) == "" {
		return "", fmt.Errorf("empty completion from Hugging Face")
	}
	return strings.TrimSpace(out[0].GeneratedText), nil
}
