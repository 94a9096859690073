package llm

import (
	"context"
	"fmt"

	"pingchain/config"
)

// Provider sends a single prompt to a hosted model and returns its text.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

const (
	OpenAI      = "openai"
	Anthropic   = "anthropic"
	HuggingFace = "huggingface"
	Gemini      = "gemini"
	None        = "none"
)

// NewProvider picks the provider named by LLM_PROVIDER. It returns nil (and no error) when
// AI suggestions are disabled, in which case the template fallback is always used.
func NewProvider(cfg *config.Config) (Provider, error) {
	var (
		p   Provider
		err error
	)
	switch cfg.LLMProvider {
	case OpenAI:
		p, err = asProvider(NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel))
	case Anthropic:
		p, err = asProvider(NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.AnthropicModel))
	case HuggingFace:
		p, err = asProvider(NewHuggingFaceProvider(cfg.HuggingFaceAPIKey, cfg.HuggingFaceModel))
	case Gemini:
		p, err = asProvider(NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModel))
	case None, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s (supported: %s, %s, %s, %s)", cfg.LLMProvider, OpenAI, Anthropic, HuggingFace, Gemini)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// asProvider keeps a failed constructor's typed nil out of the interface.
func asProvider[P Provider](p P, err error) (Provider, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}
