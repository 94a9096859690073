package llm

import (
	"context"

	"github.com/sirupsen/logrus"

	"pingchain/config"
	"pingchain/metrics"
	"pingchain/types"
)

// Generator produces reply suggestions from a provider, falling back to templates.
type Generator struct {
	provider  Provider
	templates *TemplateSuggester
}

// NewGenerator accepts a nil provider; every request then uses templates.
func NewGenerator(p Provider, t *TemplateSuggester) *Generator {
	if t == nil {
		t = NewTemplateSuggester(0)
	}
	return &Generator{provider: p, templates: t}
}

func (g *Generator) Generate(ctx context.Context, req types.SuggestionRequest) types.SuggestionResponse {
	if req.UseAI && g.provider != nil {
		text, err := g.provider.Complete(ctx, BuildSuggestionPrompt(req))
		if err == nil {
			metrics.SuggestionsTotal.WithLabelValues(string(types.SourceAI), g.provider.Name()).Inc()
			return types.SuggestionResponse{Success: true, Suggestion: text, Source: types.SourceAI}
		}
		config.Logger.WithFields(logrus.Fields{
			"provider": g.provider.Name(),
			"contact":  req.Contact,
		}).Warn("AI suggestion failed, using template: ", err)
	}

	provider := "none"
	if g.provider != nil {
		provider = g.provider.Name()
	}
	metrics.SuggestionsTotal.WithLabelValues(string(types.SourceTemplate), provider).Inc()
	return types.SuggestionResponse{
		Success:    true,
		Suggestion: g.templates.Suggest(req),
		Source:     types.SourceTemplate,
	}
}
