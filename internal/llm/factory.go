package llm

import (
	"context"
	"fmt"

	"learnflow-backend/internal/config"
)

// NewProvider builds the provider selected by LLM_PROVIDER.
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	var (
		p   Provider
		err error
	)

	switch cfg.LLMProvider {
	case "gemini":
		p, err = NewGeminiProvider(ctx, cfg.GeminiAPIKey, Models{
			VariantPro:   cfg.GeminiProModel,
			VariantFlash: cfg.GeminiFlashModel,
		})
	case "openai":
		p, err = NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, Models{
			VariantPro:   cfg.OpenAIProModel,
			VariantFlash: cfg.OpenAIFlashModel,
		})
	case "anthropic":
		p, err = NewAnthropicProvider(cfg.AnthropicAPIKey, Models{
			VariantPro:   cfg.AnthropicProModel,
			VariantFlash: cfg.AnthropicFlashModel,
		})
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.LLMProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.LLMProvider, err)
	}
	return p, nil
}

// NewTranscriber returns a Gemini-backed transcriber when a Gemini key is
// configured, reusing the generation provider if it already is one.
func NewTranscriber(ctx context.Context, cfg *config.Config, p Provider) (Transcriber, error) {
	if g, ok := p.(*GeminiProvider); ok {
		return g, nil
	}
	if cfg.GeminiAPIKey == "" {
		return nil, nil
	}
	return NewGeminiProvider(ctx, cfg.GeminiAPIKey, Models{
		VariantPro:   cfg.GeminiProModel,
		VariantFlash: cfg.GeminiFlashModel,
	})
}
