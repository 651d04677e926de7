package llm

import "context"

// Variant selects which model tier serves a request. Each provider maps a
// variant to a concrete model ID.
type Variant string

const (
	VariantPro   Variant = "pro"
	VariantFlash Variant = "flash"
)

// DecodingParams controls sampling. A zero field leaves the model's default in place.
type DecodingParams struct {
	Temperature     float64
	TopP            float64
	TopK            int
	MaxOutputTokens int
}

var (
	// DefaultParams uses the model variant's own defaults.
	DefaultParams = DecodingParams{}

	// CreativeParams is used for long-form module expansion.
	CreativeParams = DecodingParams{Temperature: 1.0, TopP: 0.95, TopK: 40, MaxOutputTokens: 8192}

	// FocusedParams is used for short outputs such as search terms.
	FocusedParams = DecodingParams{Temperature: 0.7, TopP: 0.9, TopK: 40, MaxOutputTokens: 1024}
)

type Request struct {
	Prompt  string
	Variant Variant
	Params  DecodingParams
}

type Response struct {
	Text         string
	Model        string
	FinishReason string // "end", "max_tokens", "blocked" or the provider's raw value
	Usage        Usage
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Provider is a single generative-model backend. Implementations return the
// raw completion text and do not retry.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	Name() string
}

// Models maps variants to model IDs for one provider.
type Models map[Variant]string

func (m Models) For(v Variant) string {
	if id, ok := m[v]; ok && id != "" {
		return id
	}
	return m[VariantFlash]
}
