package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicDefaultMaxTokens applies when the caller leaves MaxOutputTokens unset;
// the Messages API requires a value.
const anthropicDefaultMaxTokens = 4096

type AnthropicProvider struct {
	client *anthropic.Client
	models Models
}

func NewAnthropicProvider(apiKey string, models Models) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicProvider{client: &client, models: models}, nil
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	msg, err := p.client.Messages.New(ctx, buildAnthropicParams(p.models.For(req.Variant), req))
	if err != nil {
		return nil, mapAnthropicError(err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &Response{
		Text:         text.String(),
		Model:        string(msg.Model),
		FinishReason: mapAnthropicStopReason(msg.StopReason),
		Usage: Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
	}, nil
}

func buildAnthropicParams(model string, req Request) anthropic.MessageNewParams {
	maxTokens := int64(req.Params.MaxOutputTokens)
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.Params.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Params.Temperature)
	}
	if req.Params.TopP > 0 {
		params.TopP = anthropic.Float(req.Params.TopP)
	}
	if req.Params.TopK > 0 {
		params.TopK = anthropic.Int(int64(req.Params.TopK))
	}
	return params
}

func mapAnthropicStopReason(reason anthropic.StopReason) string {
	switch reason {
	case "end_turn", "stop_sequence":
		return "end"
	case "max_tokens":
		return "max_tokens"
	case "refusal":
		return "blocked"
	default:
		return string(reason)
	}
}

func mapAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode > 0 {
		return statusError(apiErr.StatusCode, err)
	}
	return classify(err)
}
