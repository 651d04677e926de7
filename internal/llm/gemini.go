package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiProvider struct {
	client *genai.Client
	models Models
}

func NewGeminiProvider(ctx context.Context, apiKey string, models Models) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client, models: models}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

// model builds a fresh handle per call so concurrent requests with different
// decoding parameters never share state.
func (p *GeminiProvider) model(v Variant, params DecodingParams) (*genai.GenerativeModel, string) {
	name := p.models.For(v)
	m := p.client.GenerativeModel(name)
	applyGeminiParams(m, params)
	return m, name
}

func applyGeminiParams(m *genai.GenerativeModel, params DecodingParams) {
	if params.Temperature > 0 {
		m.SetTemperature(float32(params.Temperature))
	}
	if params.TopP > 0 {
		m.SetTopP(float32(params.TopP))
	}
	if params.TopK > 0 {
		m.SetTopK(int32(params.TopK))
	}
	if params.MaxOutputTokens > 0 {
		m.SetMaxOutputTokens(int32(params.MaxOutputTokens))
	}
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m, name := p.model(req.Variant, req.Params)

	resp, err := m.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return nil, &UpstreamError{Err: err}
		}
		return nil, classify(err)
	}

	out := &Response{
		Text:  extractText(resp),
		Model: name,
	}
	if len(resp.Candidates) > 0 {
		out.FinishReason = geminiFinishReason(resp.Candidates[0].FinishReason)
	}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return out, nil
}

// TranscribeMedia uploads audio, video or a document to the Files API and asks
// the flash model to transcribe it. The remote file is always deleted.
func (p *GeminiProvider) TranscribeMedia(ctx context.Context, data []byte, mimeType, instruction string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("media payload is empty")
	}

	file, err := p.client.UploadFile(ctx, "", bytes.NewReader(data), &genai.UploadFileOptions{
		DisplayName: "learnflow-media",
		MIMEType:    mimeType,
	})
	if err != nil {
		return "", classify(fmt.Errorf("failed to upload media to Gemini: %w", err))
	}
	defer p.client.DeleteFile(context.Background(), file.Name)

	for i := 0; i < 20; i++ {
		current, getErr := p.client.GetFile(ctx, file.Name)
		if getErr != nil {
			return "", classify(fmt.Errorf("failed to get uploaded file status: %w", getErr))
		}
		if current.State == genai.FileStateActive {
			file = current
			break
		}
		if current.State == genai.FileStateFailed {
			return "", &UpstreamError{Err: errors.New("Gemini failed to process uploaded media file")}
		}

		select {
		case <-ctx.Done():
			return "", classify(ctx.Err())
		case <-time.After(2 * time.Second):
		}
	}
	if file.State != genai.FileStateActive {
		return "", &TimeoutError{Err: errors.New("media file did not become active in time")}
	}

	m, _ := p.model(VariantFlash, DefaultParams)
	resp, err := m.GenerateContent(ctx,
		genai.Text(instruction),
		genai.FileData{MIMEType: mimeType, URI: file.URI},
	)
	if err != nil {
		return "", classify(err)
	}

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return "", &UpstreamError{Err: ErrEmptyCompletion}
	}
	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

func geminiFinishReason(r genai.FinishReason) string {
	switch r {
	case genai.FinishReasonStop:
		return "end"
	case genai.FinishReasonMaxTokens:
		return "max_tokens"
	case genai.FinishReasonSafety, genai.FinishReasonRecitation:
		return "blocked"
	default:
		return r.String()
	}
}
