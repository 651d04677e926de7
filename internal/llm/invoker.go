package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"learnflow-backend/internal/logger"
)

// slotWait bounds how long a call queues for a concurrency slot.
const slotWait = 5 * time.Minute

// Transcriber turns an uploaded media file into plain text.
type Transcriber interface {
	TranscribeMedia(ctx context.Context, data []byte, mimeType, instruction string) (string, error)
}

// Recorder receives one observation per generation call.
type Recorder interface {
	ObserveGeneration(provider, variant, outcome string, d time.Duration, usage Usage)
}

// Result is delivered exactly once on the channel returned by GenerateAsync.
type Result struct {
	Text string
	Err  error
}

// Invoker sends prompts to a Provider, bounding concurrency and mapping every
// failure to a NetworkError, UpstreamError or TimeoutError. It never retries.
type Invoker struct {
	provider Provider
	slots    chan struct{}
	recorder Recorder
	tracer   trace.Tracer
	log      *logger.Logger
}

func NewInvoker(p Provider, concurrentReqs int, recorder Recorder, log *logger.Logger) *Invoker {
	if concurrentReqs <= 0 {
		concurrentReqs = 1
	}
	slots := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		slots <- struct{}{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Invoker{
		provider: p,
		slots:    slots,
		recorder: recorder,
		tracer:   otel.Tracer("learnflow/llm"),
		log:      log,
	}
}

func (inv *Invoker) acquire(ctx context.Context) error {
	select {
	case <-inv.slots:
		return nil
	case <-ctx.Done():
		return classify(ctx.Err())
	case <-time.After(slotWait):
		return &TimeoutError{Err: errors.New("timeout waiting for generation slot")}
	}
}

func (inv *Invoker) release() {
	inv.slots <- struct{}{}
}

// Generate blocks until the model returns the full completion.
func (inv *Invoker) Generate(ctx context.Context, prompt string, variant Variant, params DecodingParams) (string, error) {
	ctx, span := inv.tracer.Start(ctx, "llm.generate", trace.WithAttributes(
		attribute.String("llm.provider", inv.provider.Name()),
		attribute.String("llm.variant", string(variant)),
		attribute.Int("llm.prompt_chars", len(prompt)),
	))
	defer span.End()

	if err := inv.acquire(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	defer inv.release()

	start := time.Now()
	resp, err := inv.provider.Generate(ctx, Request{Prompt: prompt, Variant: variant, Params: params})
	elapsed := time.Since(start)

	if err == nil && (resp == nil || strings.TrimSpace(resp.Text) == "") {
		err = &UpstreamError{Err: ErrEmptyCompletion}
	}
	err = classify(err)

	var usage Usage
	if resp != nil {
		usage = resp.Usage
		span.SetAttributes(
			attribute.String("llm.model", resp.Model),
			attribute.String("llm.finish_reason", resp.FinishReason),
			attribute.Int("llm.output_tokens", resp.Usage.OutputTokens),
		)
	}
	if inv.recorder != nil {
		inv.recorder.ObserveGeneration(inv.provider.Name(), string(variant), outcome(err), elapsed, usage)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		inv.log.Warn("generation failed",
			"provider", inv.provider.Name(),
			"variant", variant,
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return "", err
	}

	if resp.FinishReason == "max_tokens" {
		inv.log.Warn("generation truncated at max tokens", "model", resp.Model, "variant", variant)
	}
	inv.log.Debug("generation completed",
		"model", resp.Model,
		"variant", variant,
		"duration_ms", elapsed.Milliseconds(),
		"output_tokens", resp.Usage.OutputTokens,
	)
	return resp.Text, nil
}

// GenerateAsync starts Generate in the background. The channel receives a
// single Result and is then closed.
func (inv *Invoker) GenerateAsync(ctx context.Context, prompt string, variant Variant, params DecodingParams) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		text, err := inv.Generate(ctx, prompt, variant, params)
		out <- Result{Text: text, Err: err}
	}()
	return out
}

// Transcribe runs a media transcription under the same concurrency limit.
func (inv *Invoker) Transcribe(ctx context.Context, t Transcriber, data []byte, mimeType, instruction string) (string, error) {
	if t == nil {
		return "", fmt.Errorf("no transcriber configured")
	}
	ctx, span := inv.tracer.Start(ctx, "llm.transcribe", trace.WithAttributes(
		attribute.String("media.mime_type", mimeType),
		attribute.Int("media.bytes", len(data)),
	))
	defer span.End()

	if err := inv.acquire(ctx); err != nil {
		return "", err
	}
	defer inv.release()

	text, err := t.TranscribeMedia(ctx, data, mimeType, instruction)
	if err != nil {
		err = classify(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return text, nil
}

func outcome(err error) string {
	var (
		n *NetworkError
		u *UpstreamError
		t *TimeoutError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &t):
		return "timeout"
	case errors.As(err, &n):
		return "network"
	case errors.As(err, &u):
		return "upstream"
	default:
		return "error"
	}
}
