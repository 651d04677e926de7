package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"learnflow-backend/internal/events"
	"learnflow-backend/internal/llm"
	"learnflow-backend/internal/logger"
	"learnflow-backend/internal/models"
	"learnflow-backend/internal/parser"
	"learnflow-backend/internal/requestctx"
)

// Generator is the generative-model collaborator. *llm.Invoker satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string, variant llm.Variant, params llm.DecodingParams) (string, error)
	GenerateAsync(ctx context.Context, prompt string, variant llm.Variant, params llm.DecodingParams) <-chan llm.Result
}

// Observer receives stage and lookup measurements.
type Observer interface {
	ObserveStage(stage, status string, d time.Duration)
	ObserveLookup(result string)
}

type nopObserver struct{}

func (nopObserver) ObserveStage(string, string, time.Duration) {}
func (nopObserver) ObserveLookup(string)                       {}

// StageError names the stage a pipeline failed in. For a failed quiz stage,
// Summary holds the simplified text produced before the failure.
type StageError struct {
	Stage   models.Stage
	Summary string
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

type Option func(*stageRunner)

func WithPublisher(p events.Publisher) Option {
	return func(s *stageRunner) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithObserver(o Observer) Option {
	return func(s *stageRunner) {
		if o != nil {
			s.observer = o
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(s *stageRunner) {
		if l != nil {
			s.log = l
		}
	}
}

// stageRunner wraps one unit of pipeline work with events, metrics, logs and a span.
type stageRunner struct {
	publisher events.Publisher
	observer  Observer
	log       *logger.Logger
	tracer    trace.Tracer
}

func newStageRunner(opts []Option) *stageRunner {
	s := &stageRunner{
		publisher: events.NopPublisher{},
		observer:  nopObserver{},
		log:       logger.Nop(),
		tracer:    otel.Tracer("learnflow/pipeline"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *stageRunner) run(ctx context.Context, stage models.Stage, fn func(ctx context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "pipeline."+string(stage), trace.WithAttributes(
		attribute.String("pipeline.stage", string(stage)),
	))
	defer span.End()

	requestID := requestctx.RequestID(ctx)
	start := time.Now()
	s.publisher.Publish(ctx, models.StageEvent{
		RequestID: requestID,
		Stage:     stage,
		Status:    models.StageStarted,
		At:        start,
	})

	err := fn(ctx)
	elapsed := time.Since(start)

	ev := models.StageEvent{
		RequestID:  requestID,
		Stage:      stage,
		Status:     models.StageCompleted,
		DurationMs: elapsed.Milliseconds(),
		At:         time.Now(),
	}
	if err != nil {
		ev.Status = models.StageFailed
		ev.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		kv := []interface{}{"request_id", requestID, "stage", stage, "duration_ms", elapsed.Milliseconds(), "error", err}
		var pf *parser.ParseFailure
		if errors.As(err, &pf) {
			kv = append(kv, "parse_kind", pf.Kind, "excerpt", pf.Excerpt)
		}
		s.log.Warn("pipeline stage failed", kv...)
	} else {
		s.log.Info("pipeline stage completed", "request_id", requestID, "stage", stage, "duration_ms", elapsed.Milliseconds())
	}

	s.observer.ObserveStage(string(stage), string(ev.Status), elapsed)
	s.publisher.Publish(ctx, ev)
	return err
}
