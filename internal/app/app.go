// Package app wires configuration into the generation stack shared by the
// HTTP server and the CLI.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"learnflow-backend/internal/config"
	"learnflow-backend/internal/database"
	"learnflow-backend/internal/events"
	"learnflow-backend/internal/handlers"
	"learnflow-backend/internal/llm"
	"learnflow-backend/internal/logger"
	"learnflow-backend/internal/observability"
	"learnflow-backend/internal/pipeline"
	"learnflow-backend/internal/prompts"
	"learnflow-backend/internal/router"
	"learnflow-backend/internal/services"
)

type App struct {
	Config   *config.Config
	Log      *logger.Logger
	Provider llm.Provider
	Invoker  *llm.Invoker
	Registry *prometheus.Registry
	Metrics  *observability.Metrics
	Redis    *redis.Client

	YouTube   *services.YouTubeService
	Extractor *services.FileExtractService
	Content   *pipeline.ContentPipeline
	Roadmap   *pipeline.RoadmapPipeline

	transcriber llm.Transcriber
	closers     []func()
}

// Build constructs every collaborator from cfg. Redis is optional: when
// REDIS_URL is empty or unreachable, stage events are dropped.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}

	provider, err := llm.NewProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Provider = provider
	if g, ok := provider.(*llm.GeminiProvider); ok {
		a.closers = append(a.closers, func() { g.Close() })
	}
	log.Info("generative model provider initialized", "provider", provider.Name())

	transcriber, err := llm.NewTranscriber(ctx, cfg, provider)
	if err != nil {
		log.Warn("transcriber unavailable, OCR and audio transcription disabled", "error", err)
	} else if transcriber == nil {
		log.Warn("GEMINI_API_KEY not set, OCR and audio transcription disabled")
	} else {
		a.transcriber = transcriber
		if g, ok := transcriber.(*llm.GeminiProvider); ok && g != provider {
			a.closers = append(a.closers, func() { g.Close() })
		}
	}

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.Metrics = observability.NewMetrics(a.Registry)

	a.Invoker = llm.NewInvoker(provider, cfg.LLMConcurrentReqs, a.Metrics, log)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RedisURL != "" {
		rdb, err := database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, stage events disabled", "error", err)
		} else {
			a.Redis = rdb
			a.closers = append(a.closers, func() { rdb.Close() })
			publisher = events.NewRedisPublisher(rdb, log)
			log.Info("redis connected, stage events enabled")
		}
	}

	a.YouTube, err = services.NewYouTubeService(ctx, cfg.YouTubeAPIKey, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	if cfg.YouTubeAPIKey == "" {
		log.Warn("YOUTUBE_API_KEY not set, video recommendations will report lookup errors")
	}

	a.Extractor = services.NewFileExtractService(a.TranscribeFunc(prompts.OCRInstruction), log)

	opts := []pipeline.Option{
		pipeline.WithPublisher(publisher),
		pipeline.WithObserver(a.Metrics),
		pipeline.WithLogger(log),
	}
	a.Content = pipeline.NewContentPipeline(a.Invoker, opts...)
	a.Roadmap = pipeline.NewRoadmapPipeline(a.Invoker, a.YouTube, opts...)

	return a, nil
}

// TranscribeFunc returns a media transcription function using instruction,
// or nil when no transcriber is configured.
func (a *App) TranscribeFunc(instruction string) services.TranscribeFunc {
	if a.transcriber == nil {
		return nil
	}
	return func(ctx context.Context, data []byte, mimeType string) (string, error) {
		return a.Invoker.Transcribe(ctx, a.transcriber, data, mimeType, instruction)
	}
}

// VideoText resolves a video link to transcript text.
func (a *App) VideoText(ctx context.Context, link string) (string, error) {
	return a.YouTube.VideoText(ctx, link, a.TranscribeFunc(prompts.TranscriptionInstruction))
}

// Handler builds the HTTP surface.
func (a *App) Handler() http.Handler {
	return router.New(
		handlers.NewContentHandler(a.Content, a.Extractor, a.YouTube, a.TranscribeFunc(prompts.TranscriptionInstruction), a.Config.MaxUploadMB, a.Log),
		handlers.NewRoadmapHandler(a.Roadmap, a.Log),
		handlers.NewHealthHandler(a.Provider.Name(), a.Redis),
		router.Options{
			FrontendURL:    a.Config.FrontendURL,
			RequestTimeout: time.Duration(a.Config.RequestTimeoutSeconds) * time.Second,
			Metrics:        a.Metrics,
			Gatherer:       a.Registry,
			Log:            a.Log,
		},
	)
}

// TracingConfig returns the tracing settings derived from cfg.
func TracingConfig(cfg *config.Config, serviceName string) observability.TracingConfig {
	return observability.TracingConfig{
		Enabled:      cfg.OtelEnabled,
		ServiceName:  serviceName,
		Environment:  cfg.Env,
		Endpoint:     cfg.OtelEndpoint,
		SamplerRatio: cfg.OtelSamplerRatio,
	}
}

// Close releases clients in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
