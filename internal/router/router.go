package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"learnflow-backend/internal/handlers"
	"learnflow-backend/internal/logger"
	"learnflow-backend/internal/middleware"
)

type Options struct {
	FrontendURL    string
	RequestTimeout time.Duration
	Metrics        middleware.RequestObserver
	Gatherer       prometheus.Gatherer
	Log            *logger.Logger
}

func New(
	contentHandler *handlers.ContentHandler,
	roadmapHandler *handlers.RoadmapHandler,
	healthHandler *handlers.HealthHandler,
	opts Options,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(opts.FrontendURL))
	r.Use(middleware.Observe(opts.Log, opts.Metrics))

	r.Get("/health", healthHandler.Health)
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/supported-formats", contentHandler.SupportedFormats)

	// ──── Generation Routes ────
	// Bounded by REQUEST_TIMEOUT_SECONDS.
	r.Group(func(r chi.Router) {
		if opts.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(opts.RequestTimeout))
		}

		r.Post("/process_text/", contentHandler.ProcessText)
		r.Post("/process_file/", contentHandler.ProcessFile)
		r.Post("/process_video/", contentHandler.ProcessVideo)
		r.Post("/generate-roadmap", roadmapHandler.Generate)
		r.Post("/expand-roadmap", roadmapHandler.Expand)
	})

	return r
}
