package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"learnflow-backend/internal/llm"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	llmRequests     *prometheus.CounterVec
	llmLatency      *prometheus.HistogramVec
	llmTokens       *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	videoLookups    *prometheus.CounterVec
}

var _ llm.Recorder = (*Metrics)(nil)

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 15, 30, 60, 120},
			},
			[]string{"method", "endpoint"},
		),
		llmRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_requests_total",
				Help: "Generation calls by provider, model variant and outcome",
			},
			[]string{"provider", "variant", "outcome"},
		),
		llmLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "llm_request_duration_seconds",
				Help:    "Latency of generation calls",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
			},
			[]string{"provider", "variant"},
		),
		llmTokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_tokens_total",
				Help: "Tokens consumed by generation calls",
			},
			[]string{"provider", "direction"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pipeline_stage_duration_seconds",
				Help:    "Duration of pipeline stages",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
			},
			[]string{"stage", "status"},
		),
		videoLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "video_lookups_total",
				Help: "Recommended-video lookups by result",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(
		m.requestCounter,
		m.requestDuration,
		m.llmRequests,
		m.llmLatency,
		m.llmTokens,
		m.stageDuration,
		m.videoLookups,
	)
	return m
}

func (m *Metrics) ObserveRequest(method, endpoint, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.requestCounter.WithLabelValues(method, endpoint, status).Inc()
	m.requestDuration.WithLabelValues(method, endpoint).Observe(d.Seconds())
}

func (m *Metrics) ObserveGeneration(provider, variant, outcome string, d time.Duration, usage llm.Usage) {
	if m == nil {
		return
	}
	m.llmRequests.WithLabelValues(provider, variant, outcome).Inc()
	m.llmLatency.WithLabelValues(provider, variant).Observe(d.Seconds())
	if usage.InputTokens > 0 {
		m.llmTokens.WithLabelValues(provider, "input").Add(float64(usage.InputTokens))
	}
	if usage.OutputTokens > 0 {
		m.llmTokens.WithLabelValues(provider, "output").Add(float64(usage.OutputTokens))
	}
}

func (m *Metrics) ObserveStage(stage, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage, status).Observe(d.Seconds())
}

// ObserveLookup counts a video lookup; result is "found", "not_found", "error" or "skipped".
func (m *Metrics) ObserveLookup(result string) {
	if m == nil {
		return
	}
	m.videoLookups.WithLabelValues(result).Inc()
}
