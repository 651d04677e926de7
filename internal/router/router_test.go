package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnflow-backend/internal/handlers"
	"learnflow-backend/internal/llm"
	"learnflow-backend/internal/logger"
	"learnflow-backend/internal/observability"
	"learnflow-backend/internal/pipeline"
	"learnflow-backend/internal/services"
)

type stubSearcher struct{}

func (stubSearcher) SearchVideo(context.Context, string) (string, error) {
	return "dQw4w9WgXcQ", nil
}

const roadmapJSON = "```json\n" + `{"Topic Name":"Go","Description":"d","Modules":[{"Subtopic":"Basics","Time":"1 week","Short Description":"s","Quiz":{"Description":"q"}}]}` + "\n```"

func newTestRouter(t *testing.T, responses ...llm.MockResponse) (http.Handler, *llm.MockProvider) {
	t.Helper()
	log := logger.Nop()
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	provider := llm.NewMockProvider(responses...)
	inv := llm.NewInvoker(provider, 2, metrics, log)

	content := pipeline.NewContentPipeline(inv, pipeline.WithObserver(metrics), pipeline.WithLogger(log))
	roadmap := pipeline.NewRoadmapPipeline(inv, stubSearcher{}, pipeline.WithObserver(metrics), pipeline.WithLogger(log))

	h := New(
		handlers.NewContentHandler(content, services.NewFileExtractService(nil, log), nil, nil, 5, log),
		handlers.NewRoadmapHandler(roadmap, log),
		handlers.NewHealthHandler(provider.Name(), nil),
		Options{
			FrontendURL:    "http://localhost:3000",
			RequestTimeout: 5 * time.Second,
			Metrics:        metrics,
			Gatherer:       reg,
			Log:            log,
		},
	)
	return h, provider
}

func TestRouter_Health(t *testing.T) {
	h, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestRouter_GenerateRoadmapEndToEnd(t *testing.T) {
	h, provider := newTestRouter(t, llm.MockResponse{Text: roadmapJSON})

	body := `{"topic":"Go","skill_level":"beginner","learning_style":"visual","module_preference":"1"}`
	req := httptest.NewRequest(http.MethodPost, "/generate-roadmap", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var raw map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&raw))
	assert.Equal(t, "Go", raw["Topic Name"])

	require.Equal(t, 1, provider.CallCount())
	assert.Equal(t, llm.VariantPro, provider.Calls[0].Variant)
}

func TestRouter_ParseFailureIs502(t *testing.T) {
	h, _ := newTestRouter(t, llm.MockResponse{Text: `{"Topic Name":"Go","Description":"d","Modules":[]}`})

	body := `{"topic":"Go","skill_level":"beginner","learning_style":"visual","module_preference":"1"}`
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/generate-roadmap", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "PARSE_FAILURE")
}

func TestRouter_ProcessTextEndToEnd(t *testing.T) {
	quiz := `[{"question":"What do plants make?","options":{"A":"Sugar","B":"Salt","C":"Iron","D":"Oil"},"correct_answer":"A","explanation":"Photosynthesis makes sugar."}]`
	h, provider := newTestRouter(t,
		llm.MockResponse{Text: "Plants turn light into sugar."},
		llm.MockResponse{Text: quiz},
	)

	req := httptest.NewRequest(http.MethodPost, "/process_text/", strings.NewReader("text=photosynthesis"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "Plants turn light into sugar.")
	assert.Equal(t, 2, provider.CallCount())
}

func TestRouter_ValidatesBeforeGenerating(t *testing.T) {
	h, provider := newTestRouter(t)

	body := `{"topic":"Go"}`
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/generate-roadmap", strings.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "skill_level")
	assert.Zero(t, provider.CallCount())
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	h, _ := newTestRouter(t)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `http_requests_total{endpoint="/health",method="GET",status="200"} 1`)
}
