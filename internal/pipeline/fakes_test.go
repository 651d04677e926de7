package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"learnflow-backend/internal/llm"
	"learnflow-backend/internal/models"
)

type call struct {
	Prompt  string
	Variant llm.Variant
	Params  llm.DecodingParams
}

// scriptedGenerator answers by matching a marker in the prompt.
type scriptedGenerator struct {
	mu      sync.Mutex
	calls   []call
	replies map[string]func() (string, error)
}

func newScriptedGenerator() *scriptedGenerator {
	return &scriptedGenerator{replies: map[string]func() (string, error){}}
}

const (
	simplifyMarker = "simplifying complex topics"
	quizMarker     = "expert educational assessor"
	roadmapMarker  = "learning roadmap creator"
	expandMarker   = "educational content creator"
	searchMarker   = "YouTube search term"
)

func (g *scriptedGenerator) on(marker, text string) *scriptedGenerator {
	g.replies[marker] = func() (string, error) { return text, nil }
	return g
}

func (g *scriptedGenerator) fail(marker string, err error) *scriptedGenerator {
	g.replies[marker] = func() (string, error) { return "", err }
	return g
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string, variant llm.Variant, params llm.DecodingParams) (string, error) {
	g.mu.Lock()
	g.calls = append(g.calls, call{Prompt: prompt, Variant: variant, Params: params})
	g.mu.Unlock()

	for marker, reply := range g.replies {
		if strings.Contains(prompt, marker) {
			return reply()
		}
	}
	return "", fmt.Errorf("no scripted reply for prompt: %.60q", prompt)
}

func (g *scriptedGenerator) GenerateAsync(ctx context.Context, prompt string, variant llm.Variant, params llm.DecodingParams) <-chan llm.Result {
	out := make(chan llm.Result, 1)
	go func() {
		defer close(out)
		text, err := g.Generate(ctx, prompt, variant, params)
		out <- llm.Result{Text: text, Err: err}
	}()
	return out
}

func (g *scriptedGenerator) callsMatching(marker string) []call {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []call
	for _, c := range g.calls {
		if strings.Contains(c.Prompt, marker) {
			out = append(out, c)
		}
	}
	return out
}

type recordingSearcher struct {
	mu      sync.Mutex
	queries []string
	id      string
	err     error
}

func (s *recordingSearcher) SearchVideo(_ context.Context, query string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	return s.id, s.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.StageEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev models.StageEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

type recordingObserver struct {
	mu      sync.Mutex
	lookups []string
}

func (o *recordingObserver) ObserveStage(string, string, time.Duration) {}

func (o *recordingObserver) ObserveLookup(result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lookups = append(o.lookups, result)
}

func quizJSON(n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"question":"Question %d?","options":{"A":"a","B":"b","C":"c","D":"d"},"correct_answer":"C","explanation":{"correct":"C is right.","wrong":{"A":"no","B":"no","D":"no"}}}`, i+1)
	}
	return "[" + strings.Join(items, ",") + "]"
}

func words(n int, w string) string {
	return strings.TrimSpace(strings.Repeat(w+" ", n))
}

var errBoom = errors.New("boom")
