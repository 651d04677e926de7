package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnflow-backend/internal/llm"
	"learnflow-backend/internal/models"
	"learnflow-backend/internal/parser"
	"learnflow-backend/internal/services"
)

const roadmapReply = `{"Topic Name":"Rust","Description":"Systems programming","Modules":[{"Subtopic":"Ownership","Time":"2 hours","Short Description":"Who owns what","Quiz":{"Description":"Ownership quiz"}},{"Subtopic":"Borrowing","Time":"1 hour","Short Description":"References","Quiz":{"Description":"Borrowing quiz"}}]}`

func moduleDetailsReply() string {
	return `{"content":[{"title":"Ownership","explanation":"Each value has a single owner."}],"quizzes":` + quizJSON(5) + `}`
}

var expandReq = models.ExpandRequest{
	Topic:         "Rust",
	Subtopic:      "Ownership",
	Time:          "2 hours",
	LearningStyle: "visual",
	SkillLevel:    "beginner",
}

func TestGenerateRoadmap(t *testing.T) {
	gen := newScriptedGenerator().on(roadmapMarker, "Here you go:\n"+roadmapReply)
	p := NewRoadmapPipeline(gen, &recordingSearcher{})

	roadmap, err := p.GenerateRoadmap(context.Background(), models.RoadmapRequest{
		Topic: "Rust", SkillLevel: "beginner", LearningStyle: "visual", ModulePreference: "short",
	})
	require.NoError(t, err)
	assert.Equal(t, "Rust", roadmap.TopicName)
	require.Len(t, roadmap.Modules, 2)
	assert.Equal(t, "Borrowing quiz", roadmap.Modules[1].Quiz.Description)

	calls := gen.callsMatching(roadmapMarker)
	require.Len(t, calls, 1)
	assert.Equal(t, llm.VariantPro, calls[0].Variant)
	assert.Equal(t, llm.DefaultParams, calls[0].Params)
}

func TestGenerateRoadmap_EmptyModulesIsSchemaError(t *testing.T) {
	gen := newScriptedGenerator().on(roadmapMarker, "```json\n{\"Topic Name\":\"X\",\"Description\":\"d\",\"Modules\":[]}\n```")
	p := NewRoadmapPipeline(gen, &recordingSearcher{})

	roadmap, err := p.GenerateRoadmap(context.Background(), models.RoadmapRequest{Topic: "X"})
	assert.Nil(t, roadmap)
	assert.True(t, parser.IsSchemaError(err))

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, models.StageRoadmap, stageErr.Stage)
}

func TestCreateLearningPath(t *testing.T) {
	gen := newScriptedGenerator().
		on(expandMarker, "```json\n"+moduleDetailsReply()+"\n```").
		on(searchMarker, `["rust ownership for beginners", "other"]`)
	videos := &recordingSearcher{id: "abcdefghijk"}
	obs := &recordingObserver{}
	p := NewRoadmapPipeline(gen, videos, WithObserver(obs))

	path, err := p.CreateLearningPath(context.Background(), expandReq)
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/watch?v=abcdefghijk", path.RecommendedVideo)
	assert.Len(t, path.LearningContent.Details.Content, 1)
	assert.Len(t, path.LearningContent.Details.Quizzes, 5)
	assert.Equal(t, []string{"rust ownership for beginners"}, videos.queries)
	assert.Equal(t, []string{"found"}, obs.lookups)

	expand := gen.callsMatching(expandMarker)
	require.Len(t, expand, 1)
	assert.Equal(t, llm.CreativeParams, expand[0].Params)
	assert.Equal(t, llm.VariantFlash, expand[0].Variant)

	search := gen.callsMatching(searchMarker)
	require.Len(t, search, 1)
	assert.Equal(t, llm.FocusedParams, search[0].Params)
}

// gateSearcher releases the gate once the lookup has been reached.
type gateSearcher struct {
	once sync.Once
	gate chan struct{}
}

func (s *gateSearcher) SearchVideo(context.Context, string) (string, error) {
	s.once.Do(func() { close(s.gate) })
	return "abcdefghijk", nil
}

func TestCreateLearningPath_ExpansionOverlapsLookup(t *testing.T) {
	videos := &gateSearcher{gate: make(chan struct{})}
	gen := newScriptedGenerator().on(searchMarker, `["rust ownership"]`)
	gen.replies[expandMarker] = func() (string, error) {
		select {
		case <-videos.gate:
			return moduleDetailsReply(), nil
		case <-time.After(2 * time.Second):
			return "", errors.New("expansion blocked the search-term and lookup path")
		}
	}
	p := NewRoadmapPipeline(gen, videos)

	path, err := p.CreateLearningPath(context.Background(), expandReq)
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/watch?v=abcdefghijk", path.RecommendedVideo)
	assert.Len(t, path.LearningContent.Details.Quizzes, 5)
}

func TestCreateLearningPath_NoSearchTermsSkipsLookup(t *testing.T) {
	for _, reply := range []string{`[]`, "```json\n[]\n```", `["   "]`} {
		gen := newScriptedGenerator().
			on(expandMarker, moduleDetailsReply()).
			on(searchMarker, reply)
		videos := &recordingSearcher{id: "abcdefghijk"}
		p := NewRoadmapPipeline(gen, videos)

		path, err := p.CreateLearningPath(context.Background(), expandReq)
		require.NoError(t, err, reply)
		assert.Equal(t, models.NoSearchTermsSentinel, path.RecommendedVideo)
		assert.Empty(t, videos.queries, "lookup must not run for %s", reply)
	}
}

func TestCreateLearningPath_VideoNotFound(t *testing.T) {
	gen := newScriptedGenerator().
		on(expandMarker, moduleDetailsReply()).
		on(searchMarker, `["obscure term"]`)
	p := NewRoadmapPipeline(gen, &recordingSearcher{err: services.ErrVideoNotFound})

	path, err := p.CreateLearningPath(context.Background(), expandReq)
	require.NoError(t, err)
	assert.Equal(t, models.NoVideoFoundSentinel, path.RecommendedVideo)
}

func TestCreateLearningPath_LookupErrorDegradesToSentinel(t *testing.T) {
	gen := newScriptedGenerator().
		on(expandMarker, moduleDetailsReply()).
		on(searchMarker, `["term"]`)
	p := NewRoadmapPipeline(gen, &recordingSearcher{err: &services.LookupError{StatusCode: 403, Err: errBoom}})

	path, err := p.CreateLearningPath(context.Background(), expandReq)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path.RecommendedVideo, models.VideoErrorPrefix), path.RecommendedVideo)
	assert.Contains(t, path.RecommendedVideo, "403")
}

func TestCreateLearningPath_ExpandParseFailureAborts(t *testing.T) {
	gen := newScriptedGenerator().
		on(expandMarker, `{"content":[],"quizzes":[]}`).
		on(searchMarker, `["term"]`)
	p := NewRoadmapPipeline(gen, &recordingSearcher{id: "abcdefghijk"})

	path, err := p.CreateLearningPath(context.Background(), expandReq)
	assert.Nil(t, path)
	assert.True(t, parser.IsSchemaError(err))

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, models.StageExpand, stageErr.Stage)
}

func TestCreateLearningPath_SearchTermFailureAborts(t *testing.T) {
	gen := newScriptedGenerator().
		on(expandMarker, moduleDetailsReply()).
		fail(searchMarker, &llm.NetworkError{Err: errBoom})
	videos := &recordingSearcher{id: "abcdefghijk"}
	p := NewRoadmapPipeline(gen, videos)

	path, err := p.CreateLearningPath(context.Background(), expandReq)
	assert.Nil(t, path)

	var netErr *llm.NetworkError
	assert.ErrorAs(t, err, &netErr)
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, models.StageSearchTerms, stageErr.Stage)
	assert.Empty(t, videos.queries)
}

func TestGenerateRoadmap_ThroughInvoker(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "```json\n" + roadmapReply + "\n```"})
	p := NewRoadmapPipeline(llm.NewInvoker(mock, 2, nil, nil), &recordingSearcher{})

	roadmap, err := p.GenerateRoadmap(context.Background(), models.RoadmapRequest{Topic: "Rust"})
	require.NoError(t, err)
	assert.Len(t, roadmap.Modules, 2)
	require.Equal(t, 1, mock.CallCount())
	assert.Equal(t, llm.VariantPro, mock.Calls[0].Variant)
}
