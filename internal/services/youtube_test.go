package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"learnflow-backend/internal/logger"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ&t=10", "dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"  dQw4w9WgXcQ  ", "dQw4w9WgXcQ", true},
		{"https://vimeo.com/12345", "", false},
		{"", "", false},
	}

	for _, tc := range tests {
		got, ok := ExtractVideoID(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ExtractVideoID(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestExtractCaptionURL(t *testing.T) {
	page := `..."captionTracks":[{"baseUrl":"https:\/\/www.youtube.com\/api\/timedtext?v=abc&lang=en","name":{"simpleText":"English"}}],"audioTracks"...`

	got, err := extractCaptionURL(page)
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/api/timedtext?v=abc&lang=en", got)

	_, err = extractCaptionURL("<html>no captions</html>")
	assert.Error(t, err)
}

func TestParseCaptionsXML(t *testing.T) {
	data := []byte(`<transcript><text start="0" dur="1">Hello &amp;amp; welcome</text><text start="1" dur="1">  </text><text start="2" dur="1">to Go</text></transcript>`)

	got, err := parseCaptionsXML(data)
	require.NoError(t, err)
	assert.Equal(t, "Hello & welcome to Go", got)

	_, err = parseCaptionsXML([]byte(`<transcript></transcript>`))
	assert.Error(t, err)
}

func newTestYouTubeService(t *testing.T, handler http.HandlerFunc) *YouTubeService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	s, err := NewYouTubeService(context.Background(), "test-key", logger.Nop(),
		option.WithEndpoint(server.URL+"/"),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)
	return s
}

func TestSearchVideo_ReturnsFirstVideoID(t *testing.T) {
	var query map[string]string
	s := newTestYouTubeService(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query = map[string]string{
			"q":                 q.Get("q"),
			"type":              q.Get("type"),
			"maxResults":        q.Get("maxResults"),
			"relevanceLanguage": q.Get("relevanceLanguage"),
			"videoEmbeddable":   q.Get("videoEmbeddable"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"id":{"kind":"youtube#video","videoId":"abcdefghijk"}}]}`))
	})

	id, err := s.SearchVideo(context.Background(), "rust ownership explained")
	require.NoError(t, err)
	assert.Equal(t, "abcdefghijk", id)
	assert.Equal(t, map[string]string{
		"q":                 "rust ownership explained",
		"type":              "video",
		"maxResults":        "1",
		"relevanceLanguage": "en",
		"videoEmbeddable":   "true",
	}, query)
}

func TestSearchVideo_NoItemsIsNotFound(t *testing.T) {
	s := newTestYouTubeService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[]}`))
	})

	_, err := s.SearchVideo(context.Background(), "nothing")
	assert.ErrorIs(t, err, ErrVideoNotFound)
}

func TestSearchVideo_HTTPErrorIsLookupError(t *testing.T) {
	s := newTestYouTubeService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"quotaExceeded"}}`))
	})

	_, err := s.SearchVideo(context.Background(), "anything")
	var lookup *LookupError
	require.ErrorAs(t, err, &lookup)
	assert.Equal(t, http.StatusForbidden, lookup.StatusCode)
	assert.False(t, errors.Is(err, ErrVideoNotFound))
}

func TestSearchVideo_WithoutKeyIsLookupError(t *testing.T) {
	s, err := NewYouTubeService(context.Background(), "", logger.Nop())
	require.NoError(t, err)

	_, err = s.SearchVideo(context.Background(), "anything")
	var lookup *LookupError
	assert.ErrorAs(t, err, &lookup)
}

func TestVideoText_RejectsBadLink(t *testing.T) {
	s, err := NewYouTubeService(context.Background(), "", logger.Nop())
	require.NoError(t, err)

	_, err = s.VideoText(context.Background(), "https://example.com/video", nil)
	assert.ErrorIs(t, err, ErrInvalidVideoLink)
}
