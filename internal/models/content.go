package models

import "fmt"

// SourceType identifies where the learning material for a simplify request came from.
type SourceType string

const (
	SourceText     SourceType = "text"
	SourceDocument SourceType = "document"
	SourceVideo    SourceType = "video"
)

// SimplifiedQuizResult is returned by the simplify-and-quiz flow.
type SimplifiedQuizResult struct {
	Summary string     `json:"summary"`
	Quiz    []QuizItem `json:"quiz"`
}

// WatchURL is the canonical watch link for a video ID.
func WatchURL(videoID string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
}
