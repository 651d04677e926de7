package models

import "time"

// Stage names shared by the pipelines, their events and their errors.
type Stage string

const (
	StageSimplify    Stage = "simplify"
	StageQuiz        Stage = "quiz"
	StageRoadmap     Stage = "roadmap"
	StageExpand      Stage = "expand"
	StageSearchTerms Stage = "search-terms"
	StageVideoLookup Stage = "video-lookup"
)

type StageStatus string

const (
	StageStarted   StageStatus = "started"
	StageCompleted StageStatus = "completed"
	StageFailed    StageStatus = "failed"
)

// StageEvent is published whenever a pipeline stage changes state.
type StageEvent struct {
	RequestID  string      `json:"request_id"`
	Stage      Stage       `json:"stage"`
	Status     StageStatus `json:"status"`
	Error      string      `json:"error,omitempty"`
	DurationMs int64       `json:"duration_ms,omitempty"`
	At         time.Time   `json:"at"`
}
