package models

import (
	"fmt"
	"strings"
)

// RoadmapRequest is what a learner submits to get a multi-module roadmap.
type RoadmapRequest struct {
	Topic            string `json:"topic"`
	SkillLevel       string `json:"skill_level"`
	LearningStyle    string `json:"learning_style"`
	ModulePreference string `json:"module_preference"`
}

func (r RoadmapRequest) Validate() error {
	return requireFields(map[string]string{
		"topic":             r.Topic,
		"skill_level":       r.SkillLevel,
		"learning_style":    r.LearningStyle,
		"module_preference": r.ModulePreference,
	})
}

// Roadmap keeps the key names the model is instructed to emit, which are also
// the names the frontend reads.
type Roadmap struct {
	TopicName   string   `json:"Topic Name"`
	Description string   `json:"Description"`
	Modules     []Module `json:"Modules"`
}

type Module struct {
	Subtopic         string     `json:"Subtopic"`
	Time             string     `json:"Time"`
	ShortDescription string     `json:"Short Description"`
	Quiz             ModuleQuiz `json:"Quiz"`
}

// ModuleQuiz is the quiz stub attached to every roadmap module.
type ModuleQuiz struct {
	Description string `json:"Description"`
}

func (r Roadmap) Validate() error {
	if len(r.Modules) == 0 {
		return fmt.Errorf("roadmap %q has no modules", r.TopicName)
	}
	for i, m := range r.Modules {
		if strings.TrimSpace(m.Subtopic) == "" {
			return fmt.Errorf("module %d has no subtopic", i)
		}
	}
	return nil
}

// ExpandRequest asks for the full content of one roadmap module.
type ExpandRequest struct {
	Topic         string `json:"topic"`
	Subtopic      string `json:"subtopic"`
	Time          string `json:"time"`
	LearningStyle string `json:"learning_style"`
	SkillLevel    string `json:"skill_level"`
}

func (r ExpandRequest) Validate() error {
	return requireFields(map[string]string{
		"topic":          r.Topic,
		"subtopic":       r.Subtopic,
		"time":           r.Time,
		"learning_style": r.LearningStyle,
		"skill_level":    r.SkillLevel,
	})
}

// ExpandRequestFor builds the expansion request for one module of a generated roadmap.
func ExpandRequestFor(req RoadmapRequest, m Module) ExpandRequest {
	return ExpandRequest{
		Topic:         req.Topic,
		Subtopic:      m.Subtopic,
		Time:          m.Time,
		LearningStyle: req.LearningStyle,
		SkillLevel:    req.SkillLevel,
	}
}

type ContentBlock struct {
	Title       string  `json:"title"`
	Explanation string  `json:"explanation"`
	CodeExample *string `json:"codeExample,omitempty"`
}

// ModuleDetails is the parsed output of a module expansion.
type ModuleDetails struct {
	Content []ContentBlock `json:"content"`
	Quizzes []QuizItem     `json:"quizzes"`
}

func (d ModuleDetails) Validate() error {
	if len(d.Content) == 0 {
		return fmt.Errorf("module details have no content blocks")
	}
	return QuizItems(d.Quizzes).Validate()
}

type LearningContent struct {
	Details ModuleDetails `json:"Details"`
}

// LearningPath is the result of expanding a module. RecommendedVideo holds a
// watch URL or one of the video sentinels.
type LearningPath struct {
	LearningContent  LearningContent `json:"learning_content"`
	RecommendedVideo string          `json:"recommended_video"`
}

const (
	NoSearchTermsSentinel = "No search terms available"
	NoVideoFoundSentinel  = "No video found"
	VideoErrorPrefix      = "Error fetching YouTube video: "
)
