package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"learnflow-backend/internal/models"
)

func TestBuildRoadmapPrompt_EmbedsInputsAndShape(t *testing.T) {
	p := BuildRoadmapPrompt(models.RoadmapRequest{
		Topic:            "Rust",
		SkillLevel:       "beginner",
		LearningStyle:    "visual",
		ModulePreference: "short modules",
	})

	for _, want := range []string{"Topic: Rust", "Skill Level: beginner", "Learning Style: visual", "Module Preference: short modules", `"Topic Name"`, `"Short Description"`, `"Quiz"`, "ONLY valid JSON"} {
		assert.Contains(t, p, want)
	}
}

func TestBuildExpandPrompt_StatesQuizCount(t *testing.T) {
	p := BuildExpandPrompt(models.ExpandRequest{
		Topic: "Rust", Subtopic: "Ownership", Time: "2 hours", LearningStyle: "kinesthetic", SkillLevel: "beginner",
	})

	assert.Contains(t, p, "Subtopic (Chapter): Ownership")
	assert.Contains(t, p, "Expected Learning Time: 2 hours")
	assert.Contains(t, p, "Generate exactly 5 quizzes")
	assert.Contains(t, p, "A, B, C and D")
	assert.Contains(t, p, `"codeExample"`)
}

func TestBuildSearchTermPrompt_AsksForOneTerm(t *testing.T) {
	p := BuildSearchTermPrompt(models.ExpandRequest{
		Topic: "Rust", Subtopic: "Borrowing", Time: "1 hour", LearningStyle: "visual", SkillLevel: "intermediate",
	})

	assert.Contains(t, p, `"Borrowing"`)
	assert.Contains(t, p, `"intermediate"`)
	assert.Contains(t, p, "ONE very specific")
	assert.Contains(t, p, `["search term here"]`)
}

func TestBuildSearchTermPrompt_EmbedsFieldsVerbatim(t *testing.T) {
	p := BuildSearchTermPrompt(models.ExpandRequest{
		Topic: `C++ "move"`, Subtopic: "Rvalue\treferences", Time: "2 days", LearningStyle: "hands-on", SkillLevel: "advanced",
	})

	assert.Contains(t, p, `"C++ "move""`)
	assert.Contains(t, p, "Rvalue\treferences")
	assert.NotContains(t, p, `\"move\"`)
}

func TestBuildSimplifyPrompt_EmbedsContentVerbatim(t *testing.T) {
	content := "Photosynthesis converts light into chemical energy.\nChlorophyll absorbs light."
	p := BuildSimplifyPrompt(content)

	assert.Contains(t, p, content)
	assert.NotContains(t, p, "correct_answer")
}

func TestBuildQuizPrompt_StatesCap(t *testing.T) {
	p := BuildQuizPrompt("the summary text", models.MaxContentQuizQuestions)

	assert.Contains(t, p, "at most 10 questions")
	assert.Contains(t, p, "exactly 4 options")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(p), "---END---"))
	assert.Contains(t, p, "the summary text")
}

func TestBuilders_AreDeterministic(t *testing.T) {
	req := models.ExpandRequest{Topic: "Go", Subtopic: "Channels", Time: "1h", LearningStyle: "visual", SkillLevel: "beginner"}
	assert.Equal(t, BuildExpandPrompt(req), BuildExpandPrompt(req))
	assert.Equal(t, BuildQuizPrompt("x", 3), BuildQuizPrompt("x", 3))
}
