// Package prompts renders the instructions sent to the generative model. Every
// builder is a pure function of its input and embeds the exact output shape the
// parser expects back.
package prompts

import (
	"fmt"
	"strings"

	"learnflow-backend/internal/models"
)

const jsonOnly = "CRITICAL: Return ONLY valid JSON. No preamble, no commentary, no markdown, no code fences.\n"

// BuildRoadmapPrompt asks for a multi-module roadmap with a quiz stub per module.
func BuildRoadmapPrompt(req models.RoadmapRequest) string {
	var b strings.Builder

	b.WriteString("You are an expert learning roadmap creator.\n\n")
	b.WriteString("Generate a detailed learning roadmap for:\n\n")
	b.WriteString(fmt.Sprintf("Topic: %s\n", req.Topic))
	b.WriteString(fmt.Sprintf("Skill Level: %s\n", req.SkillLevel))
	b.WriteString(fmt.Sprintf("Learning Style: %s\n", req.LearningStyle))
	b.WriteString(fmt.Sprintf("Module Preference: %s\n\n", req.ModulePreference))

	b.WriteString(`Roadmap JSON structure:
{
  "Topic Name": "...",
  "Description": "...",
  "Modules": [
    {
      "Subtopic": "...",
      "Time": "...",
      "Short Description": "...",
      "Quiz": {
        "Description": "..."
      }
    }
  ]
}

Rules:
- Include at least one module. Order modules from first to last.
- Every module must have a Quiz with a Description.
`)
	b.WriteString(jsonOnly)

	return b.String()
}

// BuildExpandPrompt asks for the full teaching content of one module plus a
// fixed-size quiz drawn only from that content.
func BuildExpandPrompt(req models.ExpandRequest) string {
	var b strings.Builder

	b.WriteString("You are an expert educational content creator.\n\n")
	b.WriteString("Expand and explain the concept in detail based on the following:\n")
	b.WriteString(fmt.Sprintf("- Topic: %s\n", req.Topic))
	b.WriteString(fmt.Sprintf("- Subtopic (Chapter): %s\n", req.Subtopic))
	b.WriteString(fmt.Sprintf("- Expected Learning Time: %s\n", req.Time))
	b.WriteString(fmt.Sprintf("- Learning Style: %s\n", req.LearningStyle))
	b.WriteString(fmt.Sprintf("- Skill Level: %s\n\n", req.SkillLevel))

	b.WriteString("Instructions:\n")
	b.WriteString("- Tailor the explanation to the learning style (Visual, Auditory, Kinesthetic, or Reading/Writing).\n")
	b.WriteString(fmt.Sprintf("- Adjust the depth and length of the content to fit within %s.\n", req.Time))
	b.WriteString("- Include practical examples, analogies, textual descriptions of visuals, or code examples as the style suits.\n")
	b.WriteString("- Omit codeExample entirely when no code applies.\n\n")

	b.WriteString(`JSON structure:
{
  "content": [
    {
      "title": "Title of the concept",
      "explanation": "Detailed explanation adapted to the learning style",
      "codeExample": "<pre>Code example here</pre>"
    }
  ],
  "quizzes": [
    {
      "question": "Question text",
      "options": {"A": "Option A", "B": "Option B", "C": "Option C", "D": "Option D"},
      "correct_answer": "B",
      "explanation": "Why option B is correct."
    }
  ]
}

`)
	b.WriteString(fmt.Sprintf("Generate exactly %d quizzes. Each has exactly 4 options labelled A, B, C and D, and correct_answer is one of those labels.\n", models.ModuleQuizQuestions))
	b.WriteString("Quizzes must be strictly based on the content above. No unrelated or general questions.\n")
	b.WriteString("Escape all backslashes and newlines inside JSON strings.\n")
	b.WriteString(jsonOnly)

	return b.String()
}

// BuildSearchTermPrompt asks for exactly one video search term.
func BuildSearchTermPrompt(req models.ExpandRequest) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Based on the topic \"%s\" and subtopic \"%s\" with a learning goal of \"%s\", ", req.Topic, req.Subtopic, req.Time))
	b.WriteString(fmt.Sprintf("preferred learning style \"%s\", and the learner's skill level \"%s\", ", req.LearningStyle, req.SkillLevel))
	b.WriteString("generate ONE very specific, focused YouTube search term that would help the learner best understand the subtopic.\n\n")

	b.WriteString("The search term should be:\n")
	b.WriteString("- Clear and concise\n")
	b.WriteString("- Appropriate for the learner's skill level\n")
	b.WriteString("- Likely to return high-quality educational tutorials\n\n")

	b.WriteString("Return a JSON array holding exactly one string:\n")
	b.WriteString(`["search term here"]` + "\n")
	b.WriteString(jsonOnly)

	return b.String()
}

// BuildSimplifyPrompt asks for a long, beginner-friendly rewrite of the content.
// The output is free text.
func BuildSimplifyPrompt(content string) string {
	var b strings.Builder

	b.WriteString("You are an expert tutor specializing in simplifying complex topics.\n\n")
	b.WriteString("Write a full, detailed explanation of the content below in simple language a beginner can follow.\n")
	b.WriteString("- Expand on every concept mentioned.\n")
	b.WriteString("- Use examples, analogies and real-world explanations where possible.\n")
	b.WriteString("- Cover every point like a complete set of lecture notes, not a short summary.\n")
	b.WriteString("- Match the depth and size of the original: long content gets a long explanation.\n\n")
	b.WriteString("Return plain text only. No JSON, no markdown symbols (*, -, #), no headings about the task itself.\n\n")

	b.WriteString("---CONTENT---\n")
	b.WriteString(content)
	b.WriteString("\n---END---\n")

	return b.String()
}

// BuildQuizPrompt asks for at most maxQuestions multiple-choice questions
// drawn from simplified content.
func BuildQuizPrompt(summary string, maxQuestions int) string {
	var b strings.Builder

	b.WriteString("You are an expert educational assessor. Create a quiz from the content below.\n\n")
	b.WriteString(fmt.Sprintf("Generate at most %d questions. Scale the number with the length and complexity of the content and cover its important concepts.\n", maxQuestions))
	b.WriteString("Each question has exactly 4 options labelled A, B, C and D. correct_answer is one of those labels.\n")
	b.WriteString("The explanation gives 2-3 sentences on why the correct option is right, and one sentence per wrong option on why it is wrong. Never list the correct label under wrong.\n\n")

	b.WriteString(`JSON structure (an array):
[
  {
    "question": "Question text",
    "options": {"A": "Option A", "B": "Option B", "C": "Option C", "D": "Option D"},
    "correct_answer": "B",
    "explanation": {
      "correct": "Why option B is correct.",
      "wrong": {"A": "Why A is wrong.", "C": "Why C is wrong.", "D": "Why D is wrong."}
    }
  }
]

`)
	b.WriteString(jsonOnly)

	b.WriteString("\n---CONTENT---\n")
	b.WriteString(summary)
	b.WriteString("\n---END---\n")

	return b.String()
}

// TranscriptionInstruction is sent alongside uploaded audio.
const TranscriptionInstruction = "Transcribe the provided audio verbatim. Return plain text only, without markdown, headers, or explanations."

// OCRInstruction is sent alongside scanned documents whose embedded text layer is missing.
const OCRInstruction = "Extract all readable text from this document in reading order. Return plain text only, without markdown or commentary."
