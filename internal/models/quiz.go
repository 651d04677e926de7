package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// OptionLabels is the fixed label set every quiz question uses, in display order.
var OptionLabels = []string{"A", "B", "C", "D"}

// MaxContentQuizQuestions caps the quiz produced from simplified content.
const MaxContentQuizQuestions = 10

// ModuleQuizQuestions is the number of questions requested when a roadmap module is expanded.
const ModuleQuizQuestions = 5

type QuizItem struct {
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Explanation   Explanation       `json:"explanation"`
}

// Explanation is either a single text or a structured {correct, wrong} breakdown.
type Explanation struct {
	Text    string
	Correct string
	Wrong   map[string]string
}

func (e Explanation) IsStructured() bool {
	return e.Text == "" && (e.Correct != "" || len(e.Wrong) > 0)
}

func (e *Explanation) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &e.Text)
	}

	var structured struct {
		Correct string            `json:"correct"`
		Wrong   map[string]string `json:"wrong"`
	}
	if err := json.Unmarshal(data, &structured); err != nil {
		return fmt.Errorf("explanation must be a string or an object: %w", err)
	}
	e.Correct = structured.Correct
	e.Wrong = structured.Wrong
	return nil
}

func (e Explanation) MarshalJSON() ([]byte, error) {
	if !e.IsStructured() {
		return json.Marshal(e.Text)
	}
	return json.Marshal(struct {
		Correct string            `json:"correct"`
		Wrong   map[string]string `json:"wrong,omitempty"`
	}{e.Correct, e.Wrong})
}

// Validate checks the cross-field invariants a schema cannot express on its own.
func (q QuizItem) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("question text is empty")
	}
	if len(q.Options) != len(OptionLabels) {
		return fmt.Errorf("question %q has %d options, want %d", q.Question, len(q.Options), len(OptionLabels))
	}
	for _, label := range OptionLabels {
		if _, ok := q.Options[label]; !ok {
			return fmt.Errorf("question %q is missing option %s", q.Question, label)
		}
	}
	if _, ok := q.Options[q.CorrectAnswer]; !ok {
		return fmt.Errorf("question %q: correct answer %q is not one of the options", q.Question, q.CorrectAnswer)
	}
	if strings.TrimSpace(q.Explanation.Text) == "" && strings.TrimSpace(q.Explanation.Correct) == "" {
		return fmt.Errorf("question %q has no explanation of the correct answer", q.Question)
	}
	if _, ok := q.Explanation.Wrong[q.CorrectAnswer]; ok {
		return fmt.Errorf("question %q: wrong-answer explanations include the correct label %s", q.Question, q.CorrectAnswer)
	}
	for label := range q.Explanation.Wrong {
		if _, ok := q.Options[label]; !ok {
			return fmt.Errorf("question %q: explanation references unknown option %s", q.Question, label)
		}
	}
	return nil
}

// QuizItems is the array form returned by the quiz-from-content stage.
type QuizItems []QuizItem

func (items QuizItems) Validate() error {
	for i, q := range items {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("quiz item %d: %w", i, err)
		}
	}
	return nil
}
