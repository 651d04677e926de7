package pipeline

import (
	"context"
	"strings"

	"learnflow-backend/internal/llm"
	"learnflow-backend/internal/models"
	"learnflow-backend/internal/parser"
	"learnflow-backend/internal/prompts"
)

// ContentPipeline simplifies learning material and builds a quiz from the
// simplified text.
type ContentPipeline struct {
	gen    Generator
	stages *stageRunner
}

func NewContentPipeline(gen Generator, opts ...Option) *ContentPipeline {
	return &ContentPipeline{gen: gen, stages: newStageRunner(opts)}
}

// SimplifyAndQuiz runs the simplify stage, then the quiz stage on its output.
// A simplify failure aborts before any quiz call; a quiz failure returns a
// StageError carrying the summary.
func (p *ContentPipeline) SimplifyAndQuiz(ctx context.Context, content string) (*models.SimplifiedQuizResult, error) {
	var summary string
	err := p.stages.run(ctx, models.StageSimplify, func(ctx context.Context) error {
		text, err := p.gen.Generate(ctx, prompts.BuildSimplifyPrompt(content), llm.VariantFlash, llm.DefaultParams)
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return &llm.UpstreamError{Err: llm.ErrEmptyCompletion}
		}
		summary = text
		return nil
	})
	if err != nil {
		return nil, &StageError{Stage: models.StageSimplify, Err: err}
	}

	var quiz models.QuizItems
	err = p.stages.run(ctx, models.StageQuiz, func(ctx context.Context) error {
		raw, err := p.gen.Generate(ctx, prompts.BuildQuizPrompt(summary, models.MaxContentQuizQuestions), llm.VariantFlash, llm.DefaultParams)
		if err != nil {
			return err
		}
		quiz, err = parser.Parse[models.QuizItems](raw, parser.QuizItemsShape)
		return err
	})
	if err != nil {
		return nil, &StageError{Stage: models.StageQuiz, Summary: summary, Err: err}
	}

	if len(quiz) > models.MaxContentQuizQuestions {
		quiz = quiz[:models.MaxContentQuizQuestions]
	}
	return &models.SimplifiedQuizResult{Summary: summary, Quiz: quiz}, nil
}
