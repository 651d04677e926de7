package pipeline

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"learnflow-backend/internal/llm"
	"learnflow-backend/internal/models"
	"learnflow-backend/internal/parser"
	"learnflow-backend/internal/prompts"
	"learnflow-backend/internal/services"
)

// VideoSearcher finds a video ID for a search query. It returns
// services.ErrVideoNotFound when the search succeeds with no results.
type VideoSearcher interface {
	SearchVideo(ctx context.Context, query string) (string, error)
}

type RoadmapPipeline struct {
	gen    Generator
	videos VideoSearcher
	stages *stageRunner
}

func NewRoadmapPipeline(gen Generator, videos VideoSearcher, opts ...Option) *RoadmapPipeline {
	return &RoadmapPipeline{gen: gen, videos: videos, stages: newStageRunner(opts)}
}

func (p *RoadmapPipeline) GenerateRoadmap(ctx context.Context, req models.RoadmapRequest) (*models.Roadmap, error) {
	var roadmap models.Roadmap
	err := p.stages.run(ctx, models.StageRoadmap, func(ctx context.Context) error {
		raw, err := p.gen.Generate(ctx, prompts.BuildRoadmapPrompt(req), llm.VariantPro, llm.DefaultParams)
		if err != nil {
			return err
		}
		roadmap, err = parser.Parse[models.Roadmap](raw, parser.RoadmapShape)
		return err
	})
	if err != nil {
		return nil, &StageError{Stage: models.StageRoadmap, Err: err}
	}
	return &roadmap, nil
}

// CreateLearningPath expands one module and finds a recommended video. The
// expansion runs concurrently with search-term generation and the lookup that
// depends on it. A failed lookup degrades to a sentinel string; any other
// failure aborts the result.
func (p *RoadmapPipeline) CreateLearningPath(ctx context.Context, req models.ExpandRequest) (*models.LearningPath, error) {
	g, gctx := errgroup.WithContext(ctx)

	expansion := p.gen.GenerateAsync(gctx, prompts.BuildExpandPrompt(req), llm.VariantFlash, llm.CreativeParams)

	var details models.ModuleDetails
	g.Go(func() error {
		err := p.stages.run(gctx, models.StageExpand, func(ctx context.Context) error {
			res := <-expansion
			if res.Err != nil {
				return res.Err
			}
			var err error
			details, err = parser.Parse[models.ModuleDetails](res.Text, parser.ModuleDetailsShape)
			return err
		})
		if err != nil {
			return &StageError{Stage: models.StageExpand, Err: err}
		}
		return nil
	})

	var video string
	g.Go(func() error {
		term, err := p.searchTerm(gctx, req)
		if err != nil {
			return &StageError{Stage: models.StageSearchTerms, Err: err}
		}
		video = p.recommendVideo(gctx, term)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.LearningPath{
		LearningContent:  models.LearningContent{Details: details},
		RecommendedVideo: video,
	}, nil
}

// searchTerm returns the first non-blank generated term, or "" when there is none.
func (p *RoadmapPipeline) searchTerm(ctx context.Context, req models.ExpandRequest) (string, error) {
	var term string
	err := p.stages.run(ctx, models.StageSearchTerms, func(ctx context.Context) error {
		raw, err := p.gen.Generate(ctx, prompts.BuildSearchTermPrompt(req), llm.VariantFlash, llm.FocusedParams)
		if err != nil {
			return err
		}
		terms, err := parser.Parse[[]string](raw, parser.SearchTermsShape)
		if err != nil {
			return err
		}
		for _, t := range terms {
			if t = strings.TrimSpace(t); t != "" {
				term = t
				break
			}
		}
		return nil
	})
	return term, err
}

func (p *RoadmapPipeline) recommendVideo(ctx context.Context, term string) string {
	if term == "" {
		p.stages.observer.ObserveLookup("skipped")
		return models.NoSearchTermsSentinel
	}

	var video string
	p.stages.run(ctx, models.StageVideoLookup, func(ctx context.Context) error {
		id, err := p.videos.SearchVideo(ctx, term)
		switch {
		case err == nil:
			p.stages.observer.ObserveLookup("found")
			video = models.WatchURL(id)
		case errors.Is(err, services.ErrVideoNotFound):
			p.stages.observer.ObserveLookup("not_found")
			video = models.NoVideoFoundSentinel
		default:
			p.stages.observer.ObserveLookup("error")
			p.stages.log.Warn("video lookup failed, using sentinel", "term", term, "error", err)
			video = models.VideoErrorPrefix + err.Error()
		}
		return nil
	})
	return video
}
