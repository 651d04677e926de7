package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"learnflow-backend/internal/models"
)

type learningPathBuilder interface {
	CreateLearningPath(ctx context.Context, req models.ExpandRequest) (*models.LearningPath, error)
}

// expandedRoadmap is the --expand output: the roadmap plus one learning path
// per module, in module order.
type expandedRoadmap struct {
	Roadmap       *models.Roadmap       `json:"roadmap"`
	LearningPaths []models.LearningPath `json:"learning_paths"`
}

var roadmapCmd = &cobra.Command{
	Use:     "roadmap",
	Short:   "Generate a multi-module learning roadmap",
	Example: `  learnflow roadmap --topic "Go concurrency" --level beginner --style hands-on --modules 4 --expand`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := models.RoadmapRequest{}
		req.Topic, _ = cmd.Flags().GetString("topic")
		req.SkillLevel, _ = cmd.Flags().GetString("level")
		req.LearningStyle, _ = cmd.Flags().GetString("style")
		req.ModulePreference, _ = cmd.Flags().GetString("modules")
		expand, _ := cmd.Flags().GetBool("expand")

		if err := req.Validate(); err != nil {
			return err
		}

		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := commandContext(cmd)
		roadmap, err := a.Roadmap.GenerateRoadmap(ctx, req)
		if err != nil {
			return err
		}
		if !expand {
			return printJSON(cmd.OutOrStdout(), roadmap)
		}

		paths, err := expandAll(ctx, a.Roadmap, req, roadmap, a.Config.LLMConcurrentReqs)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), expandedRoadmap{Roadmap: roadmap, LearningPaths: paths})
	},
}

var expandCmd = &cobra.Command{
	Use:     "expand",
	Short:   "Expand one roadmap module into content, quizzes and a video",
	Example: `  learnflow expand --topic "Go concurrency" --subtopic Channels --time "2 days" --style hands-on --level beginner`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := models.ExpandRequest{}
		req.Topic, _ = cmd.Flags().GetString("topic")
		req.Subtopic, _ = cmd.Flags().GetString("subtopic")
		req.Time, _ = cmd.Flags().GetString("time")
		req.LearningStyle, _ = cmd.Flags().GetString("style")
		req.SkillLevel, _ = cmd.Flags().GetString("level")

		if err := req.Validate(); err != nil {
			return err
		}

		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		path, err := a.Roadmap.CreateLearningPath(commandContext(cmd), req)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), path)
	},
}

func init() {
	roadmapCmd.Flags().String("topic", "", "Topic to learn")
	roadmapCmd.Flags().String("level", "", "Skill level, e.g. beginner")
	roadmapCmd.Flags().String("style", "", "Learning style, e.g. visual")
	roadmapCmd.Flags().String("modules", "", "Preferred number of modules")
	roadmapCmd.Flags().Bool("expand", false, "Also expand every module")

	expandCmd.Flags().String("topic", "", "Roadmap topic")
	expandCmd.Flags().String("subtopic", "", "Module subtopic")
	expandCmd.Flags().String("time", "", "Time budget for the module")
	expandCmd.Flags().String("style", "", "Learning style")
	expandCmd.Flags().String("level", "", "Skill level")
}

// expandAll expands every module with at most limit expansions in flight.
// The first failure cancels the rest.
func expandAll(ctx context.Context, b learningPathBuilder, req models.RoadmapRequest, roadmap *models.Roadmap, limit int) ([]models.LearningPath, error) {
	paths := make([]models.LearningPath, len(roadmap.Modules))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, m := range roadmap.Modules {
		g.Go(func() error {
			path, err := b.CreateLearningPath(gctx, models.ExpandRequestFor(req, m))
			if err != nil {
				return fmt.Errorf("module %q: %w", m.Subtopic, err)
			}
			paths[i] = *path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}
