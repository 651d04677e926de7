package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"learnflow-backend/internal/app"
	"learnflow-backend/internal/config"
	"learnflow-backend/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:          "learnflow",
	Short:        "Turn learning material and topics into summaries, quizzes and roadmaps",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "Log debug output to stderr")

	rootCmd.AddCommand(simplifyCmd)
	rootCmd.AddCommand(roadmapCmd)
	rootCmd.AddCommand(expandCmd)
	rootCmd.AddCommand(serveCmd)
}

// buildApp loads configuration and wires the pipelines. Logs go to stderr so
// stdout carries only the JSON result.
func buildApp(cmd *cobra.Command) (*app.App, error) {
	cfg := config.Load()

	mode := "production"
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		mode = "development"
	}
	log, err := logger.NewStderr(mode, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a, err := app.Build(commandContext(cmd), cfg, log)
	if err != nil {
		return nil, fmt.Errorf("init pipelines: %w", err)
	}
	return a, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
