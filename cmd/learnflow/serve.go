package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"learnflow-backend/internal/app"
	"learnflow-backend/internal/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		shutdownTracing := observability.InitTracing(ctx, a.Log, app.TracingConfig(a.Config, "learnflow-backend"))
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdownTracing(ctx)
		}()

		return a.Serve(ctx)
	},
}
