package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learnflow-backend/internal/app"
	"learnflow-backend/internal/config"
	"learnflow-backend/internal/logger"
	"learnflow-backend/internal/observability"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	log, err := logger.New(cfg.Env, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Logger initialization failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("🚀 Starting LearnFlow Backend...")
	log.Info("✓ Environment variables loaded", "env", cfg.Env, "provider", cfg.LLMProvider)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ──── Step 2: Initialize Tracing ────
	shutdownTracing := observability.InitTracing(ctx, log, app.TracingConfig(cfg, "learnflow-backend"))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Warn("tracer shutdown incomplete", "error", err)
		}
	}()

	// ──── Step 3: Initialize Model Provider, Redis and Pipelines ────
	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal("✗ Initialization failed", "error", err)
	}
	defer a.Close()
	log.Info("✓ Pipelines initialized", "concurrent_requests", cfg.LLMConcurrentReqs)

	// ──── Step 4: Start HTTP Server ────
	if err := a.Serve(ctx); err != nil {
		log.Error("Server error", "error", err)
	}
}
