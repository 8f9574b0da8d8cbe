// Package main creates a development database with empty raw tables.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/edgard/consolidator/internal/app"
	"github.com/edgard/consolidator/internal/config"
	"github.com/edgard/consolidator/internal/logger"
)

func main() {
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	cfg, err := config.Load(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	log := logger.New(os.Stdout, cfg.Log.Level, cfg.Log.Format == "json")
	slog.SetDefault(log)

	if err := app.Bootstrap(ctx, cfg, log); err != nil {
		log.Error("Bootstrap failed", "path", cfg.Database.Path, "error", err)
		return 1
	}
	log.Info("Database ready", "path", cfg.Database.Path)
	return 0
}
