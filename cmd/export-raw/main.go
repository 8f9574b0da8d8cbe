// Package main exports every raw source table to its own CSV file.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/edgard/consolidator/internal/app"
	"github.com/edgard/consolidator/internal/config"
	"github.com/edgard/consolidator/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

func run(ctx context.Context) int {
	cfg, err := config.Load(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	log := logger.New(os.Stdout, cfg.Log.Level, cfg.Log.Format == "json")
	slog.SetDefault(log)

	summary, err := app.ExportRaw(ctx, cfg, log)
	if err != nil {
		log.Error("Raw table export failed", "error", err)
		return 0
	}

	log.Info("Raw table export finished",
		"dir", cfg.Output.RawDir,
		"tables", len(summary.Results),
		"failed", len(summary.Failed()))
	return 0
}
