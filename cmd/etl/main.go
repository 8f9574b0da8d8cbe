// Package main rebuilds consolidated_messages and writes its CSV export and
// data-quality report.
package main

import (
	"context"
	"fmt"
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

// run loads configuration, sets up the log file and runs the pipeline. A
// failed pipeline run is logged and still exits 0.
func run(ctx context.Context) int {
	cfg, err := config.Load(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	logFile, err := logger.OpenFile(cfg.Log.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file %s: %v\n", cfg.Log.Path, err)
		return 1
	}
	defer logFile.Close()

	log := logger.New(logFile, cfg.Log.Level, cfg.Log.Format == "json")
	slog.SetDefault(log)
	log.Info("Logger initialized", "path", cfg.Log.Path, "level", cfg.Log.Level)

	a, err := app.New(cfg, log)
	if err != nil {
		log.Error("Failed to initialize application", "error", err)
		return 1
	}

	if err := a.Run(ctx); err != nil {
		log.Error("Application stopped due to error", "error", err)
	}
	return 0
}
