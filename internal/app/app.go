// Package app wires configuration, logging and the pipeline together for
// the command-line entry points.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/edgard/consolidator/internal/config"
	"github.com/edgard/consolidator/internal/database"
	"github.com/edgard/consolidator/internal/export"
	"github.com/edgard/consolidator/internal/pipeline"
	"github.com/edgard/consolidator/internal/scheduler"
	"github.com/edgard/consolidator/internal/scripts"
)

// App owns one configured pipeline.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	pipeline *pipeline.Pipeline
}

// New loads the configured scripts and builds the pipeline.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	set, err := scripts.LoadSet(cfg.Scripts.SchemaPath, cfg.Scripts.LoadPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load scripts: %w", err)
	}
	logger.Debug("Scripts loaded",
		"schema", set.Schema.Name, "schema_statements", len(set.Schema.Statements),
		"load", set.Load.Name, "load_statements", len(set.Load.Statements))

	p := pipeline.New(pipeline.Options{
		DBPath:        cfg.Database.Path,
		Scripts:       set,
		Consolidated:  cfg.Tables.Consolidated,
		ManagedTables: cfg.Tables.Managed,
		CSVPath:       cfg.CSVPath(),
		ReportPath:    cfg.ReportPath(),
	}, logger)

	return &App{cfg: cfg, logger: logger.With("component", "app"), pipeline: p}, nil
}

// RunOnce executes a single pipeline run.
func (a *App) RunOnce(ctx context.Context) pipeline.Result {
	return a.pipeline.Run(ctx)
}

// Run executes the pipeline once, or on every tick of the configured cron
// schedule until ctx is cancelled. Pipeline failures are logged by the
// pipeline and do not end Run; only scheduler errors are returned.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.Schedule.Cron == "" {
		a.RunOnce(ctx)
		return nil
	}

	sched, err := scheduler.New(a.logger, "consolidate",
		scheduler.Cron(a.cfg.Schedule.Cron, a.cfg.Schedule.WithSeconds),
		func(ctx context.Context) error { return a.RunOnce(ctx).Err })
	if err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := sched.Start(gCtx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		a.logger.Info("Waiting for scheduled runs", "cron", a.cfg.Schedule.Cron)

		<-gCtx.Done()
		a.logger.Info("Shutdown signal received, stopping scheduler...")
		if err := sched.Stop(); err != nil {
			a.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// ExportRaw writes every configured raw table to the raw output directory.
// Per-table failures are part of the summary, not the returned error.
func ExportRaw(ctx context.Context, cfg *config.Config, logger *slog.Logger) (export.Summary, error) {
	db, err := database.Open(ctx, cfg.Database.Path)
	if err != nil {
		return export.Summary{}, err
	}
	logger.Info("Connected to database", "path", cfg.Database.Path)
	defer database.Close(db, logger)

	return export.ExportTables(ctx, db, cfg.Output.RawDir, cfg.Tables.Raw, logger)
}

// ListTables returns the tables of the configured database.
func ListTables(ctx context.Context, cfg *config.Config) ([]string, error) {
	db, err := database.OpenReadOnly(ctx, cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return database.ListTables(ctx, db)
}

// Bootstrap creates the database file and the raw tables if missing.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if err := database.EnsureDir(cfg.Database.Path); err != nil {
		return err
	}
	db, err := database.Open(ctx, cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close(db, logger)

	return database.ApplyMigrations(db.DB, logger)
}
