// Package scheduler re-runs a job on a schedule using gocron.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// JobFunc is the work run on every tick. Its error is logged, not fatal.
type JobFunc func(ctx context.Context) error

// Cron returns a job definition for a cron expression. withSeconds enables
// the optional leading seconds field.
func Cron(expr string, withSeconds bool) gocron.JobDefinition {
	return gocron.CronJob(expr, withSeconds)
}

// Scheduler runs a single named job. Runs never overlap: a tick that fires
// while the previous run is still going is rescheduled.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	name      string
	def       gocron.JobDefinition
	job       JobFunc
	mu        sync.Mutex
	running   bool
}

// New creates a scheduler for job. It does not start ticking until Start.
func New(logger *slog.Logger, name string, def gocron.JobDefinition, job JobFunc) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if job == nil {
		return nil, fmt.Errorf("scheduler: job must not be nil")
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		logger:    logger.With("component", "scheduler"),
		name:      name,
		def:       def,
		job:       job,
	}, nil
}

// Start registers the job and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	_, err := s.scheduler.NewJob(
		s.def,
		gocron.NewTask(func(name string) {
			s.logger.Info("Running scheduled job", "job", name)
			startTime := time.Now()
			if err := s.job(ctx); err != nil {
				s.logger.Error("Scheduled job failed", "job", name, "error", err)
			}
			s.logger.Info("Finished scheduled job", "job", name, "duration", time.Since(startTime))
		}, s.name),
		gocron.WithName(s.name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", s.name, err)
	}

	s.scheduler.Start()
	s.running = true
	s.logger.Info("Scheduler started", "job", s.name)
	return nil
}

// Stop shuts the scheduler down, waiting for a running job to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		s.logger.Info("Scheduler is not running, nothing to stop.")
		return nil
	}

	s.logger.Debug("Stopping scheduler gracefully (waiting for jobs)...")
	err := s.scheduler.Shutdown()
	if err != nil {
		s.logger.Error("Error during scheduler shutdown", "error", err)
	} else {
		s.logger.Info("Scheduler stopped gracefully.")
	}

	s.running = false
	return err
}
