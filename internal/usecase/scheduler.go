package usecase

import (
	"context"
	"log/slog"
	"time"

	"listradar/internal/ports"
)

// Scheduler wires the cron driver with recurring pipeline runs.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	dryRun   bool
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring radar runs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, dryRun bool, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, dryRun: dryRun, logger: logger}
}

// Start registers the pipeline with the provided scheduler. Each triggered
// run is independent: a failed run is logged, never retried, and does not
// stop the schedule.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		result, err := s.pipeline.Run(ctx, s.dryRun)
		if err != nil {
			if s.logger != nil {
				s.logger.Error("scheduled run failed", "trigger", trigger, "error", err)
			}
			return
		}
		if s.logger != nil {
			s.logger.Info("scheduled run finished",
				"trigger", trigger,
				"found", result.CandidatesFound,
				"filtered", result.CandidatesFiltered,
				"created", result.IssuesCreated)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}
