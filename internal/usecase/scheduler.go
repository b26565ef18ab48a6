package usecase

import (
	"context"
	"time"

	"BatchIngest/internal/ports"
)

// Scheduler wires a ticking driver with recurring ingest runs.
type Scheduler struct {
	driver       ports.Scheduler
	orchestrator *Orchestrator
	sources      []Source
}

// NewScheduler returns a helper to start/stop recurring ingest jobs.
func NewScheduler(driver ports.Scheduler, orchestrator *Orchestrator, sources []Source) *Scheduler {
	return &Scheduler{driver: driver, orchestrator: orchestrator, sources: sources}
}

// Start registers the ingest run with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.orchestrator == nil {
		return nil
	}

	job := func(time.Time) {
		_, _ = s.orchestrator.Run(ctx, s.sources)
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
