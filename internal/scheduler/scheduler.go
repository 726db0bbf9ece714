package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Job is a unit of scheduled work
type Job interface {
	Run(ctx context.Context) error
}

// Scheduler runs the weekly update on a cron schedule
type Scheduler struct {
	spec string
	job  Job
	cron *cron.Cron

	// running guards against overlapping runs when an update outlasts its interval
	running sync.Mutex

	mu      sync.Mutex
	stopped bool
	runs    sync.WaitGroup
}

// NewScheduler creates a new scheduler instance
func NewScheduler(spec string, job Job) *Scheduler {
	return &Scheduler{
		spec: spec,
		job:  job,
		cron: cron.New(),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.spec, func() {
		s.RunNow(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule weekly update: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.spec).
		Msg("Weekly update scheduled")

	return nil
}

// RunNow runs the job once unless a run is already in progress
func (s *Scheduler) RunNow(ctx context.Context) bool {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		log.Warn().Msg("Scheduler stopped, skipping update")
		return false
	}
	s.runs.Add(1)
	s.mu.Unlock()
	defer s.runs.Done()

	if !s.running.TryLock() {
		log.Warn().Msg("Previous update still running, skipping")
		return false
	}
	defer s.running.Unlock()

	log.Info().Msg("Running weekly update...")
	if err := s.job.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Weekly update failed")
	}
	return true
}

// Stop stops the scheduler and waits for running updates to finish,
// including ones started with RunNow
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		<-s.cron.Stop().Done()
	}

	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.runs.Wait()

	log.Info().Msg("Scheduler stopped")
}
