package compliance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Runner executes one scheduled compliance run.
type Runner interface {
	RunScheduledCheck(ctx context.Context) error
}

// Scheduler fires compliance runs on a cron schedule. Expressions use the
// standard 5-field format: minute hour day-of-month month day-of-week
// (e.g. "0 6 * * 1" for 06:00 every Monday).
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
}

// NewScheduler creates a scheduler backed by the given runner.
func NewScheduler(runner Runner) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		runner: runner,
	}
}

// RegisterSchedule adds one cron entry for a compliance run.
func (s *Scheduler) RegisterSchedule(expr string) error {
	_, err := s.cron.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		log.Info().Str("schedule", expr).Msg("scheduled compliance run started")
		if err := s.runner.RunScheduledCheck(ctx); err != nil {
			log.Error().Err(err).Msg("scheduled compliance run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("registering compliance schedule %q: %w", expr, err)
	}
	return nil
}

// Start begins executing registered schedules.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running check to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Entries returns the number of registered schedules.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
