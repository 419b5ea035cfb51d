// Package jobs runs the periodic chain scans behind the leaderboard.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Refresher is anything that can pull new data on a schedule.
type Refresher interface {
	Refresh(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
}

func New() *Scheduler {
	l := log.Logger.With().Str("component", "cron").Logger()
	logger := cron.PrintfLogger(&l)
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		timeout: 2 * time.Minute,
	}
}

// Register runs r on spec (six fields, seconds first).
func (s *Scheduler) Register(ctx context.Context, name, spec string, r Refresher) error {
	_, err := s.cron.AddFunc(spec, func() { s.run(ctx, name, r) })
	if err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	return nil
}

func (s *Scheduler) run(ctx context.Context, name string, r Refresher) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	n, err := r.Refresh(ctx)
	if err != nil {
		log.Error().Err(err).Str("job", name).Msg("scheduled refresh failed")
		return
	}
	if n > 0 {
		log.Info().Str("job", name).Int("items", n).Dur("took", time.Since(start)).Msg("🔄 refreshed")
	}
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	log.Info().Int("jobs", len(s.cron.Entries())).Msg("⏰ scheduler started")
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return ctx.Err()
}
