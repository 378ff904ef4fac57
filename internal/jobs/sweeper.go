package jobs

import (
	"context"
	"fmt"
	"time"

	"master-or-disaster/internal/config"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// SessionSweeper evicts idle sessions.
type SessionSweeper interface {
	SweepIdle(maxIdle time.Duration) int
}

type Scheduler struct {
	sched  gocron.Scheduler
	logger zerolog.Logger
}

// NewScheduler registers the idle-session sweep and ties the scheduler to the
// application lifecycle.
func NewScheduler(lc fx.Lifecycle, cfg *config.Config, sweeper SessionSweeper, logger zerolog.Logger) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	s := &Scheduler{sched: sched, logger: logger}
	if err := s.AddSessionSweep(cfg.SessionSweepEvery, cfg.SessionIdleTTL, sweeper); err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.sched.Start()
			logger.Info().Dur("every", cfg.SessionSweepEvery).Dur("idle_ttl", cfg.SessionIdleTTL).Msg("session sweeper started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return s.sched.Shutdown()
		},
	})
	return s, nil
}

func (s *Scheduler) AddSessionSweep(every, maxIdle time.Duration, sweeper SessionSweeper) error {
	_, err := s.sched.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() {
			if n := sweeper.SweepIdle(maxIdle); n > 0 {
				s.logger.Info().Int("evicted", n).Msg("evicted idle common match sessions")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}
	return nil
}
