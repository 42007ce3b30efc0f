package watcher

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper runs one sweep over all known instances.
type Sweeper interface {
	PollAll(ctx context.Context) error
}

// Scheduler drives periodic sweeps.
type Scheduler struct {
	sweeper  Sweeper
	interval time.Duration
	logger   *slog.Logger
}

func NewScheduler(sweeper Sweeper, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger.With(slog.String("component", "sweep-scheduler")),
	}
}

// Run sweeps every interval until ctx is cancelled. A sweep only starts
// polls, so a slow instance never delays the next tick.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Sweep scheduler started", slog.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweep scheduler stopped")
			return

		case <-ticker.C:
			if err := s.sweeper.PollAll(ctx); err != nil {
				s.logger.Warn("Sweep failed", slog.Any("err", err))
			}
		}
	}
}
