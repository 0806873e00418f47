// Package scheduler drives periodic distribution runs.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/The-Last-Byte-Bar/Token-Flight/internal/service"
)

// Runner is the job a Scheduler executes.
type Runner interface {
	Run(ctx context.Context, opts service.Options) (service.Result, error)
}

// Scheduler runs the distribution job at a fixed interval. Runs are strictly
// sequential: the next tick is not serviced until the previous run returns,
// which guarantees at most one run in flight against the wallet history.
type Scheduler struct {
	log      *slog.Logger
	runner   Runner
	interval time.Duration
}

// New creates a Scheduler.
func New(runner Runner, interval time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{
		log:      log,
		runner:   runner,
		interval: interval,
	}
}

// Run executes the job immediately and then on every interval tick until the
// context is cancelled. A failed run is logged and retried on the next tick;
// the loop itself only stops with the context.
func (s *Scheduler) Run(ctx context.Context, opts service.Options) error {
	s.log.Info("Scheduler started", "interval", s.interval)

	s.runOnce(ctx, opts)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx, opts)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, opts service.Options) {
	res, err := s.runner.Run(ctx, opts)
	if err != nil {
		s.log.Error("Distribution run failed", "error", err)
		return
	}
	s.log.Info("Distribution run finished", "status", res.Status)
}
