package update

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DefaultPollInterval is how often the scheduler wakes to consult the throttle.
const DefaultPollInterval = time.Hour

// Checker runs one update check.
type Checker interface {
	Check(ctx context.Context, mode Mode) Outcome
}

// Scheduler runs a silent check at startup, then wakes every poll
// interval and checks again once the throttle says a check is due.
type Scheduler struct {
	throttle *Throttle
	checker  Checker
	poll     time.Duration
	log      *slog.Logger

	// sleep waits for d and reports false if ctx ended first.
	sleep func(ctx context.Context, d time.Duration) bool
}

// NewScheduler creates a scheduler. A non-positive poll uses DefaultPollInterval.
func NewScheduler(throttle *Throttle, checker Checker, poll time.Duration, logger *slog.Logger) *Scheduler {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		throttle: throttle,
		checker:  checker,
		poll:     poll,
		log:      logger.With("component", "update-scheduler"),
		sleep:    sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Run blocks until ctx ends. In the app that is process exit.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info("running update check on launch")
	s.check(ctx)

	for s.sleep(ctx, s.poll) {
		if !s.throttle.Due() {
			continue
		}
		s.log.Info("running scheduled update check", "interval", s.throttle.interval)
		s.check(ctx)
	}
}

func (s *Scheduler) check(ctx context.Context) {
	if err := s.throttle.Save(); err != nil {
		if errors.Is(err, ErrNoDataDir) {
			s.log.Warn("no app data directory, update checks are not throttled")
		} else {
			s.log.Warn("failed to save update check timestamp", "error", err)
		}
	}
	outcome := s.checker.Check(ctx, Silent)
	s.log.Debug("update check finished", "outcome", outcome)
}
