package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// Refresher re-issues the most recent weather query.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler periodically refreshes the client's weather.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	interval  time.Duration
	timeout   time.Duration
	logger    zerolog.Logger
}

// New creates a new Scheduler. A zero timeout bounds each run by the interval.
func New(refresher Refresher, interval, timeout time.Duration, logger zerolog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	if timeout <= 0 {
		timeout = interval
	}
	return &Scheduler{
		scheduler: s,
		refresher: refresher,
		interval:  interval,
		timeout:   timeout,
		logger:    logger.With().Str("component", "scheduler").Logger(),
	}
}

// Start schedules the refresh job and starts the underlying scheduler. The first
// run happens one interval from now. A non-positive interval schedules nothing.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info().Msg("refresh interval not set; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.run)
	if err != nil {
		return err
	}

	s.logger.Info().Dur("interval", s.interval).Msg("refresh scheduled")
	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.logger.Debug().Msg("running refresh job")
	if err := s.refresher.Refresh(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("refresh failed")
		return
	}
	s.logger.Debug().Msg("refresh completed")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
