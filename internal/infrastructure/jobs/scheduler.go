package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const sweepTimeout = 2 * time.Minute

// OrphanSweeper removes comments whose issue no longer exists.
type OrphanSweeper interface {
	DeleteOrphans(ctx context.Context) (int64, error)
}

// Scheduler runs periodic maintenance jobs.
type Scheduler struct {
	cron     *cron.Cron
	sweeper  OrphanSweeper
	schedule string
	log      zerolog.Logger
}

// NewScheduler creates a scheduler that runs the orphan-comment sweep on
// schedule (standard cron syntax or a descriptor such as "@every 1h").
func NewScheduler(sweeper OrphanSweeper, schedule string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		sweeper:  sweeper,
		schedule: schedule,
		log:      log,
	}
}

// Start registers the jobs and starts the cron loop. An empty schedule
// disables the sweep.
func (s *Scheduler) Start() error {
	if s.schedule == "" {
		s.log.Info().Msg("orphan comment sweep disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.schedule, s.sweepOrphans); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running job to finish, up to ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) sweepOrphans() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	removed, err := s.sweeper.DeleteOrphans(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("orphan comment sweep failed")
		return
	}
	if removed > 0 {
		orphanCommentsSweptTotal.Add(float64(removed))
		s.log.Info().Int64("removed", removed).Msg("orphan comments swept")
	}
}
