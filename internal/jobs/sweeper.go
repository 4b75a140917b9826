package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/you/voicegate/domain"
)

// Sweeper periodically purges orphaned refresh-index entries. Redis TTLs
// handle the bulk of expiry; the sweep covers records left behind by a
// crash between pipeline steps.
type Sweeper struct {
	cron     *cron.Cron
	sessions domain.SessionRepository
	log      zerolog.Logger
}

// NewSweeper creates a new sweeper
func NewSweeper(sessions domain.SessionRepository, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		cron:     cron.New(),
		sessions: sessions,
		log:      log.With().Str("component", "sweeper").Logger(),
	}
}

// Start schedules the hourly sweep.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc("@hourly", s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the schedule, waiting briefly for a running sweep.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	purged, err := s.sessions.PurgeOrphans(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("session sweep failed")
		return
	}
	if purged > 0 {
		s.log.Info().Int("purged", purged).Msg("purged orphaned refresh entries")
	}
}
