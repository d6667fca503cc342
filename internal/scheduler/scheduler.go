package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler runs the conversation store expiry sweep on a fixed interval.
// The sweep also runs inline on every webhook request, so this only matters
// for processes that sit idle with stale records.
type Scheduler struct {
	cron      *cron.Cron
	interval  time.Duration
	sweepFunc func() int
}

func New(interval time.Duration, sweepFunc func() int) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		interval:  interval,
		sweepFunc: sweepFunc,
	}
}

func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Info().Msg("background sweep disabled")
		return nil
	}
	spec := fmt.Sprintf("@every %s", s.interval)
	_, err := s.cron.AddFunc(spec, func() {
		if n := s.sweepFunc(); n > 0 {
			log.Info().Int("removed", n).Msg("swept expired conversations")
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Info().Dur("interval", s.interval).Msg("background sweep started")
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
}

func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
