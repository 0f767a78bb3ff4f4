package scheduler

import (
	"sync"
	"time"

	"fx-dashboard/src/logger"
	"fx-dashboard/src/utils"

	"github.com/robfig/cron/v3"
)

// -----------------------------------------------------------------------------
// RefreshScheduler fires one recurring tick on a fixed period.
//
// Ticks are neither coalesced nor queued: cron starts every job run on its own
// goroutine, so a slow tick can overlap the next one.
// -----------------------------------------------------------------------------

type RefreshScheduler struct {
	period time.Duration
	tick   func() error
	logger *logger.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
}

// -----------------------------------------------------------------------------

// NewRefreshScheduler builds a stopped scheduler. Periods are whole seconds,
// at least one.
func NewRefreshScheduler(period time.Duration, tick func() error, log *logger.Logger) *RefreshScheduler {
	if period <= 0 {
		period = utils.DefaultRefreshInterval
	}
	return &RefreshScheduler{period: period, tick: tick, logger: log}
}

// -----------------------------------------------------------------------------

// Start begins ticking. Calling Start on a running scheduler is a no-op.
func (s *RefreshScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return
	}

	s.cron = cron.New()
	s.entryID = s.cron.Schedule(cron.Every(s.period), cron.FuncJob(s.fire))
	s.cron.Start()

	s.logger.Info("Refresh scheduler started (every %s)", s.period)
}

// -----------------------------------------------------------------------------

// Stop halts ticking and waits for running ticks to return.
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return
	}

	<-c.Stop().Done()
	s.logger.Info("Refresh scheduler stopped")
}

// -----------------------------------------------------------------------------

// Next returns when the next tick is due; zero when stopped.
func (s *RefreshScheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// -----------------------------------------------------------------------------

func (s *RefreshScheduler) fire() {
	if err := s.tick(); err != nil {
		s.logger.Warning("Refresh tick failed: %v", err)
	}
}
