package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"fx-dashboard/src/logger"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerTicksUntilStopped(t *testing.T) {
	var ticks atomic.Int32
	s := NewRefreshScheduler(time.Second, func() error {
		ticks.Add(1)
		return errors.New("controller busy")
	}, logger.NewNopLogger())

	assert.True(t, s.Next().IsZero())

	s.Start()
	s.Start()
	assert.False(t, s.Next().IsZero())

	assert.Eventually(t, func() bool { return ticks.Load() >= 2 }, 5*time.Second, 50*time.Millisecond)

	s.Stop()
	stoppedAt := ticks.Load()
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, stoppedAt, ticks.Load())

	// second Stop is harmless
	s.Stop()
}

func TestSchedulerDefaultPeriod(t *testing.T) {
	s := NewRefreshScheduler(0, func() error { return nil }, logger.NewNopLogger())
	assert.Equal(t, 60*time.Second, s.period)
}
