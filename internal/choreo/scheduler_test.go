package choreo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

// step advances the clock in frame-sized increments, polling after each one
// the way the frame loop does.
func step(clock *ManualClock, sched *Scheduler, d time.Duration) {
	const frame = 10 * time.Millisecond
	for d > 0 {
		inc := min(frame, d)
		clock.Advance(inc)
		sched.Poll()
		d -= inc
	}
}

func TestSchedulerFiresInOrder(t *testing.T) {
	clock := NewManualClock(epoch)
	s := NewScheduler(clock)

	var got []string
	s.After(300*time.Millisecond, func() { got = append(got, "c") })
	s.After(100*time.Millisecond, func() { got = append(got, "a") })
	s.After(100*time.Millisecond, func() { got = append(got, "b") })
	require.Equal(t, 3, s.Pending())

	clock.Advance(99 * time.Millisecond)
	assert.Equal(t, 0, s.Poll())

	clock.Advance(time.Second)
	assert.Equal(t, 3, s.Poll())
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 0, s.Pending())
}

func TestSchedulerChainsDueTimersInOnePoll(t *testing.T) {
	clock := NewManualClock(epoch)
	s := NewScheduler(clock)

	fired := 0
	s.After(0, func() {
		fired++
		s.After(-time.Second, func() { fired++ })
	})
	assert.Equal(t, 2, s.Poll())
	assert.Equal(t, 2, fired)
}

func TestSchedulerCancel(t *testing.T) {
	clock := NewManualClock(epoch)
	s := NewScheduler(clock)

	fired := false
	id := s.After(time.Second, func() { fired = true })
	assert.True(t, s.Cancel(id))
	assert.False(t, s.Cancel(id))

	clock.Advance(2 * time.Second)
	s.Poll()
	assert.False(t, fired)
}

func TestGroupCancelClearsOnlyItsTimers(t *testing.T) {
	clock := NewManualClock(epoch)
	s := NewScheduler(clock)
	run := s.NewGroup()
	other := s.NewGroup()

	runFired, otherFired := 0, 0
	for i := 1; i <= 4; i++ {
		run.After(time.Duration(i)*time.Second, func() { runFired++ })
	}
	other.After(time.Second, func() { otherFired++ })

	step(clock, s, 1500*time.Millisecond)
	assert.Equal(t, 1, runFired)
	assert.Equal(t, 3, run.Armed())

	assert.Equal(t, 3, run.Cancel())
	assert.Equal(t, 0, run.Armed())
	assert.Equal(t, 0, s.Pending())

	step(clock, s, 5*time.Second)
	assert.Equal(t, 1, runFired)
	assert.Equal(t, 1, otherFired)
}
