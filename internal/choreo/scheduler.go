// Package choreo schedules the narration and visibility changes that
// accompany the breathing sphere. All timers are one-shot callbacks polled
// from the frame loop, so every callback runs on the loop goroutine.
package choreo

import (
	"container/heap"
	"time"
)

// TimerID identifies an armed timer.
type TimerID uint64

type timer struct {
	id    TimerID
	at    time.Time
	fn    func()
	group *Group
	index int
}

type timerQueue []*timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].id < q[j].id
	}
	return q[i].at.Before(q[j].at)
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*timer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}

// Scheduler holds one-shot timers ordered by due time and arm order.
type Scheduler struct {
	clock  Clock
	nextID TimerID
	queue  timerQueue
	live   map[TimerID]*timer
}

// NewScheduler creates a scheduler reading time from clock.
func NewScheduler(clock Clock) *Scheduler {
	return &Scheduler{
		clock: clock,
		live:  make(map[TimerID]*timer),
	}
}

// Now returns the scheduler's current time.
func (s *Scheduler) Now() time.Time { return s.clock.Now() }

// At arms fn to run at the first Poll at or after at.
func (s *Scheduler) At(at time.Time, fn func()) TimerID {
	return s.arm(at, fn, nil)
}

// After arms fn to run d from now. Negative delays fire on the next Poll.
func (s *Scheduler) After(d time.Duration, fn func()) TimerID {
	if d < 0 {
		d = 0
	}
	return s.arm(s.clock.Now().Add(d), fn, nil)
}

func (s *Scheduler) arm(at time.Time, fn func(), g *Group) TimerID {
	s.nextID++
	t := &timer{id: s.nextID, at: at, fn: fn, group: g}
	heap.Push(&s.queue, t)
	s.live[t.id] = t
	if g != nil {
		g.ids[t.id] = struct{}{}
	}
	return t.id
}

// Cancel disarms a timer. It reports false when the timer already fired or
// was cancelled.
func (s *Scheduler) Cancel(id TimerID) bool {
	t, ok := s.live[id]
	if !ok {
		return false
	}
	heap.Remove(&s.queue, t.index)
	s.drop(t)
	return true
}

func (s *Scheduler) drop(t *timer) {
	delete(s.live, t.id)
	if t.group != nil {
		delete(t.group.ids, t.id)
	}
}

// Pending counts armed timers.
func (s *Scheduler) Pending() int { return len(s.live) }

// Poll fires every timer due at the current time, earliest first. Timers
// armed by a callback fire in the same poll when already due.
func (s *Scheduler) Poll() int {
	now := s.clock.Now()
	fired := 0
	for len(s.queue) > 0 && !s.queue[0].at.After(now) {
		t := heap.Pop(&s.queue).(*timer)
		s.drop(t)
		t.fn()
		fired++
	}
	return fired
}

// Group owns the timers of one run so they can be cancelled together.
type Group struct {
	s   *Scheduler
	ids map[TimerID]struct{}
}

// NewGroup creates an empty timer group.
func (s *Scheduler) NewGroup() *Group {
	return &Group{s: s, ids: make(map[TimerID]struct{})}
}

// Now returns the owning scheduler's time.
func (g *Group) Now() time.Time { return g.s.Now() }

// At arms fn in this group.
func (g *Group) At(at time.Time, fn func()) TimerID {
	return g.s.arm(at, fn, g)
}

// After arms fn in this group d from now.
func (g *Group) After(d time.Duration, fn func()) TimerID {
	if d < 0 {
		d = 0
	}
	return g.s.arm(g.s.Now().Add(d), fn, g)
}

// Armed counts the group's timers that have neither fired nor been
// cancelled.
func (g *Group) Armed() int { return len(g.ids) }

// Cancel disarms every timer of the group and returns how many were live.
func (g *Group) Cancel() int {
	n := 0
	for id := range g.ids {
		if g.s.Cancel(id) {
			n++
		}
	}
	clear(g.ids)
	return n
}
