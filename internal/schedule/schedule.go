// Package schedule provides cancellable delayed callbacks.
package schedule

import (
	"sort"
	"sync"
	"time"
)

// Task is a pending callback.
type Task interface {
	// Stop cancels the task. It reports false when the task already ran or
	// was stopped before.
	Stop() bool
}

// Scheduler runs fn once after d.
type Scheduler interface {
	After(d time.Duration, fn func()) Task
}

// Timers schedules callbacks with time.AfterFunc. Callbacks run on their
// own goroutine.
type Timers struct{}

// After implements Scheduler.
func (Timers) After(d time.Duration, fn func()) Task {
	return timerTask{timer: time.AfterFunc(d, fn)}
}

type timerTask struct {
	timer *time.Timer
}

func (t timerTask) Stop() bool {
	return t.timer.Stop()
}

// Slot holds at most one pending task for a single concern. Scheduling a
// new task cancels the previous one. A Slot is not safe for concurrent use;
// its owner serializes access.
type Slot struct {
	sched  Scheduler
	task   Task
	seq    uint64
	active uint64
}

// NewSlot returns an empty slot backed by sched.
func NewSlot(sched Scheduler) *Slot {
	return &Slot{sched: sched}
}

// Schedule cancels any pending task and arranges for fn to be called with
// the new task's token after d. The callback should pass the token to Claim
// before touching state.
func (s *Slot) Schedule(d time.Duration, fn func(token uint64)) uint64 {
	s.Cancel()
	s.seq++
	token := s.seq
	s.active = token
	s.task = s.sched.After(d, func() { fn(token) })
	return token
}

// Claim reports whether token belongs to the pending task and, if so,
// marks the slot empty. Stale tokens from cancelled tasks return false.
func (s *Slot) Claim(token uint64) bool {
	if token == 0 || token != s.active {
		return false
	}
	s.active = 0
	s.task = nil
	return true
}

// Cancel stops the pending task, if any. Its token becomes stale even when
// the scheduler could no longer stop it.
func (s *Slot) Cancel() {
	if s.task != nil {
		s.task.Stop()
	}
	s.task = nil
	s.active = 0
}

// Pending reports whether a task is scheduled and not yet claimed.
func (s *Slot) Pending() bool {
	return s.active != 0
}

// Manual is a Scheduler driven by an explicit clock, for tests and
// deterministic replays.
type Manual struct {
	mu    sync.Mutex
	now   time.Time
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	m       *Manual
	due     time.Time
	order   int
	fn      func()
	stopped bool
	fired   bool
}

// NewManual returns a Manual scheduler whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the manual clock.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// After implements Scheduler.
func (m *Manual) After(d time.Duration, fn func()) Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTask{m: m, due: m.now.Add(d), order: m.seq, fn: fn}
	m.tasks = append(m.tasks, t)
	return t
}

func (t *manualTask) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward by d and runs every task that became due,
// in due order. Tasks scheduled by callbacks run too if they fall inside
// the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()
	for {
		m.mu.Lock()
		next := m.nextDueLocked(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		next.fired = true
		if next.due.After(m.now) {
			m.now = next.due
		}
		fn := next.fn
		m.mu.Unlock()
		fn()
	}
}

func (m *Manual) nextDueLocked(target time.Time) *manualTask {
	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	m.tasks = live
	sort.SliceStable(m.tasks, func(i, j int) bool {
		if m.tasks[i].due.Equal(m.tasks[j].due) {
			return m.tasks[i].order < m.tasks[j].order
		}
		return m.tasks[i].due.Before(m.tasks[j].due)
	})
	if len(m.tasks) == 0 || m.tasks[0].due.After(target) {
		return nil
	}
	return m.tasks[0]
}

// Pending returns the number of tasks that are neither stopped nor fired.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, t := range m.tasks {
		if !t.stopped && !t.fired {
			count++
		}
	}
	return count
}
