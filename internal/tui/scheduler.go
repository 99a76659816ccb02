package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/intuit/internal/schedule"
)

type timerMsg struct {
	id uint64
}

// loopScheduler runs delayed callbacks on the Bubble Tea event loop. After
// queues a tick command; the model drains queued commands after every
// update and fires the callback when the tick message comes back, so all
// engine calls happen on the loop goroutine.
type loopScheduler struct {
	seq    uint64
	tasks  map[uint64]func()
	queued []tea.Cmd
}

func newLoopScheduler() *loopScheduler {
	return &loopScheduler{tasks: map[uint64]func(){}}
}

// After implements schedule.Scheduler.
func (s *loopScheduler) After(d time.Duration, fn func()) schedule.Task {
	s.seq++
	id := s.seq
	s.tasks[id] = fn
	s.queued = append(s.queued, tea.Tick(d, func(time.Time) tea.Msg {
		return timerMsg{id: id}
	}))
	return loopTask{s: s, id: id}
}

type loopTask struct {
	s  *loopScheduler
	id uint64
}

func (t loopTask) Stop() bool {
	if _, ok := t.s.tasks[t.id]; !ok {
		return false
	}
	delete(t.s.tasks, t.id)
	return true
}

// fire runs the callback for id unless it was stopped.
func (s *loopScheduler) fire(id uint64) bool {
	fn, ok := s.tasks[id]
	if !ok {
		return false
	}
	delete(s.tasks, id)
	fn()
	return true
}

func (s *loopScheduler) drain() tea.Cmd {
	if len(s.queued) == 0 {
		return nil
	}
	cmds := s.queued
	s.queued = nil
	return tea.Batch(cmds...)
}

func (s *loopScheduler) pending() int {
	return len(s.tasks)
}
