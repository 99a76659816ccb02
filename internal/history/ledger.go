// Package history keeps the ledger of completed games.
package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/intuit/internal/model"
	"github.com/verte-zerg/intuit/internal/stats"
)

// Persister stores the full ledger.
type Persister interface {
	// Save replaces the stored ledger with entries.
	Save(ctx context.Context, entries []model.HistoryEntry) error
	// Load returns the stored ledger. ok is false when nothing was ever
	// saved.
	Load(ctx context.Context) (entries []model.HistoryEntry, ok bool, err error)
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithPersister sets where the ledger is saved after every change.
func WithPersister(p Persister) Option {
	return func(l *Ledger) { l.persister = p }
}

// WithClock sets the time source for entry timestamps and period filters.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator sets the entry id source.
func WithIDGenerator(gen func() string) Option {
	return func(l *Ledger) { l.newID = gen }
}

// WithLogger sets the ledger logger.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// Ledger is an append-only list of completed games, oldest first.
type Ledger struct {
	mu        sync.RWMutex
	entries   []model.HistoryEntry
	persister Persister
	now       func() time.Time
	newID     func() string
	log       zerolog.Logger
}

// New returns an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		now:   time.Now,
		newID: uuid.NewString,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load replaces the in-memory ledger with the persisted one. A persister
// that never saved leaves the ledger empty.
func (l *Ledger) Load(ctx context.Context) error {
	if l.persister == nil {
		return nil
	}
	entries, ok, err := l.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
	if ok {
		for _, e := range entries {
			l.entries = append(l.entries, e.Clone())
		}
	}
	l.log.Debug().Int("entries", len(l.entries)).Bool("found", ok).Msg("history loaded")
	return nil
}

// Record appends a completed game. The entry stays in memory even when
// saving fails; the save error is returned.
func (l *Ledger) Record(ctx context.Context, gs model.GameStats) (model.HistoryEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := model.HistoryEntry{
		ID:        l.newID(),
		Timestamp: l.now(),
		Stats:     gs.Clone(),
	}
	l.entries = append(l.entries, entry)
	l.log.Info().Str("id", entry.ID).Int("score", gs.Score).Msg("game recorded")
	return entry.Clone(), l.saveLocked(ctx)
}

// Clear removes every entry.
func (l *Ledger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	l.log.Info().Msg("history cleared")
	return l.saveLocked(ctx)
}

func (l *Ledger) saveLocked(ctx context.Context) error {
	if l.persister == nil {
		return nil
	}
	if err := l.persister.Save(ctx, l.entries); err != nil {
		l.log.Error().Err(err).Msg("history save failed")
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}

// Entries returns a copy of every entry, oldest first.
func (l *Ledger) Entries() []model.HistoryEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneAll(l.entries)
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Recent returns the last n entries, most recent first. n <= 0 means 10.
func (l *Ledger) Recent(n int) []model.HistoryEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return stats.RecentEntries(l.entries, n)
}

// TopScores returns the n best games. Equal scores keep insertion order.
// n <= 0 means 10.
func (l *Ledger) TopScores(n int) []model.HistoryEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return stats.TopEntries(l.entries, n)
}

// ByID looks up an entry.
func (l *Ledger) ByID(id string) (model.HistoryEntry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, e := range l.entries {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return model.HistoryEntry{}, false
}

// FilterByPeriod returns the entries inside period, oldest first. Calendar
// days are taken in local time.
func (l *Ledger) FilterByPeriod(period model.Period) []model.HistoryEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return filter(l.entries, period, l.now())
}

// HasHistory reports whether period holds at least one entry.
func (l *Ledger) HasHistory(period model.Period) bool {
	return len(l.FilterByPeriod(period)) > 0
}

// Summary aggregates the entries inside period.
func (l *Ledger) Summary(period model.Period) model.Aggregate {
	return stats.Summarize(l.FilterByPeriod(period))
}

// ExportSnapshot captures the whole ledger with its aggregate.
func (l *Ledger) ExportSnapshot() Export {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Export{
		ExportDate: l.now(),
		History:    cloneAll(l.entries),
		Stats:      stats.Summarize(l.entries),
	}
}

func filter(entries []model.HistoryEntry, period model.Period, now time.Time) []model.HistoryEntry {
	today := startOfDay(now)
	var from time.Time
	switch period {
	case model.PeriodToday:
		from = today
	case model.PeriodWeek:
		from = today.AddDate(0, 0, -6)
	default:
		return cloneAll(entries)
	}
	to := today.AddDate(0, 0, 1)
	out := make([]model.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if !e.Timestamp.Before(from) && e.Timestamp.Before(to) {
			out = append(out, e.Clone())
		}
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	local := t.Local()
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func cloneAll(entries []model.HistoryEntry) []model.HistoryEntry {
	out := make([]model.HistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}
