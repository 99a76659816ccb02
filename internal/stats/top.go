package stats

import (
	"sort"

	"github.com/verte-zerg/intuit/internal/model"
)

// DefaultListSize is used when a list query asks for n <= 0 entries.
const DefaultListSize = 10

// TopEntries returns the n highest scoring entries. Ties keep their input
// order. n <= 0 means DefaultListSize.
func TopEntries(entries []model.HistoryEntry, n int) []model.HistoryEntry {
	if n <= 0 {
		n = DefaultListSize
	}
	sorted := cloneEntries(entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Stats.Score > sorted[j].Stats.Score
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// RecentEntries returns the last n entries, most recent first. n <= 0
// means DefaultListSize.
func RecentEntries(entries []model.HistoryEntry, n int) []model.HistoryEntry {
	if n <= 0 {
		n = DefaultListSize
	}
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]model.HistoryEntry, 0, n)
	for i := len(entries) - 1; i >= len(entries)-n; i-- {
		out = append(out, entries[i].Clone())
	}
	return out
}

func cloneEntries(entries []model.HistoryEntry) []model.HistoryEntry {
	out := make([]model.HistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}
