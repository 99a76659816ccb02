package stats

import (
	"github.com/verte-zerg/intuit/internal/model"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Entries      []model.HistoryEntry
	Aggregate    model.Aggregate
	Scores       []float64
	Durations    []DurationPoint
	Trend        *Trend
	Distribution []int
	Top          []model.HistoryEntry
	Recent       []model.HistoryEntry
}

// BuildReport prepares everything the stats views render from one set of
// entries. last > 0 keeps only the most recent games for the curves.
func BuildReport(entries []model.HistoryEntry, last int) Report {
	curve := entries
	if last > 0 && len(curve) > last {
		curve = curve[len(curve)-last:]
	}
	scores := ScoreSeries(curve)
	return Report{
		Entries:      cloneEntries(entries),
		Aggregate:    Summarize(entries),
		Scores:       scores,
		Durations:    DurationSeries(curve),
		Trend:        TrendLine(scores),
		Distribution: ScoreDistribution(entries),
		Top:          TopEntries(entries, DefaultListSize),
		Recent:       RecentEntries(entries, len(entries)),
	}
}
