package stats

import (
	"math"

	"github.com/verte-zerg/intuit/internal/model"
)

// DurationPoint is one game's duration placed on the score scale.
type DurationPoint struct {
	// Game is the 1-based position of the entry in the input.
	Game       int
	Seconds    float64
	Normalized float64
}

// Trend is a least-squares line over points (x, values[x-1]).
type Trend struct {
	Slope     float64
	Intercept float64
	StartX    float64
	StartY    float64
	EndX      float64
	EndY      float64
}

// At evaluates the line at x.
func (t Trend) At(x float64) float64 {
	return t.Intercept + t.Slope*x
}

// ScoreSeries returns the score of every entry in order.
func ScoreSeries(entries []model.HistoryEntry) []float64 {
	out := make([]float64, len(entries))
	for i, e := range entries {
		out[i] = float64(e.Stats.Score)
	}
	return out
}

// DurationSeries returns game durations, in seconds, for the entries that
// have one. Durations are normalized to the 0..24 score scale; when all
// durations are equal they sit at 12.
func DurationSeries(entries []model.HistoryEntry) []DurationPoint {
	var points []DurationPoint
	minSec, maxSec := math.Inf(1), math.Inf(-1)
	for i, e := range entries {
		if e.Stats.TotalGameTimeMs == nil {
			continue
		}
		sec := round2(float64(*e.Stats.TotalGameTimeMs) / 1000)
		minSec = math.Min(minSec, sec)
		maxSec = math.Max(maxSec, sec)
		points = append(points, DurationPoint{Game: i + 1, Seconds: sec})
	}
	scale := float64(model.TotalTurns)
	for i := range points {
		if maxSec > minSec {
			points[i].Normalized = (points[i].Seconds - minSec) / (maxSec - minSec) * scale
		} else {
			points[i].Normalized = scale / 2
		}
	}
	return points
}

// TrendLine fits a least-squares line through the values, with x running
// from 1. It returns nil for fewer than two values.
func TrendLine(values []float64) *Trend {
	n := float64(len(values))
	if len(values) < 2 {
		return nil
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i + 1)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	slope := (n*sumXY - sumX*sumY) / (n*sumXX - sumX*sumX)
	t := Trend{Slope: slope, Intercept: (sumY - slope*sumX) / n, StartX: 1, EndX: n}
	t.StartY = t.At(t.StartX)
	t.EndY = t.At(t.EndX)
	return &t
}

// TrendValues evaluates the trend line at every x of values.
func TrendValues(values []float64) []float64 {
	t := TrendLine(values)
	if t == nil {
		return nil
	}
	out := make([]float64, len(values))
	for i := range out {
		out[i] = t.At(float64(i + 1))
	}
	return out
}

// ScoreDistribution counts games per score. Index i holds the number of
// games that scored i; scores outside 0..24 are ignored.
func ScoreDistribution(entries []model.HistoryEntry) []int {
	counts := make([]int, model.TotalTurns+1)
	for _, e := range entries {
		if e.Stats.Score < 0 || e.Stats.Score > model.TotalTurns {
			continue
		}
		counts[e.Stats.Score]++
	}
	return counts
}
