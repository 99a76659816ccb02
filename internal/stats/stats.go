// Package stats contains history aggregation and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/intuit/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summarize derives the aggregate metrics for a sequence of entries. An
// empty sequence yields the zero Aggregate.
func Summarize(entries []model.HistoryEntry) model.Aggregate {
	if len(entries) == 0 {
		return model.Aggregate{}
	}
	scores := make([]int, len(entries))
	best := entries[0].Stats.Score
	sum := 0
	var gameSum, turnSum float64
	var gameCount, turnCount int
	for i, e := range entries {
		scores[i] = e.Stats.Score
		sum += e.Stats.Score
		if e.Stats.Score > best {
			best = e.Stats.Score
		}
		if e.Stats.TotalGameTimeMs != nil {
			gameSum += float64(*e.Stats.TotalGameTimeMs)
			gameCount++
		}
		if e.Stats.AvgTurnTimeMs != nil {
			turnSum += *e.Stats.AvgTurnTimeMs
			turnCount++
		}
	}
	agg := model.Aggregate{
		TotalGames:   len(entries),
		BestScore:    best,
		AverageScore: round2(float64(sum) / float64(len(entries))),
		MedianScore:  Median(scores),
	}
	if gameCount > 0 {
		agg.AverageGameDurationSec = round2(gameSum / float64(gameCount) / 1000)
	}
	if turnCount > 0 {
		agg.AverageTurnDurationSec = round2(turnSum / float64(turnCount) / 1000)
	}
	return agg
}

// Median returns the middle score, or the mean of the two middle scores
// for an even count. The input is not modified.
func Median(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	sorted := append([]int(nil), scores...)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline on a fixed 0..max scale.
func Sparkline(values []float64, max float64) string {
	if len(values) == 0 {
		return ""
	}
	if max <= 0 {
		return strings.Repeat(string(sparkChars[0]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round(v / max * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints the metric cards for an aggregate.
func RenderSummary(w io.Writer, agg model.Aggregate) error {
	if agg.TotalGames == 0 {
		_, err := fmt.Fprintln(w, "No games found.")
		return err
	}
	lines := []string{
		"Statistics",
		fmt.Sprintf("Games Played: %d", agg.TotalGames),
		fmt.Sprintf("Best Score: %d", agg.BestScore),
		fmt.Sprintf("Average Score: %.2f", agg.AverageScore),
		fmt.Sprintf("Median Score: %s", formatScore(agg.MedianScore)),
	}
	if agg.AverageGameDurationSec > 0 {
		lines = append(lines,
			"",
			"Timing",
			fmt.Sprintf("Avg Game Time: %.2fs", agg.AverageGameDurationSec),
			fmt.Sprintf("Avg Turn Time: %.2fs", agg.AverageTurnDurationSec),
		)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCurves prints score and duration curves with their trend lines.
func RenderCurves(w io.Writer, entries []model.HistoryEntry, window int) error {
	return RenderCurvesWithSize(w, entries, window, 0, 10, false)
}

// RenderCurvesWithSize prints the score curves sized to a given total width.
func RenderCurvesWithSize(w io.Writer, entries []model.HistoryEntry, window, totalWidth, height int, useColor bool) error {
	if len(entries) == 0 {
		return nil
	}
	scores := MovingAverage(ScoreSeries(entries), window)
	series := []Series{{Name: "Score", Values: scores}}
	if trend := TrendValues(scores); trend != nil {
		series = append(series, Series{Name: "Trend", Values: trend})
	}
	// Durations share the x axis only when every game carries one.
	if points := DurationSeries(entries); len(points) == len(entries) {
		values := make([]float64, len(points))
		for i, p := range points {
			values[i] = p.Normalized
		}
		series = append(series, Series{Name: "Duration", Values: values})
	}

	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return Plot(w, "Score History", series, PlotOptions{
		Width:  width,
		Height: height,
		Min:    0,
		Max:    model.TotalTurns,
		Color:  useColor,
	})
}

// RenderHistoryTable prints one row per entry, newest first as given.
func RenderHistoryTable(w io.Writer, entries []model.HistoryEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No games found.")
		return err
	}
	headers := []string{"Date", "Score", "Correct", "Incorrect", "Passes", "Game Time", "Turn Time"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, HistoryRow(e))
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// HistoryRow formats an entry as table cells.
func HistoryRow(e model.HistoryEntry) []string {
	gameTime := "-"
	if e.Stats.TotalGameTimeMs != nil {
		gameTime = fmt.Sprintf("%.1fs", float64(*e.Stats.TotalGameTimeMs)/1000)
	}
	turnTime := "-"
	if e.Stats.AvgTurnTimeMs != nil {
		turnTime = fmt.Sprintf("%.2fs", *e.Stats.AvgTurnTimeMs/1000)
	}
	return []string{
		e.Timestamp.Local().Format("2006-01-02 15:04"),
		fmt.Sprintf("%d/%d", e.Stats.Score, model.TotalTurns),
		fmt.Sprintf("%d", e.Stats.CorrectGuesses),
		fmt.Sprintf("%d", e.Stats.IncorrectGuesses),
		fmt.Sprintf("%d", e.Stats.Passes),
		gameTime,
		turnTime,
	}
}

// RenderDistribution prints a horizontal histogram of scores 0..24. Score
// rows are trimmed to the range that has data.
func RenderDistribution(w io.Writer, entries []model.HistoryEntry, barWidth int) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No games found.")
		return err
	}
	if barWidth <= 0 {
		barWidth = 40
	}
	counts := ScoreDistribution(entries)
	lo, hi := -1, -1
	maxCount := 0
	for score, c := range counts {
		if c == 0 {
			continue
		}
		if lo < 0 {
			lo = score
		}
		hi = score
		if c > maxCount {
			maxCount = c
		}
	}
	if maxCount == 0 {
		_, err := fmt.Fprintln(w, "No games found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Score Distribution"); err != nil {
		return err
	}
	for score := lo; score <= hi; score++ {
		n := int(math.Round(float64(counts[score]) / float64(maxCount) * float64(barWidth)))
		if counts[score] > 0 && n == 0 {
			n = 1
		}
		if _, err := fmt.Fprintf(w, "%2d │ %s %d\n", score, strings.Repeat("█", n), counts[score]); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func formatScore(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
