// Package model defines shared data structures.
package model

import "time"

// TotalTurns is the number of scored turns in one game.
const TotalTurns = 24

// Choice identifies one of the four buttons.
type Choice string

// The four buttons in display order.
const (
	ChoiceA Choice = "A"
	ChoiceB Choice = "B"
	ChoiceC Choice = "C"
	ChoiceD Choice = "D"
)

// Choices returns the button identifiers in display order.
func Choices() []Choice {
	return []Choice{ChoiceA, ChoiceB, ChoiceC, ChoiceD}
}

// Valid reports whether c is one of the four buttons.
func (c Choice) Valid() bool {
	switch c {
	case ChoiceA, ChoiceB, ChoiceC, ChoiceD:
		return true
	default:
		return false
	}
}

// Color returns the display color name of the button.
func (c Choice) Color() string {
	switch c {
	case ChoiceA:
		return "red"
	case ChoiceB:
		return "blue"
	case ChoiceC:
		return "green"
	case ChoiceD:
		return "yellow"
	default:
		return ""
	}
}

// Status is the engine state machine position.
type Status string

// Engine statuses.
const (
	StatusReady     Status = "ready"
	StatusPlaying   Status = "playing"
	StatusCompleted Status = "completed"
)

// GameMode selects how much feedback the player gets.
type GameMode string

// Game modes.
const (
	ModeDefault GameMode = "default"
	ModeBlind   GameMode = "blind"
)

// ParseGameMode validates a mode name. Empty means default.
func ParseGameMode(s string) (GameMode, bool) {
	switch GameMode(s) {
	case "", ModeDefault:
		return ModeDefault, true
	case ModeBlind:
		return ModeBlind, true
	default:
		return "", false
	}
}

// Period selects a time window over history entries.
type Period string

// Supported periods.
const (
	PeriodAll   Period = "all"
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
)

// ParsePeriod validates a period name. Empty means all.
func ParsePeriod(s string) (Period, bool) {
	switch Period(s) {
	case "", PeriodAll:
		return PeriodAll, true
	case PeriodToday:
		return PeriodToday, true
	case PeriodWeek:
		return PeriodWeek, true
	default:
		return "", false
	}
}

// GameStats summarizes a game's turn log.
type GameStats struct {
	Score            int      `json:"score" yaml:"score"`
	TotalTurns       int      `json:"totalTurns" yaml:"totalTurns"`
	CorrectGuesses   int      `json:"correctGuesses" yaml:"correctGuesses"`
	IncorrectGuesses int      `json:"incorrectGuesses" yaml:"incorrectGuesses"`
	Passes           int      `json:"passes" yaml:"passes"`
	TotalGameTimeMs  *int64   `json:"totalGameTime,omitempty" yaml:"totalGameTime,omitempty"`
	AvgTurnTimeMs    *float64 `json:"averageTurnTime,omitempty" yaml:"averageTurnTime,omitempty"`
}

// Clone returns a copy that shares no pointers with s.
func (s GameStats) Clone() GameStats {
	out := s
	if s.TotalGameTimeMs != nil {
		v := *s.TotalGameTimeMs
		out.TotalGameTimeMs = &v
	}
	if s.AvgTurnTimeMs != nil {
		v := *s.AvgTurnTimeMs
		out.AvgTurnTimeMs = &v
	}
	return out
}

// HistoryEntry is the stored summary of one completed game.
type HistoryEntry struct {
	ID        string    `json:"id" yaml:"id"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Stats     GameStats `json:"stats" yaml:"stats"`
}

// Clone returns a deep copy of the entry.
func (e HistoryEntry) Clone() HistoryEntry {
	out := e
	out.Stats = e.Stats.Clone()
	return out
}

// Aggregate holds metrics derived from a sequence of history entries.
type Aggregate struct {
	TotalGames             int     `json:"totalGames" yaml:"totalGames"`
	BestScore              int     `json:"bestScore" yaml:"bestScore"`
	AverageScore           float64 `json:"averageScore" yaml:"averageScore"`
	MedianScore            float64 `json:"medianScore" yaml:"medianScore"`
	AverageGameDurationSec float64 `json:"averageGameDurationSec" yaml:"averageGameDurationSec"`
	AverageTurnDurationSec float64 `json:"averageTurnDurationSec" yaml:"averageTurnDurationSec"`
}

// Snapshot is the read-only projection of an engine's state.
type Snapshot struct {
	CurrentTurn         int
	Score               int
	Status              Status
	IsGameComplete      bool
	CorrectChoice       Choice
	CorrectArtifact     string
	RevealCorrectChoice bool
	Stats               GameStats
	ProgressPercentage  float64
	RemainingTurns      int
	Choices             []Choice
	Turns               []TurnRecord
}
