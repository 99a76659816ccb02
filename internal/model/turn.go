package model

import "time"

// TurnRecord is one entry of a game's turn log. It is either a ChoiceTurn
// or a PassTurn.
type TurnRecord interface {
	Base() TurnBase
	turnRecord()
}

// TurnBase holds the fields shared by every turn record.
type TurnBase struct {
	TurnNumber      int
	CorrectChoice   Choice
	CorrectArtifact string
	// DurationMs is nil for the first turn of a game.
	DurationMs  *int64
	CompletedAt time.Time
}

// ChoiceTurn records a guess.
type ChoiceTurn struct {
	TurnBase
	PlayerChoice Choice
	WasCorrect   bool
}

// PassTurn records a skipped turn.
type PassTurn struct {
	TurnBase
}

// Base implements TurnRecord.
func (t ChoiceTurn) Base() TurnBase { return t.TurnBase }

// Base implements TurnRecord.
func (t PassTurn) Base() TurnBase { return t.TurnBase }

func (ChoiceTurn) turnRecord() {}
func (PassTurn) turnRecord()   {}

// CloneTurns copies a turn log without sharing duration pointers.
func CloneTurns(turns []TurnRecord) []TurnRecord {
	out := make([]TurnRecord, 0, len(turns))
	for _, t := range turns {
		switch rec := t.(type) {
		case ChoiceTurn:
			rec.TurnBase = rec.TurnBase.clone()
			out = append(out, rec)
		case PassTurn:
			rec.TurnBase = rec.TurnBase.clone()
			out = append(out, rec)
		}
	}
	return out
}

func (b TurnBase) clone() TurnBase {
	if b.DurationMs != nil {
		v := *b.DurationMs
		b.DurationMs = &v
	}
	return b
}
