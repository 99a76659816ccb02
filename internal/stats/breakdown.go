package stats

import (
	"sort"

	"github.com/verte-zerg/intuit/internal/model"
)

// ChoiceStat counts guesses for one correct choice.
type ChoiceStat struct {
	Choice    model.Choice
	Correct   int
	Incorrect int
	Passes    int
}

// Accuracy is the share of guesses that were correct. Passes are not
// guesses; a choice with no guesses reports 0.
func (c ChoiceStat) Accuracy() float64 {
	total := c.Correct + c.Incorrect
	if total == 0 {
		return 0
	}
	return float64(c.Correct) / float64(total)
}

// ChoiceBreakdown groups a turn log by the correct choice of each turn,
// weakest first. Choices that never came up are omitted.
func ChoiceBreakdown(turns []model.TurnRecord) []ChoiceStat {
	byChoice := map[model.Choice]*ChoiceStat{}
	for _, t := range turns {
		c := t.Base().CorrectChoice
		st, ok := byChoice[c]
		if !ok {
			st = &ChoiceStat{Choice: c}
			byChoice[c] = st
		}
		switch rec := t.(type) {
		case model.ChoiceTurn:
			if rec.WasCorrect {
				st.Correct++
			} else {
				st.Incorrect++
			}
		case model.PassTurn:
			st.Passes++
		}
	}
	out := make([]ChoiceStat, 0, len(byChoice))
	for _, c := range model.Choices() {
		if st, ok := byChoice[c]; ok {
			out = append(out, *st)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Accuracy() < out[j].Accuracy()
	})
	return out
}
