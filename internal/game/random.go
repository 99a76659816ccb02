package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/verte-zerg/intuit/internal/model"
)

// Random is a uniform integer source.
type Random interface {
	// Intn returns a uniformly distributed integer in [0, n).
	Intn(n int) int
}

// NewRandom returns a Random seeded with the current time.
func NewRandom() Random {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func shuffle(rnd Random, in []string) []string {
	out := append([]string(nil), in...)
	for i := len(out) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func pickChoice(rnd Random) model.Choice {
	choices := model.Choices()
	return choices[rnd.Intn(len(choices))]
}

// SyntheticArtifacts returns the placeholder artifact list used when none
// is supplied: colors cycle and the number increases every four entries.
func SyntheticArtifacts() []string {
	choices := model.Choices()
	out := make([]string, 0, model.TotalTurns)
	for i := 0; i < model.TotalTurns; i++ {
		color := choices[i%len(choices)].Color()
		out = append(out, fmt.Sprintf("/images/%s-%d.jpg", color, i/len(choices)+1))
	}
	return out
}
