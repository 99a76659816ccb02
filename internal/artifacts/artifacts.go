// Package artifacts loads and validates the reward items shown for
// correct guesses.
package artifacts

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/verte-zerg/intuit/internal/model"
)

var defaults = []string{
	"Iguazu Falls",
	"Santorini",
	"Mount Fuji",
	"Banaue Rice Terraces",
	"Colosseum",
	"Galapagos Islands",
	"Grand Canyon",
	"Moraine Lake",
	"Neuschwanstein Castle",
	"Pyramids of Giza",
	"Treasury of Petra",
	"Victoria Falls",
	"Amazon Rainforest",
	"Great Barrier Reef",
	"Northern Lights",
	"Angkor Wat",
	"Taj Mahal",
	"Ha Long Bay",
	"Machu Picchu",
	"Niagara Falls",
	"Great Wall of China",
	"Valley of the Kings",
	"Angel Falls",
	"Salar de Uyuni",
}

// Default returns the bundled artifact names.
func Default() []string {
	return append([]string(nil), defaults...)
}

// Load reads one artifact identifier per line. Blank lines and lines
// starting with '#' are skipped.
func Load(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only artifact list.
			_ = cerr
		}
	}()

	var list []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		list = append(list, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := Validate(list); err != nil {
		return nil, err
	}
	return list, nil
}

// Validate checks that list holds exactly model.TotalTurns distinct,
// non-blank identifiers.
func Validate(list []string) error {
	if len(list) != model.TotalTurns {
		return fmt.Errorf("expected exactly %d artifacts, got %d", model.TotalTurns, len(list))
	}
	seen := make(map[string]struct{}, len(list))
	for i, a := range list {
		if strings.TrimSpace(a) == "" {
			return fmt.Errorf("artifact %d is blank", i+1)
		}
		if _, ok := seen[a]; ok {
			return fmt.Errorf("duplicate artifact %q", a)
		}
		seen[a] = struct{}{}
	}
	return nil
}
