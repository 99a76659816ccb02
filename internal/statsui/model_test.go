package statsui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/intuit/internal/history"
	"github.com/verte-zerg/intuit/internal/model"
)

func seededLedger(t *testing.T, now time.Time, scores map[time.Duration]int) *history.Ledger {
	t.Helper()
	at := now
	l := history.New(history.WithClock(func() time.Time { return at }))
	for ago, score := range scores {
		at = now.Add(-ago)
		if _, err := l.Record(context.Background(), model.GameStats{Score: score, TotalTurns: model.TotalTurns, CorrectGuesses: score}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	at = now
	return l
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sized(m *Model) *Model {
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func TestOverviewShowsSummary(t *testing.T) {
	now := time.Now()
	l := seededLedger(t, now, map[time.Duration]int{time.Minute: 12, 2 * time.Minute: 18})
	m := sized(NewModel(l, Config{}))
	view := m.View()
	for _, want := range []string{"Overview", "Games Played", "Best Score", "18", "period=all"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestEmptyLedgerMessage(t *testing.T) {
	m := sized(NewModel(history.New(), Config{}))
	if !strings.Contains(m.View(), "No games played yet.") {
		t.Fatalf("expected empty message:\n%s", m.View())
	}
}

func TestPeriodCycle(t *testing.T) {
	now := time.Now()
	l := seededLedger(t, now, map[time.Duration]int{30 * 24 * time.Hour: 10})
	m := sized(NewModel(l, Config{}))
	m.Update(key("t"))
	if m.cfg.Period != model.PeriodToday {
		t.Fatalf("expected today, got %s", m.cfg.Period)
	}
	if len(m.report.Entries) != 0 {
		t.Fatalf("expected old game filtered out")
	}
	if !strings.Contains(m.View(), "No games played today.") {
		t.Fatalf("expected today message:\n%s", m.View())
	}
	m.Update(key("t"))
	m.Update(key("t"))
	if m.cfg.Period != model.PeriodAll || len(m.report.Entries) != 1 {
		t.Fatalf("expected cycle back to all, got %s with %d entries", m.cfg.Period, len(m.report.Entries))
	}
}

func TestTabsRenderTables(t *testing.T) {
	now := time.Now()
	l := seededLedger(t, now, map[time.Duration]int{time.Minute: 7, 2 * time.Minute: 21})
	m := sized(NewModel(l, Config{}))

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabHistory || !strings.Contains(m.View(), "21/24") {
		t.Fatalf("expected history tab:\n%s", m.View())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabTop || !strings.Contains(m.View(), "#1") {
		t.Fatalf("expected top scores tab:\n%s", m.View())
	}
	if rows := m.tables[tabTop].Rows(); rows[0][1] != "21/24" {
		t.Fatalf("expected best game first, got %v", rows[0])
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabDistribution || !strings.Contains(m.View(), "Score Distribution") {
		t.Fatalf("expected distribution tab:\n%s", m.View())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabOverview {
		t.Fatalf("expected tabs to wrap around")
	}
}

func TestExportWritesFile(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	l := seededLedger(t, now, map[time.Duration]int{time.Minute: 9})
	m := sized(NewModel(l, Config{ExportDir: dir}))
	m.Update(key("x"))
	if m.errMsg != "" {
		t.Fatalf("unexpected export error: %s", m.errMsg)
	}
	path := filepath.Join(dir, history.ExportFileName(now, history.FormatJSON))
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer file.Close()
	exp, err := history.ReadExport(file, history.FormatJSON)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if len(exp.History) != 1 || exp.Stats.BestScore != 9 {
		t.Fatalf("unexpected export: %+v", exp)
	}
	if !strings.Contains(m.statusMsg, path) {
		t.Fatalf("expected status with path, got %q", m.statusMsg)
	}
}

func TestExportEmptyLedger(t *testing.T) {
	m := sized(NewModel(history.New(), Config{ExportDir: t.TempDir()}))
	m.Update(key("X"))
	if m.errMsg != "Nothing to export." {
		t.Fatalf("expected nothing to export, got %q", m.errMsg)
	}
}

func TestClearNeedsConfirmation(t *testing.T) {
	now := time.Now()
	l := seededLedger(t, now, map[time.Duration]int{time.Minute: 9})
	m := sized(NewModel(l, Config{}))

	m.Update(key("c"))
	if !m.confirmClear || !strings.Contains(m.View(), "Clear History") {
		t.Fatalf("expected confirmation modal")
	}
	m.Update(key("n"))
	if l.Len() != 1 {
		t.Fatalf("expected history kept after cancel")
	}

	m.Update(key("c"))
	m.Update(key("y"))
	if l.Len() != 0 || len(m.report.Entries) != 0 {
		t.Fatalf("expected history cleared")
	}
	if m.statusMsg != "History cleared." {
		t.Fatalf("unexpected status %q", m.statusMsg)
	}
}

func TestFilterValidation(t *testing.T) {
	m := sized(NewModel(history.New(), Config{Window: 3}))
	m.Update(key("/"))
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.filterInputs[1].SetValue("0")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.filterMode || m.filterError == "" {
		t.Fatalf("expected validation error")
	}
	m.filterInputs[0].SetValue("5")
	m.filterInputs[1].SetValue("2")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode || m.cfg.Last != 5 || m.cfg.Window != 2 {
		t.Fatalf("expected applied settings, got %+v", m.cfg)
	}
}

func TestCurveWindowSteps(t *testing.T) {
	if nextCurveWindow(1) != 5 || nextCurveWindow(5) != 10 || nextCurveWindow(7) != 10 {
		t.Fatalf("unexpected next window")
	}
	if prevCurveWindow(5) != 1 || prevCurveWindow(10) != 5 || prevCurveWindow(7) != 5 {
		t.Fatalf("unexpected previous window")
	}
}

func TestFitLines(t *testing.T) {
	out := fitLines("a\nb\nc", 3, 2)
	if out != "a  \nb  " {
		t.Fatalf("unexpected fit: %q", out)
	}
}
