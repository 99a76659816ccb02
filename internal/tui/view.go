package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/intuit/internal/model"
	statsPkg "github.com/verte-zerg/intuit/internal/stats"
)

// BlindModeWarning is shown while blind mode hides all feedback.
const BlindModeWarning = "Blind mode: no feedback is shown until the game ends."

const (
	buttonWidth   = 9
	progressWidth = 48
	progressStep  = 6
)

var (
	buttonColors = map[model.Choice]lipgloss.Color{
		model.ChoiceA: lipgloss.Color("#E5484D"),
		model.ChoiceB: lipgloss.Color("#3E63DD"),
		model.ChoiceC: lipgloss.Color("#30A46C"),
		model.ChoiceD: lipgloss.Color("#F5D90A"),
	}
	buttonKeys = map[model.Choice]string{
		model.ChoiceA: "w",
		model.ChoiceB: "d",
		model.ChoiceC: "a",
		model.ChoiceD: "s",
	}

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	overlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#F0F0F0")).
			Padding(0, 2)
	barFillStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#30A46C"))
	barEmptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3A3A3A"))
)

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	if m.snap.IsGameComplete && !m.snap.RevealCorrectChoice {
		content = m.renderComplete()
	} else {
		content = m.renderBoard()
	}
	if m.width == 0 || m.height == 0 {
		return content + "\n" + m.renderFooter()
	}
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderBoard() string {
	blank := strings.Repeat(" ", buttonWidth)
	top := lipgloss.JoinHorizontal(lipgloss.Top, blank, m.renderButton(model.ChoiceA), blank)
	middle := lipgloss.JoinHorizontal(lipgloss.Top, m.renderButton(model.ChoiceC), m.renderCenter(), m.renderButton(model.ChoiceB))
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, blank, m.renderButton(model.ChoiceD), blank)
	board := lipgloss.JoinVertical(lipgloss.Center, top, middle, bottom)

	parts := []string{titleStyle.Render(fmt.Sprintf("Turn %d / %d", m.displayTurn(), model.TotalTurns)), "", board, ""}
	if m.mode == model.ModeBlind {
		parts = append(parts, warningStyle.Render(wrapText(BlindModeWarning+" Press m to Exit Blind Mode.", m.textWidth())))
	} else {
		parts = append(parts, m.renderProgress())
	}
	return lipgloss.JoinVertical(lipgloss.Center, parts...)
}

func (m *Model) displayTurn() int {
	if m.snap.CurrentTurn > model.TotalTurns {
		return model.TotalTurns
	}
	return m.snap.CurrentTurn
}

func (m *Model) renderCenter() string {
	if m.overlay == "" || m.mode == model.ModeBlind {
		return strings.Repeat(" ", buttonWidth)
	}
	return lipgloss.NewStyle().Width(buttonWidth).Align(lipgloss.Center).Render(truncate(m.overlay, buttonWidth))
}

func (m *Model) renderButton(choice model.Choice) string {
	color := buttonColors[choice]
	style := lipgloss.NewStyle().
		Width(buttonWidth - 2).
		Align(lipgloss.Center).
		Border(lipgloss.NormalBorder()).
		BorderForeground(color).
		Foreground(color)
	if m.mode != model.ModeBlind && m.snap.RevealCorrectChoice && m.snap.CorrectChoice == choice {
		style = style.Border(lipgloss.ThickBorder()).Bold(true)
	}
	if m.pressed == choice {
		style = style.Reverse(true)
	}
	return style.Render(buttonKeys[choice])
}

// renderProgress draws the score bar with a tick every six points.
func (m *Model) renderProgress() string {
	return renderProgressBar(m.snap.Score, progressWidth)
}

func renderProgressBar(score, width int) string {
	if width < model.TotalTurns {
		width = model.TotalTurns
	}
	filled := score * width / model.TotalTurns
	bar := barFillStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", width-filled))

	ticks := []rune(strings.Repeat(" ", width+1))
	labels := make([]string, 0, model.TotalTurns/progressStep+1)
	for v := 0; v <= model.TotalTurns; v += progressStep {
		ticks[v*width/model.TotalTurns] = '|'
		labels = append(labels, fmt.Sprintf("%d", v))
	}
	labelLine := []rune(strings.Repeat(" ", width+2))
	for i, label := range labels {
		pos := i * progressStep * width / model.TotalTurns
		if pos+len(label) > len(labelLine) {
			pos = len(labelLine) - len(label)
		}
		copy(labelLine[pos:], []rune(label))
	}
	return lipgloss.JoinVertical(lipgloss.Left, bar, footerStyle.Render(string(ticks)), footerStyle.Render(strings.TrimRight(string(labelLine), " ")))
}

func (m *Model) renderComplete() string {
	stats := m.snap.Stats
	lines := []string{
		titleStyle.Render("Game Complete!"),
		"",
		fmt.Sprintf("Final Score: %d / %d", stats.Score, model.TotalTurns),
		fmt.Sprintf("Correct: %d  Incorrect: %d  Passes: %d", stats.CorrectGuesses, stats.IncorrectGuesses, stats.Passes),
	}
	if stats.TotalGameTimeMs != nil {
		lines = append(lines, fmt.Sprintf("Game Time: %.1fs", float64(*stats.TotalGameTimeMs)/1000))
	}
	if stats.AvgTurnTimeMs != nil {
		lines = append(lines, fmt.Sprintf("Avg Turn Time: %.2fs", *stats.AvgTurnTimeMs/1000))
	}
	if breakdown := statsPkg.ChoiceBreakdown(m.snap.Turns); len(breakdown) > 0 {
		lines = append(lines, "", "By color:")
		for _, b := range breakdown {
			lines = append(lines, fmt.Sprintf("  %-6s %3.0f%%  (%d/%d, %d passed)",
				b.Choice.Color(), b.Accuracy()*100, b.Correct, b.Correct+b.Incorrect, b.Passes))
		}
	}
	if m.saveErr != nil {
		lines = append(lines, "", errorStyle.Render(wrapText("Could not save this game: "+m.saveErr.Error(), m.textWidth())))
	}
	lines = append(lines, "", footerStyle.Render("enter/r: play again  q: quit"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderFooter() string {
	parts := []string{fmt.Sprintf("score %d", m.snap.Score)}
	if m.summary.TotalGames > 0 {
		parts = append(parts,
			fmt.Sprintf("best %d", m.summary.BestScore),
			fmt.Sprintf("avg %.1f", m.summary.AverageScore),
			fmt.Sprintf("games %d", m.summary.TotalGames),
		)
	}
	parts = append(parts, "mode "+string(m.mode), "space: pass  r: reset  m: mode  q: quit")
	return footerStyle.Render(strings.Join(parts, " | "))
}

func (m *Model) textWidth() int {
	if m.width == 0 {
		return 60
	}
	w := int(float64(m.width) * 0.70)
	if w < 1 {
		w = 1
	}
	return w
}
