// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/intuit/internal/history"
	"github.com/verte-zerg/intuit/internal/model"
	"github.com/verte-zerg/intuit/internal/stats"
)

const (
	tabOverview = iota
	tabHistory
	tabTop
	tabDistribution
)

const (
	plotHeight = 10
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#30A46C"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Config selects what the stats UI shows.
type Config struct {
	Period model.Period
	// Window is the moving average size for the score curve.
	Window int
	// Last limits the curves to the most recent games; 0 keeps all.
	Last      int
	ExportDir string
	Logger    zerolog.Logger
}

// Model implements the Bubble Tea stats UI.
type Model struct {
	ledger *history.Ledger
	cfg    Config
	log    zerolog.Logger

	report    stats.Report
	errMsg    string
	statusMsg string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	tables    map[int]*table.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string

	confirmClear bool
}

// NewModel constructs a stats UI model.
func NewModel(ledger *history.Ledger, cfg Config) *Model {
	if cfg.Period == "" {
		cfg.Period = model.PeriodAll
	}
	if cfg.Window < 1 {
		cfg.Window = 1
	}
	m := &Model{
		ledger: ledger,
		cfg:    cfg,
		log:    cfg.Logger,
		tabs:   []string{"Overview", "History", "Top Scores", "Distribution"},
	}
	m.initInputs()
	m.initTables()
	m.initViewports()
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || (msg.String() == "q" && !m.filterMode) {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if m.confirmClear {
			return m.updateConfirm(msg)
		}
		m.focusActiveTable()
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "t":
			m.cfg.Period = nextPeriod(m.cfg.Period)
			m.refreshReport()
			m.updateLayout()
			return m, nil
		case "=":
			m.cfg.Window = nextCurveWindow(m.cfg.Window)
			m.refreshReport()
			m.updateLayout()
			return m, nil
		case "-":
			m.cfg.Window = prevCurveWindow(m.cfg.Window)
			m.refreshReport()
			m.updateLayout()
			return m, nil
		case "/":
			return m.startFilter()
		case "x":
			m.export(history.FormatJSON)
			return m, nil
		case "X":
			m.export(history.FormatYAML)
			return m, nil
		case "c":
			if m.ledger.Len() > 0 {
				m.confirmClear = true
			}
			return m, nil
		case "g", "home":
			if t, ok := m.tables[m.activeTab]; ok {
				t.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if t, ok := m.tables[m.activeTab]; ok {
				t.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if t, ok := m.tables[m.activeTab]; ok {
				var cmd tea.Cmd
				*t, cmd = t.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.confirmClear {
		return fitLines(m.renderConfirmModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Last games: "),
		newFilterInput("Curve window: "),
	}
	m.setInputsFromConfig()
}

func (m *Model) initTables() {
	historyTable := newTable(historyColumns(), nil)
	topTable := newTable(topColumns(), nil)
	m.tables = map[int]*table.Model{
		tabHistory: &historyTable,
		tabTop:     &topTable,
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && (m.errMsg != "" || m.statusMsg != "") {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	if len(m.filterInputs) == 0 {
		return
	}
	if m.cfg.Last > 0 {
		m.filterInputs[0].SetValue(strconv.Itoa(m.cfg.Last))
	} else {
		m.filterInputs[0].SetValue("")
	}
	m.filterInputs[1].SetValue(strconv.Itoa(m.cfg.Window))
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	for _, t := range m.tables {
		t.SetWidth(m.width)
		t.SetHeight(maxInt(1, vpHeight-1))
	}
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	m.focusActiveTable()
}

func (m *Model) focusActiveTable() {
	for tab, t := range m.tables {
		if tab == m.activeTab {
			t.Focus()
		} else {
			t.Blur()
		}
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := fmt.Sprintf("Settings: period=%s  last=%s  window=%d  games=%d", m.cfg.Period, last, m.cfg.Window, len(m.report.Entries))
	summary = truncateLine(summary, m.width)
	return headerStyle.Render(summary)
}

func (m *Model) renderHelp() string {
	return headerStyle.Render("Nav: left/right  Period: t  Window: -/=  Settings: /  Export: x/X  Clear: c  Quit: q")
}

func (m *Model) renderFilterHelp() string {
	return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.renderFilterHelp()
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	if m.statusMsg != "" {
		return m.renderHelp() + "\n" + statusStyle.Render(m.statusMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if t, ok := m.tables[m.activeTab]; ok {
		if len(m.report.Entries) == 0 {
			return fitLines(noGamesMessage(m.cfg.Period), m.width, height)
		}
		return fitLines(tableMutedStyle.Render(t.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refreshReport() {
	m.report = stats.BuildReport(m.ledger.FilterByPeriod(m.cfg.Period), m.cfg.Last)
	m.tables[tabHistory].SetRows(historyRows(m.report.Recent))
	m.tables[tabTop].SetRows(topRows(m.report.Top))
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, m.cfg, width))
	m.viewports[tabDistribution].SetContent(renderDistribution(m.report, m.cfg.Period, width))
}

func renderOverview(report stats.Report, cfg Config, width int) string {
	if len(report.Entries) == 0 {
		return noGamesMessage(cfg.Period)
	}
	summary := renderSummaryCards(report.Aggregate, width)
	curves := renderCurves(report, cfg, width)
	return strings.TrimRight(summary+"\n\n"+curves, "\n")
}

func renderSummaryCards(agg model.Aggregate, width int) string {
	cards := []string{
		metricCard("Games Played", fmt.Sprintf("%d", agg.TotalGames)),
		metricCard("Best Score", fmt.Sprintf("%d", agg.BestScore)),
		metricCard("Average Score", fmt.Sprintf("%.2f", agg.AverageScore)),
		metricCard("Median Score", formatMedian(agg.MedianScore)),
	}
	if agg.AverageGameDurationSec > 0 {
		cards = append(cards,
			metricCard("Avg Game Time", fmt.Sprintf("%.2fs", agg.AverageGameDurationSec)),
			metricCard("Avg Turn Time", fmt.Sprintf("%.2fs", agg.AverageTurnDurationSec)),
		)
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[:4]...)
	if len(cards) == 4 {
		return row1
	}
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[4:]...)
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderCurves(report stats.Report, cfg Config, width int) string {
	entries := report.Entries
	if cfg.Last > 0 && len(entries) > cfg.Last {
		entries = entries[len(entries)-cfg.Last:]
	}
	var buf bytes.Buffer
	if err := stats.RenderCurvesWithSize(&buf, entries, cfg.Window, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderDistribution(report stats.Report, period model.Period, width int) string {
	if len(report.Entries) == 0 {
		return noGamesMessage(period)
	}
	var buf bytes.Buffer
	barWidth := maxInt(10, minInt(width-12, 60))
	if err := stats.RenderDistribution(&buf, report.Entries, barWidth); err != nil {
		return fmt.Sprintf("Failed to render distribution: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func noGamesMessage(period model.Period) string {
	switch period {
	case model.PeriodToday:
		return "No games played today."
	case model.PeriodWeek:
		return "No games played this week."
	default:
		return "No games played yet."
	}
}

func historyColumns() []table.Column {
	return []table.Column{
		{Title: "Date", Width: 16},
		{Title: "Score", Width: 6},
		{Title: "Correct", Width: 7},
		{Title: "Incorrect", Width: 9},
		{Title: "Passes", Width: 6},
		{Title: "Game Time", Width: 9},
		{Title: "Turn Time", Width: 9},
	}
}

func topColumns() []table.Column {
	return []table.Column{
		{Title: "Rank", Width: 4},
		{Title: "Score", Width: 6},
		{Title: "Date", Width: 16},
		{Title: "Game Time", Width: 9},
	}
}

func historyRows(entries []model.HistoryEntry) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, table.Row(stats.HistoryRow(e)))
	}
	return rows
}

func topRows(entries []model.HistoryEntry) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for i, e := range entries {
		cells := stats.HistoryRow(e)
		rows = append(rows, table.Row{fmt.Sprintf("#%d", i+1), cells[1], cells[0], cells[5]})
	}
	return rows
}

func newTable(columns []table.Column, rows []table.Row) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(1),
	)
	t.SetStyles(tableStyles())
	return t
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

// export writes the whole ledger, not just the selected period.
func (m *Model) export(format history.Format) {
	m.errMsg = ""
	m.statusMsg = ""
	if m.ledger.Len() == 0 {
		m.errMsg = "Nothing to export."
		return
	}
	snapshot := m.ledger.ExportSnapshot()
	path := filepath.Join(m.cfg.ExportDir, history.ExportFileName(snapshot.ExportDate, format))
	if err := writeExportFile(path, snapshot, format); err != nil {
		m.log.Error().Err(err).Str("path", path).Msg("export failed")
		m.errMsg = err.Error()
		return
	}
	m.log.Info().Str("path", path).Int("entries", len(snapshot.History)).Msg("history exported")
	m.statusMsg = "Exported to " + path
}

func writeExportFile(path string, snapshot history.Export, format history.Format) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close export file: %w", cerr)
		}
	}()
	return history.WriteExport(file, snapshot, format)
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.confirmClear = false
	if msg.String() != "y" {
		return m, nil
	}
	m.errMsg = ""
	m.statusMsg = ""
	if err := m.ledger.Clear(context.Background()); err != nil {
		m.errMsg = err.Error()
	} else {
		m.statusMsg = "History cleared."
	}
	m.refreshReport()
	m.updateLayout()
	return m, nil
}

func (m *Model) renderConfirmModal() string {
	body := []string{
		cardValueStyle.Render("Clear History"),
		fmt.Sprintf("Delete all %d recorded games?", m.ledger.Len()),
		headerStyle.Render("y to confirm / any other key to cancel"),
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	lastInput := strings.TrimSpace(m.filterInputs[0].Value())
	last := 0
	if lastInput != "" {
		parsed, err := strconv.Atoi(lastInput)
		if err != nil || parsed < 0 {
			return fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		last = parsed
	}

	windowInput := strings.TrimSpace(m.filterInputs[1].Value())
	window := 1
	if windowInput != "" {
		parsed, err := strconv.Atoi(windowInput)
		if err != nil {
			return fmt.Errorf("invalid curve window (use integer)")
		}
		if parsed < 1 {
			return fmt.Errorf("invalid curve window (use integer >= 1)")
		}
		window = parsed
	}
	m.cfg.Last = last
	m.cfg.Window = window
	return nil
}

func nextPeriod(p model.Period) model.Period {
	switch p {
	case model.PeriodAll:
		return model.PeriodToday
	case model.PeriodToday:
		return model.PeriodWeek
	default:
		return model.PeriodAll
	}
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	if n%5 == 0 {
		return n + 5
	}
	return ((n / 5) + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func formatMedian(v float64) string {
	if v == float64(int(v)) {
		return strconv.Itoa(int(v))
	}
	return fmt.Sprintf("%.1f", v)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func modalWidth(width int) int {
	return maxInt(40, minInt(width-4, 80))
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
