// Package tui provides the Bubble Tea play interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/intuit/internal/artifacts"
	"github.com/verte-zerg/intuit/internal/game"
	"github.com/verte-zerg/intuit/internal/history"
	"github.com/verte-zerg/intuit/internal/model"
	"github.com/verte-zerg/intuit/internal/schedule"
)

// Display timings.
const (
	ArtifactDuration   = 1000 * time.Millisecond
	CompletionHideWait = 1500 * time.Millisecond
	PressDuration      = 200 * time.Millisecond
)

// Options configures the play model.
type Options struct {
	Mode      model.GameMode
	Artifacts []string
	Resolver  artifacts.Resolver
	Ledger    *history.Ledger
	Sound     bool
	Logger    zerolog.Logger
	// Observer also receives every engine snapshot.
	Observer game.Subscriber
	// Random and Clock replace the engine defaults when set.
	Random game.Random
	Clock  func() time.Time
}

// Model implements the Bubble Tea play UI.
type Model struct {
	engine   *game.Engine
	sched    *loopScheduler
	ledger   *history.Ledger
	resolver artifacts.Resolver
	mode     model.GameMode
	sound    bool
	log      zerolog.Logger

	width  int
	height int

	snap     model.Snapshot
	outcome  *game.Outcome
	pressed  model.Choice
	overlay  string
	recorded bool
	entry    *model.HistoryEntry
	saveErr  error
	summary  model.Aggregate

	overlaySlot *schedule.Slot
	revealSlot  *schedule.Slot
	pressSlot   *schedule.Slot
}

// NewModel constructs the play model and starts the first game.
func NewModel(opts Options) (*Model, error) {
	mode, ok := model.ParseGameMode(string(opts.Mode))
	if !ok {
		return nil, fmt.Errorf("unknown game mode %q", opts.Mode)
	}
	m := &Model{
		sched:    newLoopScheduler(),
		ledger:   opts.Ledger,
		resolver: opts.Resolver,
		mode:     mode,
		sound:    opts.Sound,
		log:      opts.Logger,
	}
	if m.resolver.OnError == nil {
		m.resolver.OnError = func(artifact string, err error) {
			m.log.Warn().Str("artifact", artifact).Err(err).Msg("artifact not displayable")
		}
	}
	m.overlaySlot = schedule.NewSlot(m.sched)
	m.revealSlot = schedule.NewSlot(m.sched)
	m.pressSlot = schedule.NewSlot(m.sched)

	engineOpts := []game.Option{
		game.WithArtifacts(opts.Artifacts),
		game.WithScheduler(m.sched),
		game.WithSubscriber(game.Fanout(m.onSnapshot, opts.Observer)),
		game.WithLogger(opts.Logger),
	}
	if opts.Random != nil {
		engineOpts = append(engineOpts, game.WithRandom(opts.Random))
	}
	if opts.Clock != nil {
		engineOpts = append(engineOpts, game.WithClock(opts.Clock))
	}
	engine, err := game.New(engineOpts...)
	if err != nil {
		return nil, err
	}
	m.engine = engine
	m.refreshSummary()
	return m, nil
}

// Close stops the engine and pending display timers.
func (m *Model) Close() {
	m.cancelDisplayTimers()
	m.engine.Close()
}

// Snapshot returns the last state pushed by the engine.
func (m *Model) Snapshot() model.Snapshot {
	return m.snap
}

func (m *Model) onSnapshot(snap model.Snapshot) {
	m.snap = snap
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case timerMsg:
		m.sched.fire(msg.id)
	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	}
	return m, tea.Batch(cmd, m.sched.drain())
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	switch key {
	case "ctrl+c", "q", "esc":
		m.Close()
		return tea.Quit
	case "m":
		m.toggleMode()
		return nil
	case "r":
		m.reset()
		return nil
	}
	if m.snap.IsGameComplete {
		if key == "enter" {
			m.reset()
		}
		return nil
	}
	if choice, ok := choiceForKey(key); ok {
		return m.choose(choice)
	}
	if key == " " || key == "space" || key == "p" {
		m.pass()
	}
	return nil
}

func choiceForKey(key string) (model.Choice, bool) {
	switch key {
	case "w", "up":
		return model.ChoiceA, true
	case "d", "right":
		return model.ChoiceB, true
	case "a", "left":
		return model.ChoiceC, true
	case "s", "down":
		return model.ChoiceD, true
	default:
		return "", false
	}
}

func (m *Model) choose(choice model.Choice) tea.Cmd {
	out, err := m.engine.SubmitChoice(choice)
	if err != nil {
		m.log.Debug().Err(err).Str("choice", string(choice)).Msg("choice ignored")
		return nil
	}
	m.outcome = &out
	m.press(choice)

	var cmd tea.Cmd
	if m.mode != model.ModeBlind {
		if out.ShouldShowArtifact {
			m.showArtifact(m.lastArtifact())
		}
		if out.ShouldPlaySound && m.sound {
			cmd = bell
		}
	}
	if out.GameComplete {
		m.complete()
	}
	return cmd
}

func (m *Model) pass() {
	if err := m.engine.Pass(); err != nil {
		m.log.Debug().Err(err).Msg("pass ignored")
		return
	}
	m.outcome = nil
}

func (m *Model) reset() {
	m.cancelDisplayTimers()
	if err := m.engine.Reset(); err != nil {
		m.log.Error().Err(err).Msg("reset failed")
		return
	}
	m.outcome = nil
	m.recorded = false
	m.entry = nil
	m.saveErr = nil
}

func (m *Model) toggleMode() {
	if m.mode == model.ModeBlind {
		m.mode = model.ModeDefault
	} else {
		m.mode = model.ModeBlind
		m.overlaySlot.Cancel()
		m.overlay = ""
	}
	m.log.Debug().Str("mode", string(m.mode)).Msg("mode changed")
}

// complete records the finished game once and hides a pending reveal.
func (m *Model) complete() {
	if !m.recorded && m.ledger != nil {
		m.recorded = true
		entry, err := m.ledger.Record(context.Background(), m.snap.Stats)
		m.entry = &entry
		m.saveErr = err
		if err != nil {
			m.log.Error().Err(err).Msg("failed to save game")
		}
		m.refreshSummary()
	}
	if m.snap.RevealCorrectChoice {
		m.revealSlot.Schedule(CompletionHideWait, func(token uint64) {
			if m.revealSlot.Claim(token) {
				m.engine.HideReveal()
			}
		})
	}
}

func (m *Model) lastArtifact() string {
	if len(m.snap.Turns) == 0 {
		return m.snap.CorrectArtifact
	}
	return m.snap.Turns[len(m.snap.Turns)-1].Base().CorrectArtifact
}

func (m *Model) showArtifact(artifact string) {
	target, ok := m.resolver.Resolve(artifact)
	if !ok {
		m.overlaySlot.Cancel()
		m.overlay = ""
		return
	}
	m.overlay = artifactLabel(target)
	m.overlaySlot.Schedule(ArtifactDuration, func(token uint64) {
		if m.overlaySlot.Claim(token) {
			m.overlay = ""
		}
	})
}

func (m *Model) press(choice model.Choice) {
	m.pressed = choice
	m.pressSlot.Schedule(PressDuration, func(token uint64) {
		if m.pressSlot.Claim(token) {
			m.pressed = ""
		}
	})
}

func (m *Model) cancelDisplayTimers() {
	m.overlaySlot.Cancel()
	m.revealSlot.Cancel()
	m.pressSlot.Cancel()
	m.overlay = ""
	m.pressed = ""
}

func (m *Model) refreshSummary() {
	if m.ledger == nil {
		return
	}
	m.summary = m.ledger.Summary(model.PeriodAll)
}

// artifactLabel turns a file path into a readable name; plain names pass
// through.
func artifactLabel(target string) string {
	if !strings.ContainsAny(target, `/\`) {
		return target
	}
	base := filepath.Base(target)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.NewReplacer("_", " ", "-", " ").Replace(name)
}

func bell() tea.Msg {
	if _, err := fmt.Fprint(os.Stderr, "\a"); err != nil {
		// Best-effort bell.
		_ = err
	}
	return nil
}
