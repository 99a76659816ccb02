// Package game implements the turn engine: turn generation, scoring,
// timing and completion, with snapshots pushed to a subscriber.
package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/intuit/internal/artifacts"
	"github.com/verte-zerg/intuit/internal/model"
	"github.com/verte-zerg/intuit/internal/schedule"
)

// Feedback delays before the next turn is generated.
const (
	ChoiceDelay = 1000 * time.Millisecond
	PassDelay   = 1500 * time.Millisecond
)

// Outcome describes the result of a submitted choice.
type Outcome struct {
	WasCorrect         bool
	ShouldShowArtifact bool
	ShouldPlaySound    bool
	GameComplete       bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithArtifacts sets the artifact pool. It must hold exactly
// model.TotalTurns distinct identifiers.
func WithArtifacts(list []string) Option {
	return func(e *Engine) {
		if list == nil {
			return
		}
		e.pool = append([]string(nil), list...)
		e.poolSet = true
	}
}

// WithSubscriber registers the state change callback.
func WithSubscriber(s Subscriber) Option {
	return func(e *Engine) { e.subscriber = s }
}

// WithScheduler sets the scheduler for delayed turn transitions.
func WithScheduler(s schedule.Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// WithRandom sets the randomness source for shuffles and choice selection.
func WithRandom(r Random) Option {
	return func(e *Engine) { e.rnd = r }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the engine logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// Engine owns a single game session. All methods are safe for concurrent
// use; scheduled callbacks serialize with caller operations.
type Engine struct {
	mu         sync.Mutex
	pool       []string
	poolSet    bool
	order      []string
	rnd        Random
	now        func() time.Time
	sched      schedule.Scheduler
	log        zerolog.Logger
	subscriber Subscriber
	advance    *schedule.Slot
	pending    func()
	closed     bool

	turnIndex   int
	status      model.Status
	score       int
	correct     model.Choice
	artifact    string
	reveal      bool
	turns       []model.TurnRecord
	gameStart   time.Time
	turnStart   time.Time
	totalGameMs *int64
}

// New builds an engine, generates the first turn and emits the initial
// snapshot. It fails with ErrInvalidConfiguration when the artifact pool is
// malformed.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		status: model.StatusReady,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if !e.poolSet {
		e.pool = SyntheticArtifacts()
	}
	if err := artifacts.Validate(e.pool); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if e.rnd == nil {
		e.rnd = NewRandom()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.sched == nil {
		e.sched = schedule.Timers{}
	}
	e.advance = schedule.NewSlot(e.sched)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.startSessionLocked()
	return e, nil
}

// Subscribe replaces the state change callback. Nil detaches.
func (e *Engine) Subscribe(s Subscriber) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscriber = s
}

// SubmitChoice scores a guess for the current turn.
func (e *Engine) SubmitChoice(choice model.Choice) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkPlayableLocked(); err != nil {
		return Outcome{}, err
	}
	if !choice.Valid() {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownChoice, choice)
	}
	e.flushPendingLocked()

	now := e.now()
	wasCorrect := choice == e.correct
	e.turns = append(e.turns, model.ChoiceTurn{
		TurnBase:     e.turnBaseLocked(now),
		PlayerChoice: choice,
		WasCorrect:   wasCorrect,
	})
	e.markGameStartLocked(now)
	if wasCorrect {
		e.score++
	}
	e.reveal = !wasCorrect
	e.turnIndex++

	complete := e.turnIndex >= model.TotalTurns
	if complete {
		e.status = model.StatusCompleted
		total := now.Sub(e.gameStart).Milliseconds()
		e.totalGameMs = &total
	}
	e.log.Debug().
		Int("turn", e.turnIndex).
		Str("choice", string(choice)).
		Bool("correct", wasCorrect).
		Int("score", e.score).
		Msg("choice submitted")
	e.emitLocked()

	if !complete {
		e.scheduleNextTurnLocked(ChoiceDelay)
	} else {
		e.log.Info().Int("score", e.score).Int64("duration_ms", *e.totalGameMs).Msg("game completed")
	}
	return Outcome{
		WasCorrect:         wasCorrect,
		ShouldShowArtifact: wasCorrect,
		ShouldPlaySound:    wasCorrect,
		GameComplete:       complete,
	}, nil
}

// Pass skips the current turn without scoring. A new turn is generated at
// the same index after PassDelay.
func (e *Engine) Pass() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkPlayableLocked(); err != nil {
		return err
	}
	e.flushPendingLocked()

	now := e.now()
	e.turns = append(e.turns, model.PassTurn{TurnBase: e.turnBaseLocked(now)})
	e.markGameStartLocked(now)
	e.reveal = true
	e.log.Debug().Int("turn", e.turnIndex+1).Msg("turn passed")
	e.emitLocked()
	e.scheduleNextTurnLocked(PassDelay)
	return nil
}

// HideReveal clears the reveal flag immediately.
func (e *Engine) HideReveal() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.reveal = false
	e.emitLocked()
}

// Reset starts a new session over the same artifact pool. Pending turn
// transitions of the old session are cancelled.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.log.Debug().Int("turn", e.turnIndex).Int("score", e.score).Msg("game reset")
	e.startSessionLocked()
	return nil
}

// Close cancels pending transitions and detaches the subscriber. Later
// operations fail with ErrClosed.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelPendingLocked()
	e.subscriber = nil
	e.closed = true
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() model.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Stats returns the derived stats for the current session.
func (e *Engine) Stats() model.GameStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.statsLocked()
}

// Turns returns a copy of the turn log.
func (e *Engine) Turns() []model.TurnRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return model.CloneTurns(e.turns)
}

// PendingTransition reports whether a delayed turn transition is scheduled.
func (e *Engine) PendingTransition() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.advance.Pending()
}

func (e *Engine) checkPlayableLocked() error {
	if e.closed {
		return ErrClosed
	}
	if e.status != model.StatusPlaying {
		return fmt.Errorf("%w: game is %s", ErrInvalidState, e.status)
	}
	return nil
}

func (e *Engine) startSessionLocked() {
	e.cancelPendingLocked()
	e.order = shuffle(e.rnd, e.pool)
	e.turnIndex = 0
	e.score = 0
	e.turns = nil
	e.reveal = false
	e.gameStart = time.Time{}
	e.totalGameMs = nil
	e.turnStart = e.now()
	e.generateTurnLocked()
	e.status = model.StatusPlaying
	e.emitLocked()
}

func (e *Engine) generateTurnLocked() {
	e.correct = pickChoice(e.rnd)
	if e.turnIndex < len(e.order) {
		e.artifact = e.order[e.turnIndex]
	}
}

func (e *Engine) turnBaseLocked(now time.Time) model.TurnBase {
	base := model.TurnBase{
		TurnNumber:      e.turnIndex + 1,
		CorrectChoice:   e.correct,
		CorrectArtifact: e.artifact,
		CompletedAt:     now,
	}
	if e.turnIndex > 0 && !e.turnStart.IsZero() {
		d := now.Sub(e.turnStart).Milliseconds()
		base.DurationMs = &d
	}
	return base
}

func (e *Engine) markGameStartLocked(now time.Time) {
	if e.gameStart.IsZero() {
		e.gameStart = now
	}
}

func (e *Engine) scheduleNextTurnLocked(delay time.Duration) {
	apply := func() {
		e.reveal = false
		e.generateTurnLocked()
		e.turnStart = e.now()
		e.emitLocked()
	}
	e.pending = apply
	e.advance.Schedule(delay, func(token uint64) {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.closed || !e.advance.Claim(token) {
			return
		}
		e.pending = nil
		apply()
	})
}

// flushPendingLocked applies a scheduled transition right away so a
// guess or pass never lands on the previous turn's hidden answer.
func (e *Engine) flushPendingLocked() {
	if !e.advance.Pending() || e.pending == nil {
		return
	}
	apply := e.pending
	e.cancelPendingLocked()
	apply()
}

func (e *Engine) cancelPendingLocked() {
	e.advance.Cancel()
	e.pending = nil
}

func (e *Engine) emitLocked() {
	if e.subscriber == nil {
		return
	}
	e.subscriber(e.snapshotLocked())
}

func (e *Engine) snapshotLocked() model.Snapshot {
	remaining := model.TotalTurns - e.turnIndex
	if remaining < 0 {
		remaining = 0
	}
	return model.Snapshot{
		CurrentTurn:         e.turnIndex,
		Score:               e.score,
		Status:              e.status,
		IsGameComplete:      e.turnIndex >= model.TotalTurns,
		CorrectChoice:       e.correct,
		CorrectArtifact:     e.artifact,
		RevealCorrectChoice: e.reveal,
		Stats:               e.statsLocked(),
		ProgressPercentage:  float64(e.turnIndex) / float64(model.TotalTurns) * 100,
		RemainingTurns:      remaining,
		Choices:             model.Choices(),
		Turns:               model.CloneTurns(e.turns),
	}
}

func (e *Engine) statsLocked() model.GameStats {
	stats := model.GameStats{
		Score:      e.score,
		TotalTurns: e.turnIndex,
	}
	var durSum int64
	var durCount int
	for _, t := range e.turns {
		switch rec := t.(type) {
		case model.ChoiceTurn:
			if rec.WasCorrect {
				stats.CorrectGuesses++
			} else {
				stats.IncorrectGuesses++
			}
		case model.PassTurn:
			stats.Passes++
		}
		if d := t.Base().DurationMs; d != nil {
			durSum += *d
			durCount++
		}
	}
	if durCount > 0 {
		avg := float64(durSum) / float64(durCount)
		stats.AvgTurnTimeMs = &avg
	}
	if e.totalGameMs != nil {
		total := *e.totalGameMs
		stats.TotalGameTimeMs = &total
	}
	return stats
}
