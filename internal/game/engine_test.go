package game

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/verte-zerg/intuit/internal/artifacts"
	"github.com/verte-zerg/intuit/internal/model"
	"github.com/verte-zerg/intuit/internal/schedule"
)

// zeroRandom always returns 0, so the correct choice is always A.
type zeroRandom struct{}

func (zeroRandom) Intn(int) int { return 0 }

type harness struct {
	engine *Engine
	clock  *schedule.Manual
	snaps  []model.Snapshot
}

func newHarness(t *testing.T, rnd Random) *harness {
	t.Helper()
	h := &harness{clock: schedule.NewManual(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))}
	e, err := New(
		WithArtifacts(artifacts.Default()),
		WithScheduler(h.clock),
		WithClock(h.clock.Now),
		WithRandom(rnd),
		WithSubscriber(func(s model.Snapshot) { h.snaps = append(h.snaps, s) }),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	h.engine = e
	return h
}

func (h *harness) last() model.Snapshot {
	return h.snaps[len(h.snaps)-1]
}

func wrongChoice(c model.Choice) model.Choice {
	if c == model.ChoiceA {
		return model.ChoiceB
	}
	return model.ChoiceA
}

func TestNewRejectsWrongArtifactCount(t *testing.T) {
	for _, n := range []int{0, 23, 25} {
		list := make([]string, n)
		for i := range list {
			list[i] = string(rune('a'+i%26)) + string(rune('a'+i/26))
		}
		e, err := New(WithArtifacts(list))
		if !errors.Is(err, ErrInvalidConfiguration) {
			t.Fatalf("len %d: expected ErrInvalidConfiguration, got %v", n, err)
		}
		if e != nil {
			t.Fatalf("len %d: expected no engine", n)
		}
	}
}

func TestNewRejectsDuplicateArtifacts(t *testing.T) {
	list := artifacts.Default()
	list[5] = list[4]
	if _, err := New(WithArtifacts(list)); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestNewDefaultsToSyntheticArtifacts(t *testing.T) {
	e, err := New(WithScheduler(schedule.NewManual(time.Unix(0, 0))))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	snap := e.Snapshot()
	found := false
	for _, a := range SyntheticArtifacts() {
		if a == snap.CorrectArtifact {
			found = true
		}
	}
	if !found {
		t.Fatalf("artifact %q not from synthetic list", snap.CorrectArtifact)
	}
	if SyntheticArtifacts()[0] != "/images/red-1.jpg" || SyntheticArtifacts()[5] != "/images/blue-2.jpg" {
		t.Fatalf("unexpected synthetic names: %v", SyntheticArtifacts()[:6])
	}
}

func TestInitialSnapshot(t *testing.T) {
	h := newHarness(t, zeroRandom{})
	if len(h.snaps) != 1 {
		t.Fatalf("expected one initial emission, got %d", len(h.snaps))
	}
	snap := h.last()
	if snap.Status != model.StatusPlaying || snap.CurrentTurn != 0 || snap.Score != 0 {
		t.Fatalf("unexpected initial snapshot: %+v", snap)
	}
	if !snap.CorrectChoice.Valid() || snap.CorrectArtifact == "" {
		t.Fatalf("expected generated turn, got %+v", snap)
	}
	if snap.RemainingTurns != 24 || snap.ProgressPercentage != 0 {
		t.Fatalf("unexpected progress: %+v", snap)
	}
}

func TestFullGameCompletes(t *testing.T) {
	h := newHarness(t, rand.New(rand.NewSource(7)))
	for i := 0; i < model.TotalTurns; i++ {
		snap := h.engine.Snapshot()
		out, err := h.engine.SubmitChoice(snap.CorrectChoice)
		if err != nil {
			t.Fatalf("turn %d: %v", i+1, err)
		}
		if !out.WasCorrect || !out.ShouldShowArtifact || !out.ShouldPlaySound {
			t.Fatalf("turn %d: unexpected outcome %+v", i+1, out)
		}
		if out.GameComplete != (i == model.TotalTurns-1) {
			t.Fatalf("turn %d: unexpected completion flag", i+1)
		}
		h.clock.Advance(ChoiceDelay)
	}

	snap := h.engine.Snapshot()
	if snap.Status != model.StatusCompleted || !snap.IsGameComplete {
		t.Fatalf("expected completed game, got %+v", snap)
	}
	if snap.Score != 24 || snap.RemainingTurns != 0 || snap.ProgressPercentage != 100 {
		t.Fatalf("unexpected final snapshot: %+v", snap)
	}
	if snap.Stats.TotalGameTimeMs == nil {
		t.Fatalf("expected total game time at completion")
	}
	if _, err := h.engine.SubmitChoice(model.ChoiceA); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState after completion, got %v", err)
	}
	if err := h.engine.Pass(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for pass after completion, got %v", err)
	}
	if h.engine.PendingTransition() {
		t.Fatalf("expected no transition after completion")
	}

	for i, s := range h.snaps {
		if s.Score < 0 || s.Score > s.CurrentTurn || s.CurrentTurn > model.TotalTurns {
			t.Fatalf("snapshot %d breaks bounds: score=%d turn=%d", i, s.Score, s.CurrentTurn)
		}
	}
}

func TestEachArtifactUsedOnce(t *testing.T) {
	h := newHarness(t, rand.New(rand.NewSource(42)))
	for i := 0; i < model.TotalTurns; i++ {
		if _, err := h.engine.SubmitChoice(model.ChoiceC); err != nil {
			t.Fatalf("submit: %v", err)
		}
		h.clock.Advance(ChoiceDelay)
	}
	seen := map[string]int{}
	for _, turn := range h.engine.Turns() {
		seen[turn.Base().CorrectArtifact]++
	}
	for _, a := range artifacts.Default() {
		if seen[a] != 1 {
			t.Fatalf("artifact %q used %d times", a, seen[a])
		}
	}
}

func TestScoreCountsOnlyCorrect(t *testing.T) {
	h := newHarness(t, zeroRandom{})
	if _, err := h.engine.SubmitChoice(model.ChoiceA); err != nil {
		t.Fatalf("submit: %v", err)
	}
	h.clock.Advance(ChoiceDelay)
	out, err := h.engine.SubmitChoice(model.ChoiceB)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.WasCorrect || out.ShouldShowArtifact {
		t.Fatalf("expected incorrect outcome, got %+v", out)
	}
	snap := h.last()
	if snap.Score != 1 || snap.CurrentTurn != 2 || !snap.RevealCorrectChoice {
		t.Fatalf("unexpected snapshot after wrong guess: %+v", snap)
	}
	h.clock.Advance(ChoiceDelay)
	if h.last().RevealCorrectChoice {
		t.Fatalf("expected reveal cleared after delay")
	}
	stats := h.engine.Stats()
	if stats.CorrectGuesses != 1 || stats.IncorrectGuesses != 1 || stats.Passes != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestPassKeepsTurnAndScore(t *testing.T) {
	h := newHarness(t, zeroRandom{})
	if _, err := h.engine.SubmitChoice(model.ChoiceA); err != nil {
		t.Fatalf("submit: %v", err)
	}
	h.clock.Advance(ChoiceDelay)
	before := h.engine.Snapshot()

	if err := h.engine.Pass(); err != nil {
		t.Fatalf("pass: %v", err)
	}
	during := h.last()
	if during.Score != before.Score || during.CurrentTurn != before.CurrentTurn {
		t.Fatalf("pass changed score or turn: before=%+v during=%+v", before, during)
	}
	if !during.RevealCorrectChoice {
		t.Fatalf("expected reveal during pass")
	}

	h.clock.Advance(ChoiceDelay)
	if !h.last().RevealCorrectChoice {
		t.Fatalf("pass reveal ended before the pass delay")
	}
	h.clock.Advance(PassDelay - ChoiceDelay)
	after := h.last()
	if after.RevealCorrectChoice {
		t.Fatalf("expected reveal cleared after pass delay")
	}
	if after.CurrentTurn != before.CurrentTurn || after.CorrectArtifact != before.CorrectArtifact {
		t.Fatalf("expected new turn at the same index: before=%+v after=%+v", before, after)
	}

	turns := h.engine.Turns()
	pass, ok := turns[len(turns)-1].(model.PassTurn)
	if !ok {
		t.Fatalf("expected last turn to be a pass, got %T", turns[len(turns)-1])
	}
	if pass.TurnNumber != 2 {
		t.Fatalf("expected pass on turn 2, got %d", pass.TurnNumber)
	}
	if h.engine.Stats().Passes != 1 {
		t.Fatalf("expected one pass in stats")
	}
}

func TestTurnDurations(t *testing.T) {
	h := newHarness(t, zeroRandom{})
	h.clock.Advance(300 * time.Millisecond)
	if _, err := h.engine.SubmitChoice(model.ChoiceA); err != nil {
		t.Fatalf("submit: %v", err)
	}
	h.clock.Advance(ChoiceDelay)
	h.clock.Advance(500 * time.Millisecond)
	if _, err := h.engine.SubmitChoice(model.ChoiceA); err != nil {
		t.Fatalf("submit: %v", err)
	}

	turns := h.engine.Turns()
	if turns[0].Base().DurationMs != nil {
		t.Fatalf("expected no duration on the first turn")
	}
	if d := turns[1].Base().DurationMs; d == nil || *d != 500 {
		t.Fatalf("expected 500ms on the second turn, got %v", d)
	}
	stats := h.engine.Stats()
	if stats.AvgTurnTimeMs == nil || *stats.AvgTurnTimeMs != 500 {
		t.Fatalf("unexpected average turn time: %v", stats.AvgTurnTimeMs)
	}
	if stats.TotalGameTimeMs != nil {
		t.Fatalf("total game time must stay unset before completion")
	}
}

func TestResetClearsSession(t *testing.T) {
	h := newHarness(t, zeroRandom{})
	for i := 0; i < 3; i++ {
		if _, err := h.engine.SubmitChoice(model.ChoiceA); err != nil {
			t.Fatalf("submit: %v", err)
		}
		h.clock.Advance(ChoiceDelay)
	}
	if err := h.engine.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	snap := h.last()
	if snap.Score != 0 || snap.CurrentTurn != 0 || len(snap.Turns) != 0 {
		t.Fatalf("expected cleared session, got %+v", snap)
	}
	if snap.Status != model.StatusPlaying || !snap.CorrectChoice.Valid() || snap.CorrectArtifact == "" {
		t.Fatalf("expected a fresh valid turn, got %+v", snap)
	}
}

func TestResetCancelsPendingTransition(t *testing.T) {
	h := newHarness(t, zeroRandom{})
	if _, err := h.engine.SubmitChoice(model.ChoiceB); err != nil {
		t.Fatalf("submit: %v", err)
	}
	h.clock.Advance(400 * time.Millisecond)
	if err := h.engine.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	emitted := len(h.snaps)
	h.clock.Advance(5 * time.Second)
	if len(h.snaps) != emitted {
		t.Fatalf("stale transition emitted %d snapshots", len(h.snaps)-emitted)
	}
	snap := h.engine.Snapshot()
	if snap.CurrentTurn != 0 || len(snap.Turns) != 0 || snap.RevealCorrectChoice {
		t.Fatalf("stale transition mutated the new session: %+v", snap)
	}
}

// leakyScheduler hands out tasks that cannot be stopped, to prove stale
// callbacks are ignored on their own.
type leakyScheduler struct {
	fns []func()
}

func (l *leakyScheduler) After(_ time.Duration, fn func()) schedule.Task {
	l.fns = append(l.fns, fn)
	return leakyTask{}
}

type leakyTask struct{}

func (leakyTask) Stop() bool { return false }

func TestStaleCallbackIgnoredWhenStopFails(t *testing.T) {
	leaky := &leakyScheduler{}
	var snaps []model.Snapshot
	e, err := New(
		WithScheduler(leaky),
		WithRandom(zeroRandom{}),
		WithSubscriber(func(s model.Snapshot) { snaps = append(snaps, s) }),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if _, err := e.SubmitChoice(model.ChoiceB); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := e.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	emitted := len(snaps)
	for _, fn := range leaky.fns {
		fn()
	}
	if len(snaps) != emitted {
		t.Fatalf("stale callback emitted after reset")
	}
}

func TestChoiceDuringPendingTransitionUsesNextTurn(t *testing.T) {
	h := newHarness(t, zeroRandom{})
	if _, err := h.engine.SubmitChoice(model.ChoiceA); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := h.engine.SubmitChoice(model.ChoiceA); err != nil {
		t.Fatalf("second submit: %v", err)
	}
	turns := h.engine.Turns()
	if turns[0].Base().CorrectArtifact == turns[1].Base().CorrectArtifact {
		t.Fatalf("second guess reused the first turn's artifact")
	}
	if !h.engine.PendingTransition() {
		t.Fatalf("expected a transition pending for the second guess")
	}
	if h.clock.Pending() != 1 {
		t.Fatalf("expected exactly one scheduled task, got %d", h.clock.Pending())
	}
}

func TestHideRevealEmits(t *testing.T) {
	h := newHarness(t, zeroRandom{})
	if _, err := h.engine.SubmitChoice(wrongChoice(h.last().CorrectChoice)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	emitted := len(h.snaps)
	h.engine.HideReveal()
	if len(h.snaps) != emitted+1 || h.last().RevealCorrectChoice {
		t.Fatalf("expected an emission with reveal cleared")
	}
}

func TestCloseStopsEngine(t *testing.T) {
	h := newHarness(t, zeroRandom{})
	if _, err := h.engine.SubmitChoice(model.ChoiceA); err != nil {
		t.Fatalf("submit: %v", err)
	}
	h.engine.Close()
	emitted := len(h.snaps)
	h.clock.Advance(5 * time.Second)
	if len(h.snaps) != emitted {
		t.Fatalf("closed engine emitted")
	}
	if _, err := h.engine.SubmitChoice(model.ChoiceA); !errors.Is(err, ErrClosed) || !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := h.engine.Reset(); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed from reset, got %v", err)
	}
}

func TestUnknownChoiceRejected(t *testing.T) {
	h := newHarness(t, zeroRandom{})
	if _, err := h.engine.SubmitChoice(model.Choice("E")); !errors.Is(err, ErrUnknownChoice) {
		t.Fatalf("expected ErrUnknownChoice, got %v", err)
	}
	if len(h.engine.Turns()) != 0 {
		t.Fatalf("rejected choice was recorded")
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	h := newHarness(t, zeroRandom{})
	h.clock.Advance(100 * time.Millisecond)
	if _, err := h.engine.SubmitChoice(model.ChoiceA); err != nil {
		t.Fatalf("submit: %v", err)
	}
	h.clock.Advance(ChoiceDelay + 200*time.Millisecond)
	if _, err := h.engine.SubmitChoice(model.ChoiceA); err != nil {
		t.Fatalf("submit: %v", err)
	}
	snap := h.engine.Snapshot()
	snap.Turns[0] = model.PassTurn{}
	*snap.Stats.AvgTurnTimeMs = -1
	*snap.Turns[1].Base().DurationMs = -1

	again := h.engine.Snapshot()
	if _, ok := again.Turns[0].(model.ChoiceTurn); !ok {
		t.Fatalf("snapshot mutation leaked into engine turn log")
	}
	if *again.Stats.AvgTurnTimeMs < 0 || *again.Turns[1].Base().DurationMs < 0 {
		t.Fatalf("snapshot pointer mutation leaked into engine")
	}
}
