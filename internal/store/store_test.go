package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/intuit/internal/model"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "intuit.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestLoadBeforeSave(t *testing.T) {
	st := openTemp(t)
	entries, ok, err := st.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok || len(entries) != 0 {
		t.Fatalf("expected nothing saved, got ok=%v entries=%d", ok, len(entries))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()
	total := int64(72000)
	avg := 2875.25
	in := []model.HistoryEntry{
		{
			ID:        "b-second-id-sorts-first",
			Timestamp: time.Date(2026, 3, 1, 10, 0, 0, 123, time.UTC),
			Stats: model.GameStats{
				Score: 11, TotalTurns: 24, CorrectGuesses: 11, IncorrectGuesses: 12, Passes: 1,
				TotalGameTimeMs: &total, AvgTurnTimeMs: &avg,
			},
		},
		{
			ID:        "a-later",
			Timestamp: time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC),
			Stats:     model.GameStats{Score: 6, TotalTurns: 24, CorrectGuesses: 6, IncorrectGuesses: 18},
		},
	}
	if err := st.Save(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, ok, err := st.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if len(out) != 2 || out[0].ID != in[0].ID || out[1].ID != in[1].ID {
		t.Fatalf("unexpected order: %+v", out)
	}
	if !out[0].Timestamp.Equal(in[0].Timestamp) {
		t.Fatalf("timestamp changed: %v", out[0].Timestamp)
	}
	if out[0].Stats.TotalGameTimeMs == nil || *out[0].Stats.TotalGameTimeMs != total {
		t.Fatalf("total game time lost")
	}
	if out[0].Stats.AvgTurnTimeMs == nil || *out[0].Stats.AvgTurnTimeMs != avg {
		t.Fatalf("average turn time lost")
	}
	if out[1].Stats.TotalGameTimeMs != nil || out[1].Stats.AvgTurnTimeMs != nil {
		t.Fatalf("absent durations came back")
	}
	if out[0].Stats.Passes != 1 || out[1].Stats.IncorrectGuesses != 18 {
		t.Fatalf("unexpected stats: %+v", out)
	}
}

func TestSaveReplaces(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()
	first := []model.HistoryEntry{{ID: "x", Timestamp: time.Unix(0, 0).UTC()}}
	if err := st.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := st.Save(ctx, nil); err != nil {
		t.Fatalf("save empty: %v", err)
	}
	out, ok, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok || len(out) != 0 {
		t.Fatalf("expected empty saved history, got ok=%v len=%d", ok, len(out))
	}
	if _, ok, err := st.SavedAt(ctx); err != nil || !ok {
		t.Fatalf("expected saved_at, ok=%v err=%v", ok, err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intuit.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := st.Save(context.Background(), []model.HistoryEntry{{ID: "keep", Timestamp: time.Unix(10, 0).UTC()}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	st, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() {
		_ = st.Close()
	}()
	out, ok, err := st.Load(context.Background())
	if err != nil || !ok || len(out) != 1 || out[0].ID != "keep" {
		t.Fatalf("unexpected reload: ok=%v err=%v out=%+v", ok, err, out)
	}
}
