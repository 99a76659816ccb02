// Package store handles SQLite persistence of the game history.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/intuit/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

const metaSavedAt = "saved_at"

// Store wraps SQLite access for history entries.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to migrate db: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS history_entries (
			id TEXT PRIMARY KEY,
			seq INTEGER NOT NULL,
			timestamp TEXT NOT NULL,
			score INTEGER NOT NULL,
			total_turns INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			passes INTEGER NOT NULL,
			total_game_ms INTEGER,
			avg_turn_ms REAL
		);`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_history_entries_seq ON history_entries(seq);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Save replaces the stored history with entries in one transaction.
func (s *Store) Save(ctx context.Context, entries []model.HistoryEntry) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM history_entries`); err != nil {
		return err
	}
	if len(entries) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO history_entries (id, seq, timestamp, score, total_turns, correct, incorrect, passes, total_game_ms, avg_turn_ms)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, e := range entries {
			var totalMs sql.NullInt64
			if e.Stats.TotalGameTimeMs != nil {
				totalMs = sql.NullInt64{Int64: *e.Stats.TotalGameTimeMs, Valid: true}
			}
			var avgMs sql.NullFloat64
			if e.Stats.AvgTurnTimeMs != nil {
				avgMs = sql.NullFloat64{Float64: *e.Stats.AvgTurnTimeMs, Valid: true}
			}
			if _, err = stmt.ExecContext(ctx,
				e.ID,
				i,
				e.Timestamp.Format(time.RFC3339Nano),
				e.Stats.Score,
				e.Stats.TotalTurns,
				e.Stats.CorrectGuesses,
				e.Stats.IncorrectGuesses,
				e.Stats.Passes,
				totalMs,
				avgMs,
			); err != nil {
				return fmt.Errorf("failed to insert entry %s: %w", e.ID, err)
			}
		}
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		metaSavedAt, time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return err
	}
	return tx.Commit()
}

// Load returns the stored history ordered as saved. ok is false when the
// database was never saved to.
func (s *Store) Load(ctx context.Context) ([]model.HistoryEntry, bool, error) {
	if _, ok, err := s.SavedAt(ctx); err != nil || !ok {
		return nil, false, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, score, total_turns, correct, incorrect, passes, total_game_ms, avg_turn_ms
		 FROM history_entries
		 ORDER BY seq ASC`)
	if err != nil {
		return nil, false, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var entries []model.HistoryEntry
	for rows.Next() {
		var e model.HistoryEntry
		var ts string
		var totalMs sql.NullInt64
		var avgMs sql.NullFloat64
		if err := rows.Scan(&e.ID, &ts, &e.Stats.Score, &e.Stats.TotalTurns, &e.Stats.CorrectGuesses,
			&e.Stats.IncorrectGuesses, &e.Stats.Passes, &totalMs, &avgMs); err != nil {
			return nil, false, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, false, fmt.Errorf("failed to parse timestamp of %s: %w", e.ID, err)
		}
		e.Timestamp = parsed
		if totalMs.Valid {
			v := totalMs.Int64
			e.Stats.TotalGameTimeMs = &v
		}
		if avgMs.Valid {
			v := avgMs.Float64
			e.Stats.AvgTurnTimeMs = &v
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return entries, true, nil
}

// SavedAt returns the time of the last Save.
func (s *Store) SavedAt(ctx context.Context) (time.Time, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, metaSavedAt).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse saved_at: %w", err)
	}
	return t, true, nil
}
