// Package store archives finished games to SQLite for later inspection.
// The archive holds diagnostic logs and outcomes only; live game state is
// never persisted between sessions.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"splynt/game"
)

// Archive wraps a SQLite connection holding finished-game records.
type Archive struct {
	db *sql.DB
}

// ArchivedGame is one finished game's summary row.
type ArchivedGame struct {
	ID          int64
	Difficulty  string
	Language    string
	Hireability int
	Outcome     string
	FinishedAt  time.Time
}

// Open opens (or creates) the archive database and runs migrations.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}

	// Single connection avoids write contention at this scale.
	db.SetMaxOpenConns(1)

	a := &Archive{db: db}
	if err := a.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return a, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) migrate() error {
	_, err := a.db.Exec(`
		CREATE TABLE IF NOT EXISTS games (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			difficulty  TEXT    NOT NULL,
			language    TEXT    NOT NULL,
			hireability INTEGER NOT NULL,
			outcome     TEXT    NOT NULL,
			finished_at TEXT    NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS game_log (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id   INTEGER NOT NULL REFERENCES games(id) ON DELETE CASCADE,
			type      TEXT    NOT NULL,
			text      TEXT    NOT NULL,
			logged_at TEXT    NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_game_log_game_id ON game_log(game_id);
	`)
	return err
}

// SaveGame writes one finished game and its full diagnostic log in a single
// transaction, returning the new game ID.
func (a *Archive) SaveGame(ctx context.Context, settings game.Settings, hireability int, outcome game.Outcome, entries []game.LogEntry) (int64, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO games (difficulty, language, hireability, outcome, finished_at) VALUES (?, ?, ?, ?, ?)`,
		settings.Difficulty.Key, settings.Language, hireability, string(outcome), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("store: insert game: %w", err)
	}
	gameID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: last insert id: %w", err)
	}

	for _, e := range entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO game_log (game_id, type, text, logged_at) VALUES (?, ?, ?, ?)`,
			gameID, e.Type, e.Text, e.Timestamp.UTC().Format(time.RFC3339),
		); err != nil {
			return 0, fmt.Errorf("store: insert log entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: commit: %w", err)
	}
	return gameID, nil
}

// RecentGames lists the most recently finished games, newest first.
func (a *Archive) RecentGames(ctx context.Context, limit int) ([]ArchivedGame, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, difficulty, language, hireability, outcome, finished_at
		 FROM games ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: query games: %w", err)
	}
	defer rows.Close()

	var games []ArchivedGame
	for rows.Next() {
		var g ArchivedGame
		var finished string
		if err := rows.Scan(&g.ID, &g.Difficulty, &g.Language, &g.Hireability, &g.Outcome, &finished); err != nil {
			return nil, fmt.Errorf("store: scan game: %w", err)
		}
		g.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		games = append(games, g)
	}
	return games, rows.Err()
}

// GameLog returns the archived diagnostic log of one game in order.
func (a *Archive) GameLog(ctx context.Context, gameID int64) ([]game.LogEntry, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT type, text, logged_at FROM game_log WHERE game_id = ? ORDER BY id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("store: query log: %w", err)
	}
	defer rows.Close()

	var entries []game.LogEntry
	for rows.Next() {
		var e game.LogEntry
		var logged string
		if err := rows.Scan(&e.Type, &e.Text, &logged); err != nil {
			return nil, fmt.Errorf("store: scan log entry: %w", err)
		}
		e.Timestamp, _ = time.Parse(time.RFC3339, logged)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
