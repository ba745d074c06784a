package repository

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// setupTestDB creates an in-memory database with the snapshot schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	schema := `
		CREATE TABLE snapshot_generations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			is_current INTEGER NOT NULL DEFAULT 0 CHECK (is_current IN (0, 1)),
			players_sampled INTEGER NOT NULL DEFAULT 0,
			battles_processed INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE meta_decks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			generation_id INTEGER NOT NULL,
			arena_id INTEGER NOT NULL,
			deck_key TEXT NOT NULL,
			games INTEGER NOT NULL,
			wins INTEGER NOT NULL,
			losses INTEGER NOT NULL,
			draws INTEGER NOT NULL,
			three_crown_wins INTEGER NOT NULL,
			win_rate REAL NOT NULL,
			usage_rate REAL NOT NULL,
			three_crown_rate REAL NOT NULL,
			avg_elixir REAL NOT NULL,
			archetype TEXT NOT NULL
		);

		CREATE TABLE counter_decks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			generation_id INTEGER NOT NULL,
			arena_id INTEGER NOT NULL,
			deck_key TEXT NOT NULL,
			target_card TEXT NOT NULL,
			wins_versus INTEGER NOT NULL,
			total_versus INTEGER NOT NULL,
			three_crown_wins INTEGER NOT NULL,
			win_rate REAL NOT NULL,
			three_crown_rate REAL NOT NULL,
			avg_elixir REAL NOT NULL
		);

		CREATE TABLE player_battles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player_tag TEXT NOT NULL,
			battle_time TEXT NOT NULL,
			payload TEXT NOT NULL,
			fetched_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	return db
}
