// Package repository provides data access layers for the analytics store.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ramonehamilton/royale-meta/internal/deck"
	"github.com/ramonehamilton/royale-meta/internal/storage/models"
)

// SnapshotRepository persists pipeline output as atomic generations.
// Publish writes a complete generation and flips the current pointer last,
// inside one transaction, so readers observe either the previous snapshot
// or the new one and never a partial state.
type SnapshotRepository interface {
	// Publish stores both result collections under a fresh generation and
	// makes it current. Returns the new generation id.
	Publish(ctx context.Context, metaDecks []models.MetaDeckResult, counterDecks []models.CounterDeckResult, playersSampled, battlesProcessed int) (int64, error)

	// Current returns the current generation, or nil if none published yet.
	Current(ctx context.Context) (*models.SnapshotInfo, error)

	// MetaDecks retrieves the current generation's meta decks for one
	// arena, ranked descending by win rate.
	MetaDecks(ctx context.Context, arenaID int) ([]models.MetaDeckResult, error)

	// AllMetaDecks retrieves the current generation's meta decks across
	// all arenas.
	AllMetaDecks(ctx context.Context) ([]models.MetaDeckResult, error)

	// CounterDecks retrieves the current generation's counter decks for a
	// target card in one arena.
	CounterDecks(ctx context.Context, targetCard string, arenaID int) ([]models.CounterDeckResult, error)

	// CounterDecksAllArenas retrieves a target card's counter decks across
	// every arena in the current generation.
	CounterDecksAllArenas(ctx context.Context, targetCard string) ([]models.CounterDeckResult, error)

	// PruneGenerations deletes all but the most recent keep generations.
	PruneGenerations(ctx context.Context, keep int) error
}

type snapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a snapshot repository.
func NewSnapshotRepository(db *sql.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Publish(ctx context.Context, metaDecks []models.MetaDeckResult, counterDecks []models.CounterDeckResult, playersSampled, battlesProcessed int) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin publish transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO snapshot_generations (created_at, is_current, players_sampled, battles_processed)
		VALUES (?, 0, ?, ?)
	`, time.Now().UTC(), playersSampled, battlesProcessed)
	if err != nil {
		return 0, fmt.Errorf("insert generation: %w", err)
	}

	generationID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("generation id: %w", err)
	}

	metaStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO meta_decks (
			generation_id, arena_id, deck_key, games, wins, losses, draws,
			three_crown_wins, win_rate, usage_rate, three_crown_rate, avg_elixir, archetype
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare meta insert: %w", err)
	}
	defer func() { _ = metaStmt.Close() }()

	for _, d := range metaDecks {
		if _, err := metaStmt.ExecContext(ctx,
			generationID, d.ArenaID, d.DeckKey, d.Games, d.Wins, d.Losses, d.Draws,
			d.ThreeCrownWins, d.WinRate, d.UsageRate, d.ThreeCrownRate, d.AvgElixir, d.Archetype,
		); err != nil {
			return 0, fmt.Errorf("insert meta deck %s: %w", d.DeckKey, err)
		}
	}

	counterStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO counter_decks (
			generation_id, arena_id, deck_key, target_card, wins_versus,
			total_versus, three_crown_wins, win_rate, three_crown_rate, avg_elixir
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare counter insert: %w", err)
	}
	defer func() { _ = counterStmt.Close() }()

	for _, d := range counterDecks {
		if _, err := counterStmt.ExecContext(ctx,
			generationID, d.ArenaID, d.DeckKey, d.TargetCard, d.WinsVersus,
			d.TotalVersus, d.ThreeCrownWins, d.WinRate, d.ThreeCrownRate, d.AvgElixir,
		); err != nil {
			return 0, fmt.Errorf("insert counter deck %s: %w", d.DeckKey, err)
		}
	}

	// Pointer flip goes last; until the commit, readers still resolve the
	// previous generation.
	if _, err := tx.ExecContext(ctx, `
		UPDATE snapshot_generations SET is_current = CASE WHEN id = ? THEN 1 ELSE 0 END
	`, generationID); err != nil {
		return 0, fmt.Errorf("flip current generation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit publish: %w", err)
	}

	return generationID, nil
}

func (r *snapshotRepository) Current(ctx context.Context) (*models.SnapshotInfo, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, created_at, players_sampled, battles_processed
		FROM snapshot_generations WHERE is_current = 1
	`)

	var info models.SnapshotInfo
	err := row.Scan(&info.GenerationID, &info.CreatedAt, &info.PlayersSampled, &info.BattlesProcessed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get current generation: %w", err)
	}

	return &info, nil
}

const metaDeckColumns = `
	arena_id, deck_key, games, wins, losses, draws, three_crown_wins,
	win_rate, usage_rate, three_crown_rate, avg_elixir, archetype
`

func (r *snapshotRepository) MetaDecks(ctx context.Context, arenaID int) ([]models.MetaDeckResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+metaDeckColumns+`
		FROM meta_decks
		WHERE generation_id = (SELECT id FROM snapshot_generations WHERE is_current = 1)
		  AND arena_id = ?
		ORDER BY win_rate DESC
	`, arenaID)
	if err != nil {
		return nil, fmt.Errorf("query meta decks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanMetaDecks(rows)
}

func (r *snapshotRepository) AllMetaDecks(ctx context.Context) ([]models.MetaDeckResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+metaDeckColumns+`
		FROM meta_decks
		WHERE generation_id = (SELECT id FROM snapshot_generations WHERE is_current = 1)
		ORDER BY arena_id, win_rate DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query all meta decks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanMetaDecks(rows)
}

func scanMetaDecks(rows *sql.Rows) ([]models.MetaDeckResult, error) {
	var results []models.MetaDeckResult
	for rows.Next() {
		var d models.MetaDeckResult
		if err := rows.Scan(
			&d.ArenaID, &d.DeckKey, &d.Games, &d.Wins, &d.Losses, &d.Draws,
			&d.ThreeCrownWins, &d.WinRate, &d.UsageRate, &d.ThreeCrownRate,
			&d.AvgElixir, &d.Archetype,
		); err != nil {
			return nil, fmt.Errorf("scan meta deck: %w", err)
		}
		d.Cards = deck.CardsFromKey(d.DeckKey)
		results = append(results, d)
	}
	return results, rows.Err()
}

const counterDeckColumns = `
	arena_id, deck_key, target_card, wins_versus, total_versus,
	three_crown_wins, win_rate, three_crown_rate, avg_elixir
`

func (r *snapshotRepository) CounterDecks(ctx context.Context, targetCard string, arenaID int) ([]models.CounterDeckResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+counterDeckColumns+`
		FROM counter_decks
		WHERE generation_id = (SELECT id FROM snapshot_generations WHERE is_current = 1)
		  AND target_card = ? AND arena_id = ?
		ORDER BY win_rate DESC
	`, targetCard, arenaID)
	if err != nil {
		return nil, fmt.Errorf("query counter decks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanCounterDecks(rows)
}

func (r *snapshotRepository) CounterDecksAllArenas(ctx context.Context, targetCard string) ([]models.CounterDeckResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+counterDeckColumns+`
		FROM counter_decks
		WHERE generation_id = (SELECT id FROM snapshot_generations WHERE is_current = 1)
		  AND target_card = ?
		ORDER BY win_rate DESC
	`, targetCard)
	if err != nil {
		return nil, fmt.Errorf("query counter decks across arenas: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanCounterDecks(rows)
}

func scanCounterDecks(rows *sql.Rows) ([]models.CounterDeckResult, error) {
	var results []models.CounterDeckResult
	for rows.Next() {
		var d models.CounterDeckResult
		if err := rows.Scan(
			&d.ArenaID, &d.DeckKey, &d.TargetCard, &d.WinsVersus, &d.TotalVersus,
			&d.ThreeCrownWins, &d.WinRate, &d.ThreeCrownRate, &d.AvgElixir,
		); err != nil {
			return nil, fmt.Errorf("scan counter deck: %w", err)
		}
		results = append(results, d)
	}
	return results, rows.Err()
}

func (r *snapshotRepository) PruneGenerations(ctx context.Context, keep int) error {
	if keep < 1 {
		keep = 1
	}

	_, err := r.db.ExecContext(ctx, `
		DELETE FROM snapshot_generations
		WHERE id NOT IN (
			SELECT id FROM snapshot_generations ORDER BY id DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("prune generations: %w", err)
	}

	// Cascade is enforced by foreign keys; clean up rows explicitly in case
	// the connection was opened without them.
	if _, err := r.db.ExecContext(ctx, `
		DELETE FROM meta_decks WHERE generation_id NOT IN (SELECT id FROM snapshot_generations)
	`); err != nil {
		return fmt.Errorf("prune meta decks: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `
		DELETE FROM counter_decks WHERE generation_id NOT IN (SELECT id FROM snapshot_generations)
	`); err != nil {
		return fmt.Errorf("prune counter decks: %w", err)
	}

	return nil
}
