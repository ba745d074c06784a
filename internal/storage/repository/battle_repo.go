package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ramonehamilton/royale-meta/internal/storage/models"
)

// BattleRepository stores raw battle logs per player for the season stats
// engine. A player's history is replaced wholesale on refresh; season
// buckets are always recomputed from what is stored here.
type BattleRepository interface {
	// ReplaceForPlayer swaps a player's stored battles for the given set
	// in one transaction.
	ReplaceForPlayer(ctx context.Context, playerTag string, battles []models.StoredBattle) error

	// ListForPlayer retrieves a player's stored battles, oldest first.
	ListForPlayer(ctx context.Context, playerTag string) ([]models.StoredBattle, error)

	// LastFetched returns when a player's battles were last stored, or the
	// zero time if none are stored.
	LastFetched(ctx context.Context, playerTag string) (time.Time, error)
}

type battleRepository struct {
	db *sql.DB
}

// NewBattleRepository creates a battle repository.
func NewBattleRepository(db *sql.DB) BattleRepository {
	return &battleRepository{db: db}
}

func (r *battleRepository) ReplaceForPlayer(ctx context.Context, playerTag string, battles []models.StoredBattle) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM player_battles WHERE player_tag = ?`, playerTag); err != nil {
		return fmt.Errorf("clear battles for %s: %w", playerTag, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO player_battles (player_tag, battle_time, payload, fetched_at)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare battle insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC()
	for _, b := range battles {
		if _, err := stmt.ExecContext(ctx, playerTag, b.BattleTime, b.Payload, now); err != nil {
			return fmt.Errorf("insert battle for %s: %w", playerTag, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}

	return nil
}

func (r *battleRepository) ListForPlayer(ctx context.Context, playerTag string) ([]models.StoredBattle, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT player_tag, battle_time, payload, fetched_at
		FROM player_battles
		WHERE player_tag = ?
		ORDER BY battle_time ASC
	`, playerTag)
	if err != nil {
		return nil, fmt.Errorf("query battles for %s: %w", playerTag, err)
	}
	defer func() { _ = rows.Close() }()

	var battles []models.StoredBattle
	for rows.Next() {
		var b models.StoredBattle
		if err := rows.Scan(&b.PlayerTag, &b.BattleTime, &b.Payload, &b.FetchedAt); err != nil {
			return nil, fmt.Errorf("scan battle: %w", err)
		}
		battles = append(battles, b)
	}

	return battles, rows.Err()
}

func (r *battleRepository) LastFetched(ctx context.Context, playerTag string) (time.Time, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT MAX(fetched_at) FROM player_battles WHERE player_tag = ?
	`, playerTag)

	var fetched sql.NullTime
	if err := row.Scan(&fetched); err != nil {
		return time.Time{}, fmt.Errorf("get last fetched for %s: %w", playerTag, err)
	}
	if !fetched.Valid {
		return time.Time{}, nil
	}

	return fetched.Time, nil
}
