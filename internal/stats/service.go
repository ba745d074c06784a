package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ramonehamilton/royale-meta/internal/cache"
	"github.com/ramonehamilton/royale-meta/internal/royale"
	"github.com/ramonehamilton/royale-meta/internal/storage/models"
	"github.com/ramonehamilton/royale-meta/internal/storage/repository"
)

// DefaultRefreshInterval is how long a player's stored battle log is
// considered fresh before the service refetches it.
const DefaultRefreshInterval = 30 * time.Minute

// BattleSource fetches a player's battle log from the game API.
type BattleSource interface {
	GetBattleLog(ctx context.Context, playerTag string) ([]royale.Battle, error)
}

// playerRows is the processed view of one player's stored battles.
type playerRows struct {
	deckRows []*DeckSeasonRow
	cardRows []*CardSeasonRow
	battles  []BattleData
}

// Service owns per-player season statistics: it keeps each player's raw
// battle log stored, refreshing it from the game API when stale, and
// recomputes season buckets on demand.
type Service struct {
	source          BattleSource
	battles         repository.BattleRepository
	cache           *cache.Cache[*playerRows]
	refreshInterval time.Duration
	logger          *slog.Logger
}

// NewService builds a Service. A nil cache disables caching; a
// non-positive refreshInterval falls back to the default.
func NewService(source BattleSource, battles repository.BattleRepository, c *cache.Cache[*playerRows], refreshInterval time.Duration, logger *slog.Logger) *Service {
	if refreshInterval <= 0 {
		refreshInterval = DefaultRefreshInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		source:          source,
		battles:         battles,
		cache:           c,
		refreshInterval: refreshInterval,
		logger:          logger,
	}
}

// NewCache builds the cache type the service expects.
func NewCache(ttl time.Duration, clock cache.Clock) *cache.Cache[*playerRows] {
	return cache.New[*playerRows](ttl, clock)
}

// RefreshPlayer fetches a player's battle log and replaces their stored
// history. A fetch failure leaves the stored history untouched.
func (s *Service) RefreshPlayer(ctx context.Context, playerTag string) error {
	battles, err := s.source.GetBattleLog(ctx, playerTag)
	if err != nil {
		return fmt.Errorf("fetch battle log for %s: %w", playerTag, err)
	}

	stored := make([]models.StoredBattle, 0, len(battles))
	for _, b := range battles {
		payload, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("encode battle for %s: %w", playerTag, err)
		}
		stored = append(stored, models.StoredBattle{
			PlayerTag:  playerTag,
			BattleTime: b.BattleTime,
			Payload:    payload,
		})
	}

	if err := s.battles.ReplaceForPlayer(ctx, playerTag, stored); err != nil {
		return fmt.Errorf("store battle log for %s: %w", playerTag, err)
	}

	if s.cache != nil {
		s.cache.Invalidate(playerTag)
	}
	s.logger.Info("player battle log refreshed", "player", playerTag, "battles", len(stored))
	return nil
}

// rowsFor loads a player's processed season rows, refreshing the stored
// log first when it has gone stale. Battles that fail extraction are
// skipped individually.
func (s *Service) rowsFor(ctx context.Context, playerTag string) (*playerRows, error) {
	if s.cache != nil {
		if rows, ok := s.cache.Get(playerTag); ok {
			return rows, nil
		}
	}

	fetched, err := s.battles.LastFetched(ctx, playerTag)
	if err != nil {
		return nil, err
	}
	if time.Since(fetched) > s.refreshInterval {
		if err := s.RefreshPlayer(ctx, playerTag); err != nil {
			if fetched.IsZero() {
				return nil, err
			}
			// Stale data beats no data.
			s.logger.Warn("refresh failed, serving stored battles", "player", playerTag, "error", err)
		}
	}

	stored, err := s.battles.ListForPlayer(ctx, playerTag)
	if err != nil {
		return nil, err
	}

	var data []BattleData
	for _, sb := range stored {
		var raw royale.Battle
		if err := json.Unmarshal(sb.Payload, &raw); err != nil {
			s.logger.Warn("dropping undecodable stored battle", "player", playerTag, "error", err)
			continue
		}
		bd, err := ExtractBattleData(raw)
		if err != nil {
			continue
		}
		data = append(data, bd)
	}

	deckRows, cardRows := ProcessBattleStats(data)
	rows := &playerRows{deckRows: deckRows, cardRows: cardRows, battles: data}

	if s.cache != nil {
		s.cache.Set(playerTag, rows)
	}
	return rows, nil
}

// PlayerDecks returns a player's per-deck season stats, optionally
// filtered to one season, ordered by battle count descending.
func (s *Service) PlayerDecks(ctx context.Context, playerTag string, season *int) ([]DeckStats, error) {
	rows, err := s.rowsFor(ctx, playerTag)
	if err != nil {
		return nil, err
	}
	return ComputeDeckStats(rows.deckRows, season), nil
}

// PlayerCards returns a player's per-card win rates, optionally filtered
// to one season, with the minimum-battles floor applied.
func (s *Service) PlayerCards(ctx context.Context, playerTag string, season *int) ([]CardWinRate, error) {
	rows, err := s.rowsFor(ctx, playerTag)
	if err != nil {
		return nil, err
	}
	return ComputeCardWinRates(rows.cardRows, DefaultMinCardBattles, season), nil
}

// PlayerMatchups returns a player's matchup breakdown for one deck across
// opposing archetypes.
func (s *Service) PlayerMatchups(ctx context.Context, playerTag, deckKey string) ([]MatchupStats, error) {
	rows, err := s.rowsFor(ctx, playerTag)
	if err != nil {
		return nil, err
	}
	return ComputeMatchupData(rows.deckRows, deckKey), nil
}

// PlayerSeasonSummary returns a player's aggregate summary for one season.
func (s *Service) PlayerSeasonSummary(ctx context.Context, playerTag string, season int) (SeasonSummary, error) {
	rows, err := s.rowsFor(ctx, playerTag)
	if err != nil {
		return SeasonSummary{}, err
	}
	return ComputeSeasonSummary(season, rows.deckRows, rows.cardRows), nil
}

// PlayerStreaks returns a player's current and longest win/loss streaks
// over their stored battle history, oldest battle first.
func (s *Service) PlayerStreaks(ctx context.Context, playerTag string) (StreakStats, error) {
	rows, err := s.rowsFor(ctx, playerTag)
	if err != nil {
		return StreakStats{}, err
	}
	return CalculateStreaks(rows.battles), nil
}
