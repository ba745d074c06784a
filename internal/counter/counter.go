// Package counter answers "what beats this card" queries against the
// published snapshot, degrading through wider and less confident data
// tiers instead of erroring when samples are thin.
package counter

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ramonehamilton/royale-meta/internal/cache"
	"github.com/ramonehamilton/royale-meta/internal/storage/models"
)

// Tier thresholds. The primary tier demands a real sample in the player's
// own arena; each fallback trades confidence for coverage and flags the
// result as limited.
const (
	primarySampleFloor  = 50
	primaryMinResults   = 5
	fallbackSampleFloor = 10
	fallbackMinResults  = 3
	globalSampleFloor   = 10
)

// DefaultCacheTTL is how long a counter query result stays cached.
const DefaultCacheTTL = 10 * time.Minute

// Store is the snapshot read surface the engine queries.
type Store interface {
	CounterDecks(ctx context.Context, targetCard string, arenaID int) ([]models.CounterDeckResult, error)
	CounterDecksAllArenas(ctx context.Context, targetCard string) ([]models.CounterDeckResult, error)
}

// Engine resolves counter-deck queries through the tier cascade and
// caches answers per (card, arena).
type Engine struct {
	store  Store
	cache  *cache.Cache[*models.CounterQueryResult]
	logger *slog.Logger
}

// New builds an Engine. A nil cache disables caching.
func New(store Store, c *cache.Cache[*models.CounterQueryResult], logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, cache: c, logger: logger}
}

// FindCounterDecks returns decks that perform well against targetCard for
// a player in arenaID. Thin data is never an error: the cascade widens the
// search and marks the answer limited, bottoming out at an empty result.
func (e *Engine) FindCounterDecks(ctx context.Context, targetCard string, arenaID int) (*models.CounterQueryResult, error) {
	targetCard = strings.ToLower(strings.TrimSpace(targetCard))
	if targetCard == "" {
		return &models.CounterQueryResult{Results: []models.CounterDeckResult{}, LimitedData: true}, nil
	}

	key := fmt.Sprintf("%s:%d", targetCard, arenaID)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			return cached, nil
		}
	}

	result, err := e.resolve(ctx, targetCard, arenaID)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		e.cache.Set(key, result)
	}
	return result, nil
}

func (e *Engine) resolve(ctx context.Context, targetCard string, arenaID int) (*models.CounterQueryResult, error) {
	arenaRows, err := e.store.CounterDecks(ctx, targetCard, arenaID)
	if err != nil {
		return nil, fmt.Errorf("query arena counters: %w", err)
	}

	if primary := filterBySample(arenaRows, primarySampleFloor); len(primary) >= primaryMinResults {
		return &models.CounterQueryResult{Results: primary, LimitedData: false}, nil
	}

	if fallback := filterBySample(arenaRows, fallbackSampleFloor); len(fallback) >= fallbackMinResults {
		e.logger.Debug("serving reduced-confidence arena counters", "card", targetCard, "arena", arenaID, "rows", len(fallback))
		return &models.CounterQueryResult{Results: fallback, LimitedData: true}, nil
	}

	allRows, err := e.store.CounterDecksAllArenas(ctx, targetCard)
	if err != nil {
		return nil, fmt.Errorf("query global counters: %w", err)
	}

	if combined := combineAcrossArenas(allRows, globalSampleFloor); len(combined) > 0 {
		e.logger.Debug("serving global counters", "card", targetCard, "rows", len(combined))
		return &models.CounterQueryResult{Results: combined, LimitedData: true}, nil
	}

	return &models.CounterQueryResult{Results: []models.CounterDeckResult{}, LimitedData: true}, nil
}

func filterBySample(rows []models.CounterDeckResult, floor int) []models.CounterDeckResult {
	out := make([]models.CounterDeckResult, 0, len(rows))
	for _, r := range rows {
		if r.TotalVersus >= floor {
			out = append(out, r)
		}
	}
	return out
}

// combineAcrossArenas merges one card's rows from every arena per deck:
// samples sum, rates average weighted by sample. Arena loses meaning on a
// combined row, so ArenaID is zeroed.
func combineAcrossArenas(rows []models.CounterDeckResult, floor int) []models.CounterDeckResult {
	byDeck := make(map[string]*models.CounterDeckResult)
	for _, r := range rows {
		c := byDeck[r.DeckKey]
		if c == nil {
			byDeck[r.DeckKey] = &models.CounterDeckResult{
				DeckKey:        r.DeckKey,
				TargetCard:     r.TargetCard,
				WinsVersus:     r.WinsVersus,
				TotalVersus:    r.TotalVersus,
				ThreeCrownWins: r.ThreeCrownWins,
				AvgElixir:      r.AvgElixir,
			}
			continue
		}
		c.WinsVersus += r.WinsVersus
		c.TotalVersus += r.TotalVersus
		c.ThreeCrownWins += r.ThreeCrownWins
	}

	out := make([]models.CounterDeckResult, 0, len(byDeck))
	for _, c := range byDeck {
		if c.TotalVersus < floor {
			continue
		}
		c.WinRate = float64(c.WinsVersus) / float64(c.TotalVersus) * 100
		c.ThreeCrownRate = float64(c.ThreeCrownWins) / float64(c.TotalVersus) * 100
		out = append(out, *c)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].WinRate != out[j].WinRate {
			return out[i].WinRate > out[j].WinRate
		}
		return out[i].DeckKey < out[j].DeckKey
	})
	return out
}
