package pipeline

import (
	"sort"

	"github.com/ramonehamilton/royale-meta/internal/deck"
	"github.com/ramonehamilton/royale-meta/internal/storage/models"
)

// BuildMetaDecks projects deck aggregations into publishable results.
// Rates are percentages; usage is relative to the total games observed in
// the same arena. Results are ordered by arena, then win rate descending.
func BuildMetaDecks(aggs []*ArenaDeckAggregation, costs deck.CostIndex) []models.MetaDeckResult {
	arenaGames := make(map[int]int)
	for _, agg := range aggs {
		arenaGames[agg.ArenaID] += agg.Games
	}

	out := make([]models.MetaDeckResult, 0, len(aggs))
	for _, agg := range aggs {
		cards := deck.CardsFromKey(agg.DeckKey)
		r := models.MetaDeckResult{
			ArenaID:        agg.ArenaID,
			DeckKey:        agg.DeckKey,
			Cards:          cards,
			Games:          agg.Games,
			Wins:           agg.Wins,
			Losses:         agg.Losses,
			Draws:          agg.Draws,
			ThreeCrownWins: agg.ThreeCrownWins,
			AvgElixir:      deck.AverageElixir(cards, costs),
			Archetype:      deck.ClassifyArchetype(cards),
		}
		if agg.Games > 0 {
			r.WinRate = float64(agg.Wins) / float64(agg.Games) * 100
			r.ThreeCrownRate = float64(agg.ThreeCrownWins) / float64(agg.Games) * 100
		}
		if total := arenaGames[agg.ArenaID]; total > 0 {
			r.UsageRate = float64(agg.Games) / float64(total) * 100
		}
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ArenaID != out[j].ArenaID {
			return out[i].ArenaID < out[j].ArenaID
		}
		if out[i].WinRate != out[j].WinRate {
			return out[i].WinRate > out[j].WinRate
		}
		return out[i].DeckKey < out[j].DeckKey
	})
	return out
}

// BuildCounterDecks projects matchup aggregations into counter-deck
// results, ordered by arena, target card, then win rate descending.
func BuildCounterDecks(aggs []*MatchupAggregation, costs deck.CostIndex) []models.CounterDeckResult {
	out := make([]models.CounterDeckResult, 0, len(aggs))
	for _, m := range aggs {
		r := models.CounterDeckResult{
			ArenaID:        m.ArenaID,
			DeckKey:        m.DeckKey,
			TargetCard:     m.OpposingCard,
			WinsVersus:     m.WinsVersus,
			TotalVersus:    m.TotalVersus,
			ThreeCrownWins: m.ThreeCrownWins,
			AvgElixir:      deck.AverageElixir(deck.CardsFromKey(m.DeckKey), costs),
		}
		if m.TotalVersus > 0 {
			r.WinRate = float64(m.WinsVersus) / float64(m.TotalVersus) * 100
			r.ThreeCrownRate = float64(m.ThreeCrownWins) / float64(m.TotalVersus) * 100
		}
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ArenaID != out[j].ArenaID {
			return out[i].ArenaID < out[j].ArenaID
		}
		if out[i].TargetCard != out[j].TargetCard {
			return out[i].TargetCard < out[j].TargetCard
		}
		if out[i].WinRate != out[j].WinRate {
			return out[i].WinRate > out[j].WinRate
		}
		return out[i].DeckKey < out[j].DeckKey
	})
	return out
}
