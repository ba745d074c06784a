package stats

import (
	"sort"

	"github.com/ramonehamilton/royale-meta/internal/deck"
)

// DefaultMinCardBattles is the sample floor below which a card is excluded
// from win-rate rankings.
const DefaultMinCardBattles = 10

// CardWinRate is a ranked per-card result.
type CardWinRate struct {
	Card    string  `json:"card"`
	Battles int     `json:"battles"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"winRate"`
}

// DeckStats is a ranked per-deck result.
type DeckStats struct {
	DeckKey        string   `json:"deckKey"`
	Cards          []string `json:"cards"`
	Battles        int      `json:"battles"`
	Wins           int      `json:"wins"`
	ThreeCrowns    int      `json:"threeCrowns"`
	WinRate        float64  `json:"winRate"`
	ThreeCrownRate float64  `json:"threeCrownRate"`
}

// MatchupStats is one deck's record against one opponent archetype.
type MatchupStats struct {
	OpponentArchetype string  `json:"opponentArchetype"`
	Battles           int     `json:"battles"`
	Wins              int     `json:"wins"`
	WinRate           float64 `json:"winRate"`
}

// SeasonSummary condenses one season of play.
type SeasonSummary struct {
	Season       int          `json:"season"`
	Label        string       `json:"label"`
	TotalBattles int          `json:"totalBattles"`
	Wins         int          `json:"wins"`
	WinRate      float64      `json:"winRate"`
	MostUsedDeck *DeckStats   `json:"mostUsedDeck"`
	BestCard     *CardWinRate `json:"bestCard"`
}

// matchupLimit caps the matchup breakdown length.
const matchupLimit = 5

// ComputeCardWinRates aggregates card rows into a ranking. With a non-nil
// season only that season counts; otherwise rows are summed across seasons.
// Cards below minBattles are dropped. Sorted descending by win rate.
func ComputeCardWinRates(rows []*CardSeasonRow, minBattles int, season *int) []CardWinRate {
	totals := make(map[string]*CardWinRate)

	for _, row := range rows {
		if season != nil && row.Season != *season {
			continue
		}
		agg, ok := totals[row.Card]
		if !ok {
			agg = &CardWinRate{Card: row.Card}
			totals[row.Card] = agg
		}
		agg.Battles += row.Battles
		agg.Wins += row.Wins
	}

	results := make([]CardWinRate, 0, len(totals))
	for _, agg := range totals {
		if agg.Battles < minBattles {
			continue
		}
		agg.WinRate = float64(agg.Wins) / float64(agg.Battles) * 100
		results = append(results, *agg)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].WinRate != results[j].WinRate {
			return results[i].WinRate > results[j].WinRate
		}
		return results[i].Card < results[j].Card
	})

	return results
}

// ComputeDeckStats aggregates deck rows per deck, optionally filtered to one
// season. Sorted descending by battle count: the most-played deck leads,
// relevance over top win rate.
func ComputeDeckStats(rows []*DeckSeasonRow, season *int) []DeckStats {
	totals := make(map[string]*DeckStats)

	for _, row := range rows {
		if season != nil && row.Season != *season {
			continue
		}
		agg, ok := totals[row.DeckKey]
		if !ok {
			agg = &DeckStats{
				DeckKey: row.DeckKey,
				Cards:   deck.CardsFromKey(row.DeckKey),
			}
			totals[row.DeckKey] = agg
		}
		agg.Battles += row.Battles
		agg.Wins += row.Wins
		agg.ThreeCrowns += row.ThreeCrowns
	}

	results := make([]DeckStats, 0, len(totals))
	for _, agg := range totals {
		if agg.Battles > 0 {
			agg.WinRate = float64(agg.Wins) / float64(agg.Battles) * 100
			agg.ThreeCrownRate = float64(agg.ThreeCrowns) / float64(agg.Battles) * 100
		}
		results = append(results, *agg)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Battles != results[j].Battles {
			return results[i].Battles > results[j].Battles
		}
		return results[i].DeckKey < results[j].DeckKey
	})

	return results
}

// ComputeSeasonSummary sums one season's battles and picks the most-played
// deck and the best qualifying card. Either is nil when no data qualifies;
// zero battles yields an all-zero summary.
func ComputeSeasonSummary(season int, deckRows []*DeckSeasonRow, cardRows []*CardSeasonRow) SeasonSummary {
	summary := SeasonSummary{
		Season: season,
		Label:  SeasonLabel(season),
	}

	decks := ComputeDeckStats(deckRows, &season)
	for _, d := range decks {
		summary.TotalBattles += d.Battles
		summary.Wins += d.Wins
	}
	if summary.TotalBattles > 0 {
		summary.WinRate = float64(summary.Wins) / float64(summary.TotalBattles) * 100
	}

	if len(decks) > 0 {
		summary.MostUsedDeck = &decks[0]
	}

	cards := ComputeCardWinRates(cardRows, DefaultMinCardBattles, &season)
	if len(cards) > 0 {
		summary.BestCard = &cards[0]
	}

	return summary
}

// ComputeMatchupData flattens one deck's per-archetype tallies across
// seasons into a ranking by battle count, truncated to the five most-played
// matchups.
func ComputeMatchupData(deckRows []*DeckSeasonRow, deckKey string) []MatchupStats {
	totals := make(map[string]*MatchupStats)

	for _, row := range deckRows {
		if row.DeckKey != deckKey {
			continue
		}
		for archetype, tally := range row.Matchups {
			agg, ok := totals[archetype]
			if !ok {
				agg = &MatchupStats{OpponentArchetype: archetype}
				totals[archetype] = agg
			}
			agg.Battles += tally.Battles
			agg.Wins += tally.Wins
		}
	}

	results := make([]MatchupStats, 0, len(totals))
	for _, agg := range totals {
		if agg.Battles > 0 {
			agg.WinRate = float64(agg.Wins) / float64(agg.Battles) * 100
		}
		results = append(results, *agg)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Battles != results[j].Battles {
			return results[i].Battles > results[j].Battles
		}
		return results[i].OpponentArchetype < results[j].OpponentArchetype
	})

	if len(results) > matchupLimit {
		results = results[:matchupLimit]
	}

	return results
}
