package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/ramonehamilton/royale-meta/internal/deck"
	"github.com/ramonehamilton/royale-meta/internal/royale"
)

// Outcome labels for a parsed battle.
const (
	OutcomeWin  = "win"
	OutcomeLoss = "loss"
	OutcomeDraw = "draw"
)

// BattleData is one battle parsed into the fields the stats engine needs.
type BattleData struct {
	Season            int
	BattleTime        time.Time
	ArenaID           int
	Outcome           string
	Crowns            int
	OpponentCrowns    int
	DeckKey           string
	Cards             []string
	OpponentDeckKey   string
	OpponentArchetype string
}

// ExtractBattleData parses one raw battle into a BattleData, or fails with
// a named reason. Callers skip failed battles; a parse failure is a
// data-quality loss, never a request failure.
func ExtractBattleData(raw royale.Battle) (BattleData, error) {
	if len(raw.Team) == 0 {
		return BattleData{}, fmt.Errorf("battle has no team data")
	}
	if len(raw.Opponent) == 0 {
		return BattleData{}, fmt.Errorf("battle has no opponent data")
	}

	battleTime, err := time.Parse(royale.BattleTimeLayout, raw.BattleTime)
	if err != nil {
		return BattleData{}, fmt.Errorf("unparseable battle time %q: %w", raw.BattleTime, err)
	}

	self := raw.Team[0]
	opponent := raw.Opponent[0]

	outcome := OutcomeDraw
	switch {
	case self.Crowns > opponent.Crowns:
		outcome = OutcomeWin
	case self.Crowns < opponent.Crowns:
		outcome = OutcomeLoss
	}

	arenaID := 0
	if raw.Arena != nil {
		arenaID = raw.Arena.ID
	}

	opponentCards := opponent.CardNames()

	return BattleData{
		Season:            SeasonOf(battleTime),
		BattleTime:        battleTime,
		ArenaID:           arenaID,
		Outcome:           outcome,
		Crowns:            self.Crowns,
		OpponentCrowns:    opponent.Crowns,
		DeckKey:           deck.NormalizeKey(self.CardNames()),
		Cards:             self.CardNames(),
		OpponentDeckKey:   deck.NormalizeKey(opponentCards),
		OpponentArchetype: deck.ClassifyArchetype(opponentCards),
	}, nil
}

// MatchupTally is a nested win/battle count against one opponent archetype.
type MatchupTally struct {
	Battles int
	Wins    int
}

// DeckSeasonRow accumulates one deck's stats within one season.
type DeckSeasonRow struct {
	Season      int
	DeckKey     string
	Battles     int
	Wins        int
	ThreeCrowns int

	// Matchups tallies results per opponent archetype, answering
	// "how does this deck fare against Beatdown".
	Matchups map[string]*MatchupTally
}

// CardSeasonRow accumulates one card's stats within one season.
type CardSeasonRow struct {
	Season  int
	Card    string
	Battles int
	Wins    int
}

// ProcessBattleStats folds parsed battles into per-(season, deck) and
// per-(season, card) rows. Nothing is mutated in place; each call recomputes
// from scratch.
func ProcessBattleStats(battles []BattleData) ([]*DeckSeasonRow, []*CardSeasonRow) {
	deckRows := make(map[string]*DeckSeasonRow)
	cardRows := make(map[string]*CardSeasonRow)

	for _, b := range battles {
		if b.DeckKey == "" {
			continue
		}

		won := b.Outcome == OutcomeWin
		threeCrown := won && b.Crowns >= 3

		deckKey := fmt.Sprintf("%d:%s", b.Season, b.DeckKey)
		row, ok := deckRows[deckKey]
		if !ok {
			row = &DeckSeasonRow{
				Season:   b.Season,
				DeckKey:  b.DeckKey,
				Matchups: make(map[string]*MatchupTally),
			}
			deckRows[deckKey] = row
		}

		row.Battles++
		if won {
			row.Wins++
		}
		if threeCrown {
			row.ThreeCrowns++
		}

		if b.OpponentArchetype != "" {
			tally, ok := row.Matchups[b.OpponentArchetype]
			if !ok {
				tally = &MatchupTally{}
				row.Matchups[b.OpponentArchetype] = tally
			}
			tally.Battles++
			if won {
				tally.Wins++
			}
		}

		for _, card := range b.Cards {
			key := fmt.Sprintf("%d:%s", b.Season, card)
			cr, ok := cardRows[key]
			if !ok {
				cr = &CardSeasonRow{Season: b.Season, Card: card}
				cardRows[key] = cr
			}
			cr.Battles++
			if won {
				cr.Wins++
			}
		}
	}

	decks := make([]*DeckSeasonRow, 0, len(deckRows))
	for _, row := range deckRows {
		decks = append(decks, row)
	}
	sort.Slice(decks, func(i, j int) bool {
		if decks[i].Season != decks[j].Season {
			return decks[i].Season < decks[j].Season
		}
		return decks[i].DeckKey < decks[j].DeckKey
	})

	cards := make([]*CardSeasonRow, 0, len(cardRows))
	for _, row := range cardRows {
		cards = append(cards, row)
	}
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].Season != cards[j].Season {
			return cards[i].Season < cards[j].Season
		}
		return cards[i].Card < cards[j].Card
	})

	return decks, cards
}
