package pipeline

import (
	"strings"

	"github.com/ramonehamilton/royale-meta/internal/deck"
	"github.com/ramonehamilton/royale-meta/internal/royale"
)

// DefaultMinSampleSize is the minimum game count an aggregation row needs
// before it is trusted enough to publish.
const DefaultMinSampleSize = 50

const deckSize = 8

// ArenaDeckAggregation accumulates per-arena counters for one deck.
type ArenaDeckAggregation struct {
	ArenaID        int
	DeckKey        string
	Games          int
	Wins           int
	Losses         int
	Draws          int
	ThreeCrownWins int
}

// MatchupAggregation counts how a deck performs against a specific opposing
// card: WinsVersus and ThreeCrownWins are earned while the opponent held
// OpposingCard, out of TotalVersus games against it.
type MatchupAggregation struct {
	ArenaID        int
	DeckKey        string
	OpposingCard   string
	WinsVersus     int
	TotalVersus    int
	ThreeCrownWins int
}

type deckAggKey struct {
	arenaID int
	deckKey string
}

type matchupAggKey struct {
	arenaID      int
	deckKey      string
	opposingCard string
}

// Aggregator folds raw battles into arena-segmented deck and matchup
// counters. It is not safe for concurrent use; the pipeline feeds it from
// a single goroutine after the fetch stage completes.
type Aggregator struct {
	minSample int
	decks     map[deckAggKey]*ArenaDeckAggregation
	matchups  map[matchupAggKey]*MatchupAggregation
	processed int
	skipped   int
}

// NewAggregator returns an Aggregator that publishes only rows with at
// least minSample games. A non-positive minSample keeps everything.
func NewAggregator(minSample int) *Aggregator {
	return &Aggregator{
		minSample: minSample,
		decks:     make(map[deckAggKey]*ArenaDeckAggregation),
		matchups:  make(map[matchupAggKey]*MatchupAggregation),
	}
}

// AddBattles folds a seed's battle log into the aggregation. Battles that
// fail validation are counted as skipped and contribute nothing.
func (a *Aggregator) AddBattles(seed Seed, battles []royale.Battle) {
	for _, b := range battles {
		if a.addBattle(seed, b) {
			a.processed++
		} else {
			a.skipped++
		}
	}
}

// validDeck reports whether names form a complete deck: exactly eight
// distinct, non-empty card names.
func validDeck(names []string) bool {
	if len(names) != deckSize {
		return false
	}
	seen := make(map[string]bool, deckSize)
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" || seen[n] {
			return false
		}
		seen[n] = true
	}
	return true
}

func (a *Aggregator) addBattle(seed Seed, b royale.Battle) bool {
	// Only 1v1 battles carry a single attributable deck per side.
	if len(b.Team) != 1 || len(b.Opponent) != 1 {
		return false
	}

	team, opp := b.Team[0], b.Opponent[0]
	teamCards := team.CardNames()
	oppCards := opp.CardNames()
	if !validDeck(teamCards) || !validDeck(oppCards) {
		return false
	}

	arenaID := seed.ArenaID
	if b.Arena != nil && b.Arena.ID > 0 {
		arenaID = b.Arena.ID
	}
	if arenaID <= 0 {
		return false
	}

	teamKey := deck.NormalizeKey(teamCards)
	oppKey := deck.NormalizeKey(oppCards)

	// Both sides of the battle are real deck observations.
	a.record(arenaID, teamKey, team.Crowns, opp.Crowns, oppCards)
	a.record(arenaID, oppKey, opp.Crowns, team.Crowns, teamCards)
	return true
}

// record updates the deck counters for one side of a battle and its
// matchup counters against every card the opponent held.
func (a *Aggregator) record(arenaID int, deckKey string, crowns, oppCrowns int, oppCards []string) {
	dk := deckAggKey{arenaID: arenaID, deckKey: deckKey}
	agg := a.decks[dk]
	if agg == nil {
		agg = &ArenaDeckAggregation{ArenaID: arenaID, DeckKey: deckKey}
		a.decks[dk] = agg
	}

	won := crowns > oppCrowns
	threeCrown := won && crowns >= 3

	agg.Games++
	switch {
	case won:
		agg.Wins++
		if threeCrown {
			agg.ThreeCrownWins++
		}
	case crowns < oppCrowns:
		agg.Losses++
	default:
		agg.Draws++
	}

	for _, card := range oppCards {
		card = strings.ToLower(strings.TrimSpace(card))
		mk := matchupAggKey{arenaID: arenaID, deckKey: deckKey, opposingCard: card}
		m := a.matchups[mk]
		if m == nil {
			m = &MatchupAggregation{ArenaID: arenaID, DeckKey: deckKey, OpposingCard: card}
			a.matchups[mk] = m
		}
		m.TotalVersus++
		if won {
			m.WinsVersus++
			if threeCrown {
				m.ThreeCrownWins++
			}
		}
	}
}

// DeckAggregations returns every deck row meeting the sample floor.
func (a *Aggregator) DeckAggregations() []*ArenaDeckAggregation {
	out := make([]*ArenaDeckAggregation, 0, len(a.decks))
	for _, agg := range a.decks {
		if agg.Games >= a.minSample {
			out = append(out, agg)
		}
	}
	return out
}

// MatchupAggregations returns every matchup row meeting the sample floor.
func (a *Aggregator) MatchupAggregations() []*MatchupAggregation {
	out := make([]*MatchupAggregation, 0, len(a.matchups))
	for _, m := range a.matchups {
		if m.TotalVersus >= a.minSample {
			out = append(out, m)
		}
	}
	return out
}

// BattlesProcessed returns how many battles passed validation.
func (a *Aggregator) BattlesProcessed() int { return a.processed }

// BattlesSkipped returns how many battles failed validation.
func (a *Aggregator) BattlesSkipped() int { return a.skipped }
