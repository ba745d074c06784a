// Package models defines the persisted projections produced by the
// aggregation pipeline and served by the read path.
package models

import "time"

// MetaDeckResult is a deck that cleared the sample floor for an arena,
// projected with percentage-normalized rates.
type MetaDeckResult struct {
	ArenaID        int      `json:"arenaId"`
	DeckKey        string   `json:"deckKey"`
	Cards          []string `json:"cards"`
	Games          int      `json:"games"`
	Wins           int      `json:"wins"`
	Losses         int      `json:"losses"`
	Draws          int      `json:"draws"`
	ThreeCrownWins int      `json:"threeCrownWins"`
	WinRate        float64  `json:"winRate"`
	UsageRate      float64  `json:"usageRate"`
	ThreeCrownRate float64  `json:"threeCrownRate"`
	AvgElixir      float64  `json:"avgElixir"`
	Archetype      string   `json:"archetype"`
}

// CounterDeckResult is a deck's record against decks containing a specific
// target card, within one arena.
type CounterDeckResult struct {
	ArenaID        int     `json:"arenaId"`
	DeckKey        string  `json:"deckKey"`
	TargetCard     string  `json:"targetCard"`
	WinsVersus     int     `json:"winsVersus"`
	TotalVersus    int     `json:"totalVersus"`
	ThreeCrownWins int     `json:"threeCrownWins"`
	WinRate        float64 `json:"winRate"`
	ThreeCrownRate float64 `json:"threeCrownRate"`
	AvgElixir      float64 `json:"avgElixir"`
}

// CounterQueryResult is the tiered query engine's answer. LimitedData is
// true whenever a fallback tier (or no tier) produced the results, so
// consumers can surface a confidence warning instead of silently showing
// unreliable numbers.
type CounterQueryResult struct {
	Results     []CounterDeckResult `json:"results"`
	LimitedData bool                `json:"limitedData"`
}

// SnapshotInfo describes one published pipeline generation.
type SnapshotInfo struct {
	GenerationID     int64     `json:"generationId"`
	CreatedAt        time.Time `json:"createdAt"`
	PlayersSampled   int       `json:"playersSampled"`
	BattlesProcessed int       `json:"battlesProcessed"`
}

// StoredBattle is one raw battle log entry persisted for a player.
type StoredBattle struct {
	PlayerTag  string
	BattleTime string
	Payload    []byte
	FetchedAt  time.Time
}
