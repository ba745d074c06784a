package royale

// Battle is one entry from a player's battle log. Team and Opponent each
// normally hold a single player in ladder battles; 2v2 battles carry two
// and are skipped during aggregation.
type Battle struct {
	Type       string         `json:"type"`
	BattleTime string         `json:"battleTime"`
	Arena      *Arena         `json:"arena,omitempty"`
	GameMode   *GameMode      `json:"gameMode,omitempty"`
	Team       []BattlePlayer `json:"team"`
	Opponent   []BattlePlayer `json:"opponent"`
}

// BattleTimeLayout is the timestamp format used by the battle log API.
const BattleTimeLayout = "20060102T150405.000Z"

// Arena identifies the matchmaking tier a battle took place in.
type Arena struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GameMode identifies the battle mode (ladder, challenge, 2v2, ...).
type GameMode struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// BattlePlayer is one side's entry in a battle.
type BattlePlayer struct {
	Tag          string       `json:"tag"`
	Name         string       `json:"name"`
	Crowns       int          `json:"crowns"`
	TrophyChange int          `json:"trophyChange"`
	Cards        []BattleCard `json:"cards"`
}

// BattleCard is a card slot within a battle deck.
type BattleCard struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Level  int    `json:"level"`
	Elixir int    `json:"elixirCost"`
}

// CardNames returns the card names of a battle deck in API order.
func (p BattlePlayer) CardNames() []string {
	names := make([]string, 0, len(p.Cards))
	for _, c := range p.Cards {
		names = append(names, c.Name)
	}
	return names
}

// RankedPlayer is a leaderboard entry.
type RankedPlayer struct {
	Tag      string `json:"tag"`
	Name     string `json:"name"`
	Rank     int    `json:"rank"`
	Trophies int    `json:"trophies"`
	Arena    *Arena `json:"arena,omitempty"`
}

// RankedClan is a clan-leaderboard entry.
type RankedClan struct {
	Tag        string `json:"tag"`
	Name       string `json:"name"`
	Rank       int    `json:"rank"`
	ClanScore  int    `json:"clanScore"`
	Members   int    `json:"members"`
}

// ClanMember is one member of a clan roster.
type ClanMember struct {
	Tag      string `json:"tag"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Trophies int    `json:"trophies"`
	Arena    *Arena `json:"arena,omitempty"`
}

// CatalogCard is one entry in the game's card catalog.
type CatalogCard struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Elixir int    `json:"elixirCost"`
	Rarity string `json:"rarity"`
}

// itemList is the envelope the API wraps list responses in.
type itemList[T any] struct {
	Items []T `json:"items"`
}
