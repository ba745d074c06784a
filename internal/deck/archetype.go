package deck

import "strings"

// archetypeRule maps a set of signature win-condition cards to an archetype
// label. Rules are evaluated in order; the first rule with a matching card
// wins, so broader archetypes must come later in the list.
type archetypeRule struct {
	Label string
	Cards []string
}

// archetypeRules is the priority-ordered win-condition table.
var archetypeRules = []archetypeRule{
	{Label: "Beatdown", Cards: []string{"golem", "giant", "electro giant", "goblin giant", "lava hound"}},
	{Label: "Cycle", Cards: []string{"hog rider", "miner", "wall breakers"}},
	{Label: "Bridge Spam", Cards: []string{"royal ghost", "bandit", "battle ram", "ram rider"}},
	{Label: "Siege", Cards: []string{"x-bow", "mortar"}},
	{Label: "Control", Cards: []string{"royal giant", "three musketeers", "elixir golem"}},
	{Label: "Bait", Cards: []string{"goblin barrel", "skeleton barrel", "goblin drill"}},
	{Label: "Graveyard", Cards: []string{"graveyard"}},
	{Label: "Miner Control", Cards: []string{"mega knight", "p.e.k.k.a"}},
}

// DefaultArchetype is returned when no win-condition card is present.
const DefaultArchetype = "Custom"

// ClassifyArchetype labels a deck by its win condition. Matching is
// case-insensitive and the first rule containing any deck card wins.
func ClassifyArchetype(cards []string) string {
	present := make(map[string]bool, len(cards))
	for _, card := range cards {
		present[strings.ToLower(strings.TrimSpace(card))] = true
	}

	for _, rule := range archetypeRules {
		for _, signature := range rule.Cards {
			if present[signature] {
				return rule.Label
			}
		}
	}

	return DefaultArchetype
}
