// Package deck provides canonical deck identification and archetype
// classification for 8-card decks.
package deck

import (
	"sort"
	"strings"
)

// KeySeparator joins card names inside a deck key.
const KeySeparator = "|"

// NormalizeKey derives the canonical key for a set of card names.
// The key is case-insensitive and order-independent: any permutation or
// casing variant of the same card multiset yields the identical key.
// Empty names are dropped. Cardinality is not enforced here; callers that
// require exactly 8 cards must validate before normalizing.
func NormalizeKey(cards []string) string {
	normalized := make([]string, 0, len(cards))
	for _, card := range cards {
		name := strings.ToLower(strings.TrimSpace(card))
		if name == "" {
			continue
		}
		normalized = append(normalized, name)
	}

	sort.Strings(normalized)
	return strings.Join(normalized, KeySeparator)
}

// CardsFromKey splits a deck key back into its card names.
// Returns nil for an empty key.
func CardsFromKey(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, KeySeparator)
}

// CostIndex resolves a card name to its elixir cost.
type CostIndex interface {
	// Cost returns the elixir cost for a card, or a defined default when
	// the card is unknown.
	Cost(cardName string) int
}

// AverageElixir computes the mean elixir cost of a deck using the given
// cost index. Returns 0 for an empty card list.
func AverageElixir(cards []string, costs CostIndex) float64 {
	if len(cards) == 0 {
		return 0
	}

	total := 0
	for _, card := range cards {
		total += costs.Cost(card)
	}

	return float64(total) / float64(len(cards))
}
