// Package pipeline implements the batch aggregation pipeline: seed
// discovery, rate-limited battle fetching, aggregation, and result
// publishing.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/ramonehamilton/royale-meta/internal/royale"
)

// ErrNoSeeds is returned when every seed source fails or yields nothing.
// It aborts the whole run: publishing stats from zero players would replace
// a good snapshot with a misleading one.
var ErrNoSeeds = errors.New("no player seeds available from any source")

// GameAPI is the slice of the game client the pipeline consumes.
type GameAPI interface {
	GetBattleLog(ctx context.Context, playerTag string) ([]royale.Battle, error)
	GetTopPlayers(ctx context.Context, location string, n int) ([]royale.RankedPlayer, error)
	GetClanRankings(ctx context.Context, location string, n int) ([]royale.RankedClan, error)
	GetClanMembers(ctx context.Context, clanTag string) ([]royale.ClanMember, error)
}

// Seed is one player to sample battles from. ArenaID is the fallback arena
// for battles that carry no explicit arena of their own.
type Seed struct {
	Tag      string
	Trophies int
	ArenaID  int
}

// arenaThresholds maps minimum trophies to an arena id, highest first.
var arenaThresholds = []struct {
	MinTrophies int
	ArenaID     int
}{
	{8500, 23}, {8000, 22}, {7500, 21}, {7000, 20}, {6500, 19},
	{6000, 18}, {5500, 17}, {5000, 16}, {4600, 15}, {4200, 14},
	{4000, 13}, {3600, 12}, {3300, 11}, {3000, 10}, {2600, 9},
	{2300, 8}, {2000, 7}, {1600, 6}, {1300, 5}, {1000, 4},
	{600, 3}, {300, 2}, {0, 1},
}

// ArenaForTrophies infers an arena id from a trophy count.
func ArenaForTrophies(trophies int) int {
	for _, tier := range arenaThresholds {
		if trophies >= tier.MinTrophies {
			return tier.ArenaID
		}
	}
	return 1
}

// DiscoveryConfig tunes seed discovery.
type DiscoveryConfig struct {
	// PlayersToSample is the target number of seeds.
	PlayersToSample int

	// Location scopes the leaderboards, e.g. "global".
	Location string

	// ClanLimit is how many ranked clans to traverse when the leaderboard
	// alone falls short.
	ClanLimit int

	// TopMembersPerClan is how many members to take from each clan,
	// highest trophies first.
	TopMembersPerClan int
}

// DiscoverSeeds collects a diverse set of player seeds. The leaderboard is
// queried first; clan rosters supplement it until PlayersToSample is
// reached or sources are exhausted. A failing leaderboard degrades to
// clan-only discovery; only total source failure is an error.
func DiscoverSeeds(ctx context.Context, api GameAPI, cfg DiscoveryConfig, logger *slog.Logger) ([]Seed, error) {
	if logger == nil {
		logger = slog.Default()
	}

	seen := make(map[string]bool)
	var seeds []Seed

	add := func(tag string, trophies int, arena *royale.Arena) {
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true

		arenaID := 0
		if arena != nil {
			arenaID = arena.ID
		}
		if arenaID == 0 {
			arenaID = ArenaForTrophies(trophies)
		}

		seeds = append(seeds, Seed{Tag: tag, Trophies: trophies, ArenaID: arenaID})
	}

	players, err := api.GetTopPlayers(ctx, cfg.Location, cfg.PlayersToSample)
	if err != nil {
		logger.Warn("leaderboard query failed, falling back to clan traversal", "error", err)
	} else {
		for _, p := range players {
			add(p.Tag, p.Trophies, p.Arena)
		}
	}

	if len(seeds) < cfg.PlayersToSample {
		clans, err := api.GetClanRankings(ctx, cfg.Location, cfg.ClanLimit)
		if err != nil {
			logger.Warn("clan rankings query failed", "error", err)
		} else {
			for _, clan := range clans {
				if len(seeds) >= cfg.PlayersToSample {
					break
				}

				members, err := api.GetClanMembers(ctx, clan.Tag)
				if err != nil {
					logger.Warn("clan roster query failed", "clan", clan.Tag, "error", err)
					continue
				}

				sort.Slice(members, func(i, j int) bool {
					return members[i].Trophies > members[j].Trophies
				})

				taken := 0
				for _, m := range members {
					if taken >= cfg.TopMembersPerClan || len(seeds) >= cfg.PlayersToSample {
						break
					}
					before := len(seeds)
					add(m.Tag, m.Trophies, m.Arena)
					if len(seeds) > before {
						taken++
					}
				}
			}
		}
	}

	if len(seeds) == 0 {
		return nil, ErrNoSeeds
	}

	if len(seeds) > cfg.PlayersToSample {
		seeds = seeds[:cfg.PlayersToSample]
	}

	logger.Info("seed discovery complete", "seeds", len(seeds), "target", cfg.PlayersToSample)
	return seeds, nil
}
