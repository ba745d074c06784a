package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ramonehamilton/royale-meta/internal/royale"
)

const (
	// DefaultConcurrency is the fetch worker count. Throughput is bounded
	// by the client's shared rate limiter, not by this number.
	DefaultConcurrency = 5

	// DefaultBattlesPerPlayer caps how many battles are kept per seed so a
	// few hyperactive players cannot dominate the sample.
	DefaultBattlesPerPlayer = 25
)

// FetcherConfig tunes the battle fetch stage.
type FetcherConfig struct {
	Concurrency      int
	BattlesPerPlayer int
}

// FetchResult pairs a seed with its battle log, or with the error that
// prevented fetching it. One player failing never aborts the batch.
type FetchResult struct {
	Seed    Seed
	Battles []royale.Battle
	Err     error
}

// FetchBattles retrieves battle logs for every seed using a bounded worker
// pool. Results come back in seed order. The only errors surfaced from the
// call itself are context cancellations; per-player failures are recorded
// on their FetchResult.
func FetchBattles(ctx context.Context, api GameAPI, seeds []Seed, cfg FetcherConfig, logger *slog.Logger) ([]FetchResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.BattlesPerPlayer <= 0 {
		cfg.BattlesPerPlayer = DefaultBattlesPerPlayer
	}

	results := make([]FetchResult, len(seeds))

	var cursor atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Concurrency; w++ {
		g.Go(func() error {
			for {
				i := int(cursor.Add(1)) - 1
				if i >= len(seeds) {
					return nil
				}
				if err := ctx.Err(); err != nil {
					return err
				}

				seed := seeds[i]
				battles, err := api.GetBattleLog(ctx, seed.Tag)
				if err != nil {
					logger.Warn("battle log fetch failed", "player", seed.Tag, "error", err)
					results[i] = FetchResult{Seed: seed, Err: err}
					continue
				}
				if len(battles) > cfg.BattlesPerPlayer {
					battles = battles[:cfg.BattlesPerPlayer]
				}
				results[i] = FetchResult{Seed: seed, Battles: battles}
			}
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
