package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ramonehamilton/royale-meta/internal/deck"
	"github.com/ramonehamilton/royale-meta/internal/storage/models"
)

// Default discovery settings.
const (
	DefaultPlayersToSample   = 200
	DefaultClanLimit         = 50
	DefaultTopMembersPerClan = 10
	DefaultLocation          = "global"
)

// Config tunes a full pipeline run.
type Config struct {
	PlayersToSample   int
	Location          string
	ClanLimit         int
	TopMembersPerClan int
	Concurrency       int
	BattlesPerPlayer  int
	MinSampleSize     int
	KeepGenerations   int
}

// DefaultConfig returns the pipeline defaults.
func DefaultConfig() Config {
	return Config{
		PlayersToSample:   DefaultPlayersToSample,
		Location:          DefaultLocation,
		ClanLimit:         DefaultClanLimit,
		TopMembersPerClan: DefaultTopMembersPerClan,
		Concurrency:       DefaultConcurrency,
		BattlesPerPlayer:  DefaultBattlesPerPlayer,
		MinSampleSize:     DefaultMinSampleSize,
		KeepGenerations:   3,
	}
}

// Publisher is the slice of storage the pipeline writes through.
type Publisher interface {
	Publish(ctx context.Context, metaDecks []models.MetaDeckResult, counterDecks []models.CounterDeckResult, playersSampled, battlesProcessed int) (int64, error)
	PruneGenerations(ctx context.Context, keep int) error
}

// RunReport summarizes one pipeline run.
type RunReport struct {
	GenerationID     int64
	PlayersSampled   int
	PlayersFailed    int
	BattlesProcessed int
	BattlesSkipped   int
	MetaDecks        int
	CounterDecks     int
	Duration         time.Duration
}

// Pipeline runs the full batch: discover seeds, fetch battles, aggregate,
// build results, publish atomically.
type Pipeline struct {
	api       GameAPI
	publisher Publisher
	costs     deck.CostIndex
	cfg       Config
	logger    *slog.Logger
}

// New builds a Pipeline. Zero-valued config fields fall back to defaults.
func New(api GameAPI, publisher Publisher, costs deck.CostIndex, cfg Config, logger *slog.Logger) *Pipeline {
	def := DefaultConfig()
	if cfg.PlayersToSample <= 0 {
		cfg.PlayersToSample = def.PlayersToSample
	}
	if cfg.Location == "" {
		cfg.Location = def.Location
	}
	if cfg.ClanLimit <= 0 {
		cfg.ClanLimit = def.ClanLimit
	}
	if cfg.TopMembersPerClan <= 0 {
		cfg.TopMembersPerClan = def.TopMembersPerClan
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.BattlesPerPlayer <= 0 {
		cfg.BattlesPerPlayer = def.BattlesPerPlayer
	}
	if cfg.MinSampleSize <= 0 {
		cfg.MinSampleSize = def.MinSampleSize
	}
	if cfg.KeepGenerations <= 0 {
		cfg.KeepGenerations = def.KeepGenerations
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{api: api, publisher: publisher, costs: costs, cfg: cfg, logger: logger}
}

// Run executes one full pipeline pass. Readers keep seeing the previous
// snapshot until Publish commits; a failed run leaves it untouched.
func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	start := time.Now()

	seeds, err := DiscoverSeeds(ctx, p.api, DiscoveryConfig{
		PlayersToSample:   p.cfg.PlayersToSample,
		Location:          p.cfg.Location,
		ClanLimit:         p.cfg.ClanLimit,
		TopMembersPerClan: p.cfg.TopMembersPerClan,
	}, p.logger)
	if err != nil {
		return nil, fmt.Errorf("discover seeds: %w", err)
	}

	results, err := FetchBattles(ctx, p.api, seeds, FetcherConfig{
		Concurrency:      p.cfg.Concurrency,
		BattlesPerPlayer: p.cfg.BattlesPerPlayer,
	}, p.logger)
	if err != nil {
		return nil, fmt.Errorf("fetch battles: %w", err)
	}

	agg := NewAggregator(p.cfg.MinSampleSize)
	sampled, failed := 0, 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			continue
		}
		sampled++
		agg.AddBattles(res.Seed, res.Battles)
	}

	metaDecks := BuildMetaDecks(agg.DeckAggregations(), p.costs)
	counterDecks := BuildCounterDecks(agg.MatchupAggregations(), p.costs)

	genID, err := p.publisher.Publish(ctx, metaDecks, counterDecks, sampled, agg.BattlesProcessed())
	if err != nil {
		return nil, fmt.Errorf("publish snapshot: %w", err)
	}

	if err := p.publisher.PruneGenerations(ctx, p.cfg.KeepGenerations); err != nil {
		p.logger.Warn("pruning old generations failed", "error", err)
	}

	report := &RunReport{
		GenerationID:     genID,
		PlayersSampled:   sampled,
		PlayersFailed:    failed,
		BattlesProcessed: agg.BattlesProcessed(),
		BattlesSkipped:   agg.BattlesSkipped(),
		MetaDecks:        len(metaDecks),
		CounterDecks:     len(counterDecks),
		Duration:         time.Since(start),
	}
	p.logger.Info("pipeline run complete",
		"generation", genID,
		"players", sampled,
		"failed", failed,
		"battles", report.BattlesProcessed,
		"meta_decks", report.MetaDecks,
		"counter_decks", report.CounterDecks,
		"duration", report.Duration)
	return report, nil
}
