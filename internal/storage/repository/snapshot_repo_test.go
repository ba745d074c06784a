package repository

import (
	"context"
	"testing"

	"github.com/ramonehamilton/royale-meta/internal/storage/models"
)

func sampleMetaDecks() []models.MetaDeckResult {
	return []models.MetaDeckResult{
		{ArenaID: 10, DeckKey: "cannon|hog rider", Games: 80, Wins: 50, Losses: 25, Draws: 5,
			ThreeCrownWins: 10, WinRate: 62.5, UsageRate: 40.0, ThreeCrownRate: 12.5, AvgElixir: 3.1, Archetype: "Cycle"},
		{ArenaID: 10, DeckKey: "golem|night witch", Games: 120, Wins: 60, Losses: 55, Draws: 5,
			ThreeCrownWins: 30, WinRate: 50.0, UsageRate: 60.0, ThreeCrownRate: 25.0, AvgElixir: 4.4, Archetype: "Beatdown"},
	}
}

func sampleCounterDecks() []models.CounterDeckResult {
	return []models.CounterDeckResult{
		{ArenaID: 10, DeckKey: "cannon|hog rider", TargetCard: "golem", WinsVersus: 40,
			TotalVersus: 60, ThreeCrownWins: 8, WinRate: 66.7, ThreeCrownRate: 13.3, AvgElixir: 3.1},
		{ArenaID: 11, DeckKey: "x-bow|tesla", TargetCard: "golem", WinsVersus: 12,
			TotalVersus: 20, ThreeCrownWins: 1, WinRate: 60.0, ThreeCrownRate: 5.0, AvgElixir: 3.0},
	}
}

func TestSnapshotRepository_PublishAndRead(t *testing.T) {
	repo := NewSnapshotRepository(setupTestDB(t))
	ctx := context.Background()

	genID, err := repo.Publish(ctx, sampleMetaDecks(), sampleCounterDecks(), 200, 4800)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if genID == 0 {
		t.Fatal("expected non-zero generation id")
	}

	current, err := repo.Current(ctx)
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if current == nil || current.GenerationID != genID {
		t.Fatalf("current = %+v, want generation %d", current, genID)
	}
	if current.PlayersSampled != 200 || current.BattlesProcessed != 4800 {
		t.Errorf("counts = %d/%d, want 200/4800", current.PlayersSampled, current.BattlesProcessed)
	}

	decks, err := repo.MetaDecks(ctx, 10)
	if err != nil {
		t.Fatalf("MetaDecks failed: %v", err)
	}
	if len(decks) != 2 {
		t.Fatalf("expected 2 meta decks, got %d", len(decks))
	}
	// Ranked descending by win rate.
	if decks[0].WinRate < decks[1].WinRate {
		t.Errorf("meta decks not ranked by win rate: %v, %v", decks[0].WinRate, decks[1].WinRate)
	}
	// Cards are rebuilt from the key on read.
	if len(decks[0].Cards) != 2 {
		t.Errorf("cards not rebuilt from key: %v", decks[0].Cards)
	}

	counters, err := repo.CounterDecks(ctx, "golem", 10)
	if err != nil {
		t.Fatalf("CounterDecks failed: %v", err)
	}
	if len(counters) != 1 || counters[0].DeckKey != "cannon|hog rider" {
		t.Errorf("unexpected counters: %+v", counters)
	}

	all, err := repo.CounterDecksAllArenas(ctx, "golem")
	if err != nil {
		t.Fatalf("CounterDecksAllArenas failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 rows across arenas, got %d", len(all))
	}
}

func TestSnapshotRepository_PublishReplacesAtomically(t *testing.T) {
	repo := NewSnapshotRepository(setupTestDB(t))
	ctx := context.Background()

	first, err := repo.Publish(ctx, sampleMetaDecks(), sampleCounterDecks(), 100, 2000)
	if err != nil {
		t.Fatalf("first Publish failed: %v", err)
	}

	replacement := []models.MetaDeckResult{
		{ArenaID: 10, DeckKey: "miner|wall breakers", Games: 60, Wins: 33, Losses: 27,
			WinRate: 55.0, UsageRate: 100.0, AvgElixir: 3.3, Archetype: "Cycle"},
	}
	second, err := repo.Publish(ctx, replacement, nil, 150, 3000)
	if err != nil {
		t.Fatalf("second Publish failed: %v", err)
	}
	if second <= first {
		t.Errorf("generation ids not increasing: %d then %d", first, second)
	}

	current, err := repo.Current(ctx)
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if current.GenerationID != second {
		t.Errorf("current generation = %d, want %d", current.GenerationID, second)
	}

	// Reads resolve only the new generation.
	decks, err := repo.MetaDecks(ctx, 10)
	if err != nil {
		t.Fatalf("MetaDecks failed: %v", err)
	}
	if len(decks) != 1 || decks[0].DeckKey != "miner|wall breakers" {
		t.Errorf("old snapshot leaked through: %+v", decks)
	}

	// The replaced counter decks are gone from the current view.
	counters, err := repo.CounterDecks(ctx, "golem", 10)
	if err != nil {
		t.Fatalf("CounterDecks failed: %v", err)
	}
	if len(counters) != 0 {
		t.Errorf("expected no counters in new generation, got %+v", counters)
	}
}

func TestSnapshotRepository_CurrentBeforeFirstPublish(t *testing.T) {
	repo := NewSnapshotRepository(setupTestDB(t))

	current, err := repo.Current(context.Background())
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if current != nil {
		t.Errorf("expected nil before first publish, got %+v", current)
	}
}

func TestSnapshotRepository_PruneGenerations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSnapshotRepository(db)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if _, err := repo.Publish(ctx, sampleMetaDecks(), nil, 10, 100); err != nil {
			t.Fatalf("Publish %d failed: %v", i, err)
		}
	}

	if err := repo.PruneGenerations(ctx, 2); err != nil {
		t.Fatalf("PruneGenerations failed: %v", err)
	}

	var generations int
	if err := db.QueryRow(`SELECT COUNT(*) FROM snapshot_generations`).Scan(&generations); err != nil {
		t.Fatal(err)
	}
	if generations != 2 {
		t.Errorf("expected 2 generations after prune, got %d", generations)
	}

	// The current generation survives pruning.
	current, err := repo.Current(ctx)
	if err != nil || current == nil {
		t.Fatalf("Current after prune: %+v, %v", current, err)
	}

	var orphans int
	if err := db.QueryRow(`
		SELECT COUNT(*) FROM meta_decks
		WHERE generation_id NOT IN (SELECT id FROM snapshot_generations)
	`).Scan(&orphans); err != nil {
		t.Fatal(err)
	}
	if orphans != 0 {
		t.Errorf("expected no orphaned meta rows, got %d", orphans)
	}
}
