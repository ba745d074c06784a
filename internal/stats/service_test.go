package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ramonehamilton/royale-meta/internal/cache"
	"github.com/ramonehamilton/royale-meta/internal/royale"
	"github.com/ramonehamilton/royale-meta/internal/storage/models"
)

type fakeSource struct {
	battles []royale.Battle
	err     error
	calls   int
}

func (f *fakeSource) GetBattleLog(_ context.Context, _ string) ([]royale.Battle, error) {
	f.calls++
	return f.battles, f.err
}

type memBattleRepo struct {
	stored  map[string][]models.StoredBattle
	fetched map[string]time.Time
}

func newMemBattleRepo() *memBattleRepo {
	return &memBattleRepo{
		stored:  make(map[string][]models.StoredBattle),
		fetched: make(map[string]time.Time),
	}
}

func (m *memBattleRepo) ReplaceForPlayer(_ context.Context, tag string, battles []models.StoredBattle) error {
	m.stored[tag] = battles
	m.fetched[tag] = time.Now()
	return nil
}

func (m *memBattleRepo) ListForPlayer(_ context.Context, tag string) ([]models.StoredBattle, error) {
	return m.stored[tag], nil
}

func (m *memBattleRepo) LastFetched(_ context.Context, tag string) (time.Time, error) {
	return m.fetched[tag], nil
}

func TestService_RefreshAndCompute(t *testing.T) {
	source := &fakeSource{battles: []royale.Battle{
		rawBattle(3, 0),
		rawBattle(1, 0),
		rawBattle(0, 2),
	}}
	repo := newMemBattleRepo()
	svc := NewService(source, repo, nil, time.Hour, nil)
	ctx := context.Background()

	decks, err := svc.PlayerDecks(ctx, "#PLAYER", nil)
	if err != nil {
		t.Fatalf("PlayerDecks failed: %v", err)
	}
	if source.calls != 1 {
		t.Errorf("expected one fetch for a cold player, got %d", source.calls)
	}
	if len(decks) != 1 {
		t.Fatalf("expected 1 deck, got %d", len(decks))
	}
	d := decks[0]
	if d.Battles != 3 || d.Wins != 2 || d.ThreeCrowns != 1 {
		t.Errorf("got battles=%d wins=%d threeCrown=%d, want 3/2/1", d.Battles, d.Wins, d.ThreeCrowns)
	}

	// Fresh data: a second query must not refetch.
	if _, err := svc.PlayerDecks(ctx, "#PLAYER", nil); err != nil {
		t.Fatalf("PlayerDecks failed: %v", err)
	}
	if source.calls != 1 {
		t.Errorf("expected no refetch while fresh, got %d calls", source.calls)
	}
}

func TestService_ServesStoredWhenRefreshFails(t *testing.T) {
	repo := newMemBattleRepo()
	source := &fakeSource{battles: []royale.Battle{rawBattle(1, 0)}}
	svc := NewService(source, repo, nil, time.Hour, nil)
	ctx := context.Background()

	if err := svc.RefreshPlayer(ctx, "#PLAYER"); err != nil {
		t.Fatalf("RefreshPlayer failed: %v", err)
	}

	// Make the stored log stale, then break the source.
	repo.fetched["#PLAYER"] = time.Now().Add(-2 * time.Hour)
	source.err = errors.New("api down")

	decks, err := svc.PlayerDecks(ctx, "#PLAYER", nil)
	if err != nil {
		t.Fatalf("expected stored battles to be served, got error: %v", err)
	}
	if len(decks) != 1 {
		t.Fatalf("expected 1 deck from stored battles, got %d", len(decks))
	}
}

func TestService_ColdPlayerFetchFailure(t *testing.T) {
	svc := NewService(&fakeSource{err: errors.New("api down")}, newMemBattleRepo(), nil, time.Hour, nil)

	if _, err := svc.PlayerDecks(context.Background(), "#PLAYER", nil); err == nil {
		t.Fatal("a player with no stored battles and a failing source must error")
	}
}

func TestService_RefreshInvalidatesCache(t *testing.T) {
	source := &fakeSource{battles: []royale.Battle{rawBattle(1, 0)}}
	repo := newMemBattleRepo()
	svc := NewService(source, repo, NewCache(time.Hour, cache.SystemClock{}), time.Hour, nil)
	ctx := context.Background()

	decks, err := svc.PlayerDecks(ctx, "#PLAYER", nil)
	if err != nil {
		t.Fatalf("PlayerDecks failed: %v", err)
	}
	if len(decks) != 1 || decks[0].Battles != 1 {
		t.Fatalf("unexpected initial decks: %+v", decks)
	}

	source.battles = []royale.Battle{rawBattle(1, 0), rawBattle(0, 1)}
	if err := svc.RefreshPlayer(ctx, "#PLAYER"); err != nil {
		t.Fatalf("RefreshPlayer failed: %v", err)
	}

	decks, err = svc.PlayerDecks(ctx, "#PLAYER", nil)
	if err != nil {
		t.Fatalf("PlayerDecks failed: %v", err)
	}
	if decks[0].Battles != 2 {
		t.Errorf("expected recomputed stats after refresh, got %d battles", decks[0].Battles)
	}
}

func TestService_PlayerStreaks(t *testing.T) {
	source := &fakeSource{battles: []royale.Battle{
		rawBattle(0, 1),
		rawBattle(1, 0),
		rawBattle(2, 0),
	}}
	svc := NewService(source, newMemBattleRepo(), nil, time.Hour, nil)

	streaks, err := svc.PlayerStreaks(context.Background(), "#PLAYER")
	if err != nil {
		t.Fatalf("PlayerStreaks failed: %v", err)
	}
	if streaks.CurrentStreak != 2 {
		t.Errorf("expected current streak 2, got %d", streaks.CurrentStreak)
	}
	if streaks.LongestLossStreak != 1 {
		t.Errorf("expected longest loss streak 1, got %d", streaks.LongestLossStreak)
	}
}
