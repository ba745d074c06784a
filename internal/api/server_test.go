package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ramonehamilton/royale-meta/internal/stats"
	"github.com/ramonehamilton/royale-meta/internal/storage/models"
)

type fakeMetaStore struct {
	byArena map[int][]models.MetaDeckResult
	all     []models.MetaDeckResult
}

func (f *fakeMetaStore) MetaDecks(_ context.Context, arenaID int) ([]models.MetaDeckResult, error) {
	return f.byArena[arenaID], nil
}

func (f *fakeMetaStore) AllMetaDecks(_ context.Context) ([]models.MetaDeckResult, error) {
	return f.all, nil
}

type fakeCounterFinder struct {
	result *models.CounterQueryResult
	card   string
	arena  int
}

func (f *fakeCounterFinder) FindCounterDecks(_ context.Context, card string, arenaID int) (*models.CounterQueryResult, error) {
	f.card, f.arena = card, arenaID
	return f.result, nil
}

type fakePlayerStats struct {
	decks   []stats.DeckStats
	lastTag string
	season  *int
}

func (f *fakePlayerStats) PlayerDecks(_ context.Context, tag string, season *int) ([]stats.DeckStats, error) {
	f.lastTag, f.season = tag, season
	return f.decks, nil
}

func (f *fakePlayerStats) PlayerCards(_ context.Context, tag string, _ *int) ([]stats.CardWinRate, error) {
	f.lastTag = tag
	return nil, nil
}

func (f *fakePlayerStats) PlayerMatchups(_ context.Context, tag, _ string) ([]stats.MatchupStats, error) {
	f.lastTag = tag
	return nil, nil
}

func (f *fakePlayerStats) PlayerSeasonSummary(_ context.Context, tag string, season int) (stats.SeasonSummary, error) {
	f.lastTag = tag
	return stats.SeasonSummary{Season: season}, nil
}

func (f *fakePlayerStats) PlayerStreaks(_ context.Context, tag string) (stats.StreakStats, error) {
	f.lastTag = tag
	return stats.StreakStats{CurrentStreak: 3}, nil
}

type fakeSnapshotInfo struct {
	info *models.SnapshotInfo
	err  error
}

func (f *fakeSnapshotInfo) Current(_ context.Context) (*models.SnapshotInfo, error) {
	return f.info, f.err
}

func testServer(t *testing.T) (*Server, *fakeMetaStore, *fakeCounterFinder, *fakePlayerStats, *fakeSnapshotInfo) {
	t.Helper()
	meta := &fakeMetaStore{byArena: map[int][]models.MetaDeckResult{}}
	counters := &fakeCounterFinder{result: &models.CounterQueryResult{Results: []models.CounterDeckResult{}, LimitedData: true}}
	players := &fakePlayerStats{}
	snapshots := &fakeSnapshotInfo{}

	srv := NewServer(nil, &Services{
		Meta:      meta,
		Counters:  counters,
		Stats:     players,
		Snapshots: snapshots,
	}, nil)
	return srv, meta, counters, players, snapshots
}

func doGet(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	srv, _, _, _, _ := testServer(t)

	rec := doGet(t, srv, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGetMetaDecks_ByArena(t *testing.T) {
	srv, meta, _, _, _ := testServer(t)
	meta.byArena[12] = []models.MetaDeckResult{{ArenaID: 12, DeckKey: "a|b"}}

	rec := doGet(t, srv, "/api/v1/meta?arena=12")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data []models.MetaDeckResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Data) != 1 || body.Data[0].ArenaID != 12 {
		t.Errorf("unexpected payload: %+v", body.Data)
	}
}

func TestGetMetaDecks_AllArenas(t *testing.T) {
	srv, meta, _, _, _ := testServer(t)
	meta.all = []models.MetaDeckResult{{ArenaID: 1}, {ArenaID: 2}}

	rec := doGet(t, srv, "/api/v1/meta")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGetMetaDecks_InvalidArena(t *testing.T) {
	srv, _, _, _, _ := testServer(t)

	rec := doGet(t, srv, "/api/v1/meta?arena=zero")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetCounters(t *testing.T) {
	srv, _, counters, _, _ := testServer(t)

	rec := doGet(t, srv, "/api/v1/counters/golem?arena=12")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if counters.card != "golem" || counters.arena != 12 {
		t.Errorf("finder called with (%q, %d)", counters.card, counters.arena)
	}
}

func TestGetCounters_MissingArena(t *testing.T) {
	srv, _, _, _, _ := testServer(t)

	rec := doGet(t, srv, "/api/v1/counters/golem")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetPlayerDecks_TagAndSeason(t *testing.T) {
	srv, _, _, players, _ := testServer(t)
	players.decks = []stats.DeckStats{{DeckKey: "a|b", Battles: 4}}

	rec := doGet(t, srv, "/api/v1/stats/2PP/decks?season=120")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if players.lastTag != "#2PP" {
		t.Errorf("expected normalized tag #2PP, got %q", players.lastTag)
	}
	if players.season == nil || *players.season != 120 {
		t.Errorf("expected season filter 120, got %v", players.season)
	}
}

func TestGetPlayerDecks_InvalidSeason(t *testing.T) {
	srv, _, _, _, _ := testServer(t)

	rec := doGet(t, srv, "/api/v1/stats/2PP/decks?season=ancient")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetPlayerMatchups_RequiresDeck(t *testing.T) {
	srv, _, _, _, _ := testServer(t)

	rec := doGet(t, srv, "/api/v1/stats/2PP/matchups")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetSeasonSummary(t *testing.T) {
	srv, _, _, _, _ := testServer(t)

	rec := doGet(t, srv, "/api/v1/stats/2PP/seasons/120")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doGet(t, srv, "/api/v1/stats/2PP/seasons/first")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad season, got %d", rec.Code)
	}
}

func TestGetStreaks(t *testing.T) {
	srv, _, _, _, _ := testServer(t)

	rec := doGet(t, srv, "/api/v1/stats/2PP/streaks")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Data stats.StreakStats `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Data.CurrentStreak != 3 {
		t.Errorf("expected current streak 3, got %d", body.Data.CurrentStreak)
	}
}

func TestSystemHealth(t *testing.T) {
	srv, _, _, _, snapshots := testServer(t)
	snapshots.info = &models.SnapshotInfo{GenerationID: 4, PlayersSampled: 200}

	rec := doGet(t, srv, "/api/v1/system/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Status   string               `json:"status"`
		Snapshot *models.SnapshotInfo `json:"snapshot"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Status != "healthy" || body.Snapshot == nil || body.Snapshot.GenerationID != 4 {
		t.Errorf("unexpected health payload: %+v", body)
	}
}

func TestSystemHealth_NoSnapshotYet(t *testing.T) {
	srv, _, _, _, _ := testServer(t)

	rec := doGet(t, srv, "/api/v1/system/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("a missing snapshot is still healthy, got %d", rec.Code)
	}
}
