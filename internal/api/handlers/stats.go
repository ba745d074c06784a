package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/royale-meta/internal/api/response"
	"github.com/ramonehamilton/royale-meta/internal/royale"
	"github.com/ramonehamilton/royale-meta/internal/stats"
)

// PlayerStats is the season stats surface the player endpoints use.
type PlayerStats interface {
	PlayerDecks(ctx context.Context, playerTag string, season *int) ([]stats.DeckStats, error)
	PlayerCards(ctx context.Context, playerTag string, season *int) ([]stats.CardWinRate, error)
	PlayerMatchups(ctx context.Context, playerTag, deckKey string) ([]stats.MatchupStats, error)
	PlayerSeasonSummary(ctx context.Context, playerTag string, season int) (stats.SeasonSummary, error)
	PlayerStreaks(ctx context.Context, playerTag string) (stats.StreakStats, error)
}

// StatsHandler serves per-player season statistics.
type StatsHandler struct {
	stats PlayerStats
}

// NewStatsHandler creates a stats handler.
func NewStatsHandler(stats PlayerStats) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// playerTag extracts and normalizes the player tag path parameter. Tags
// arrive either URL-encoded with their leading # or without it.
func playerTag(r *http.Request) string {
	tag := chi.URLParam(r, "playerTag")
	if tag != "" && !strings.HasPrefix(tag, "#") {
		tag = "#" + tag
	}
	return strings.ToUpper(tag)
}

// seasonFilter parses an optional ?season= query parameter.
func seasonFilter(r *http.Request) (*int, error) {
	param := r.URL.Query().Get("season")
	if param == "" {
		return nil, nil
	}
	season, err := strconv.Atoi(param)
	if err != nil || season < 1 {
		return nil, fmt.Errorf("invalid season %q", param)
	}
	return &season, nil
}

func (h *StatsHandler) respondError(w http.ResponseWriter, err error) {
	var notFound *royale.NotFoundError
	if errors.As(err, &notFound) {
		response.NotFound(w, err)
		return
	}
	var unavailable *royale.UnavailableError
	var throttled *royale.ThrottledError
	if errors.As(err, &unavailable) || errors.As(err, &throttled) {
		response.ServiceUnavailable(w, err)
		return
	}
	response.InternalError(w, err)
}

// GetDecks handles GET /api/v1/stats/{playerTag}/decks?season=.
func (h *StatsHandler) GetDecks(w http.ResponseWriter, r *http.Request) {
	season, err := seasonFilter(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	decks, err := h.stats.PlayerDecks(r.Context(), playerTag(r), season)
	if err != nil {
		h.respondError(w, err)
		return
	}
	response.Success(w, decks)
}

// GetCards handles GET /api/v1/stats/{playerTag}/cards?season=.
func (h *StatsHandler) GetCards(w http.ResponseWriter, r *http.Request) {
	season, err := seasonFilter(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	cards, err := h.stats.PlayerCards(r.Context(), playerTag(r), season)
	if err != nil {
		h.respondError(w, err)
		return
	}
	response.Success(w, cards)
}

// GetMatchups handles GET /api/v1/stats/{playerTag}/matchups?deck=.
func (h *StatsHandler) GetMatchups(w http.ResponseWriter, r *http.Request) {
	deckKey := r.URL.Query().Get("deck")
	if deckKey == "" {
		response.BadRequest(w, fmt.Errorf("deck query parameter is required"))
		return
	}

	matchups, err := h.stats.PlayerMatchups(r.Context(), playerTag(r), deckKey)
	if err != nil {
		h.respondError(w, err)
		return
	}
	response.Success(w, matchups)
}

// GetSeasonSummary handles GET /api/v1/stats/{playerTag}/seasons/{season}.
func (h *StatsHandler) GetSeasonSummary(w http.ResponseWriter, r *http.Request) {
	seasonParam := chi.URLParam(r, "season")
	season, err := strconv.Atoi(seasonParam)
	if err != nil || season < 1 {
		response.BadRequest(w, fmt.Errorf("invalid season %q", seasonParam))
		return
	}

	summary, err := h.stats.PlayerSeasonSummary(r.Context(), playerTag(r), season)
	if err != nil {
		h.respondError(w, err)
		return
	}
	response.Success(w, summary)
}

// GetStreaks handles GET /api/v1/stats/{playerTag}/streaks.
func (h *StatsHandler) GetStreaks(w http.ResponseWriter, r *http.Request) {
	streaks, err := h.stats.PlayerStreaks(r.Context(), playerTag(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	response.Success(w, streaks)
}
