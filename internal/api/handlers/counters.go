package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/royale-meta/internal/api/response"
	"github.com/ramonehamilton/royale-meta/internal/storage/models"
)

// CounterFinder resolves counter-deck queries through the tier cascade.
type CounterFinder interface {
	FindCounterDecks(ctx context.Context, targetCard string, arenaID int) (*models.CounterQueryResult, error)
}

// CounterHandler serves counter-deck queries.
type CounterHandler struct {
	finder CounterFinder
}

// NewCounterHandler creates a counter handler.
func NewCounterHandler(finder CounterFinder) *CounterHandler {
	return &CounterHandler{finder: finder}
}

// GetCounters handles GET /api/v1/counters/{card}?arena=. Thin data comes
// back as a limited (possibly empty) result, never an error.
func (h *CounterHandler) GetCounters(w http.ResponseWriter, r *http.Request) {
	card := chi.URLParam(r, "card")
	if card == "" {
		response.BadRequest(w, fmt.Errorf("card name is required"))
		return
	}

	arenaParam := r.URL.Query().Get("arena")
	arenaID, err := strconv.Atoi(arenaParam)
	if err != nil || arenaID <= 0 {
		response.BadRequest(w, fmt.Errorf("invalid arena %q", arenaParam))
		return
	}

	result, err := h.finder.FindCounterDecks(r.Context(), card, arenaID)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, result)
}
