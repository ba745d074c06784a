// Package handlers implements the read API endpoints.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ramonehamilton/royale-meta/internal/api/response"
	"github.com/ramonehamilton/royale-meta/internal/storage/models"
)

// MetaStore is the snapshot read surface the meta endpoints use.
type MetaStore interface {
	MetaDecks(ctx context.Context, arenaID int) ([]models.MetaDeckResult, error)
	AllMetaDecks(ctx context.Context) ([]models.MetaDeckResult, error)
}

// MetaHandler serves the published meta-deck rankings.
type MetaHandler struct {
	store MetaStore
}

// NewMetaHandler creates a meta handler.
func NewMetaHandler(store MetaStore) *MetaHandler {
	return &MetaHandler{store: store}
}

// GetMetaDecks handles GET /api/v1/meta?arena=. Without an arena filter it
// returns every arena's decks.
func (h *MetaHandler) GetMetaDecks(w http.ResponseWriter, r *http.Request) {
	arenaParam := r.URL.Query().Get("arena")
	if arenaParam == "" {
		decks, err := h.store.AllMetaDecks(r.Context())
		if err != nil {
			response.InternalError(w, err)
			return
		}
		response.Success(w, decks)
		return
	}

	arenaID, err := strconv.Atoi(arenaParam)
	if err != nil || arenaID <= 0 {
		response.BadRequest(w, fmt.Errorf("invalid arena %q", arenaParam))
		return
	}

	decks, err := h.store.MetaDecks(r.Context(), arenaID)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, decks)
}
