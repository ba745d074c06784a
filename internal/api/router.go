package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/royale-meta/internal/api/response"
	"github.com/ramonehamilton/royale-meta/internal/version"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	// API v1 routes
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/meta", s.metaHandler.GetMetaDecks)
		r.Get("/counters/{card}", s.counterHandler.GetCounters)

		r.Route("/stats/{playerTag}", func(r chi.Router) {
			r.Get("/decks", s.statsHandler.GetDecks)
			r.Get("/cards", s.statsHandler.GetCards)
			r.Get("/matchups", s.statsHandler.GetMatchups)
			r.Get("/seasons/{season}", s.statsHandler.GetSeasonSummary)
			r.Get("/streaks", s.statsHandler.GetStreaks)
		})

		r.Get("/system/health", s.systemHandler.GetHealth)
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "royale-meta-api",
		"version": version.GetVersion(),
	})
}
