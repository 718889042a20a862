// Package handlers provides HTTP handlers for limit checks and rebalancing
// suggestions.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/miowsis/analytics/internal/domain"
	"github.com/miowsis/analytics/internal/modules/rebalancing"
)

// Handler handles rebalancing HTTP requests
type Handler struct {
	service *rebalancing.Service
	log     zerolog.Logger
}

// NewHandler creates a new rebalancing handler
func NewHandler(service *rebalancing.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "rebalancing").Logger(),
	}
}

// RegisterRoutes registers rebalancing routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/portfolios/{portfolioID}/violations", h.HandleCheckLimits)
	r.Get("/portfolios/{portfolioID}/rebalancing", h.HandleGetSuggestions)
}

// HandleCheckLimits handles GET /api/portfolios/{portfolioID}/violations
func (h *Handler) HandleCheckLimits(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioID")
	userID := r.URL.Query().Get("user_id")

	violations, err := h.service.CheckLimits(r.Context(), portfolioID, userID)
	if errors.Is(err, domain.ErrPortfolioNotFound) {
		h.writeError(w, http.StatusNotFound, "portfolio not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("portfolio_id", portfolioID).Msg("Failed to check limits")
		h.writeError(w, http.StatusInternalServerError, "failed to check limits")
		return
	}
	if violations == nil {
		violations = []rebalancing.Violation{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"violations": violations})
}

// HandleGetSuggestions handles GET /api/portfolios/{portfolioID}/rebalancing
func (h *Handler) HandleGetSuggestions(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioID")
	userID := r.URL.Query().Get("user_id")

	plan, err := h.service.GetSuggestions(r.Context(), portfolioID, userID)
	if errors.Is(err, domain.ErrPortfolioNotFound) {
		h.writeError(w, http.StatusNotFound, "portfolio not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("portfolio_id", portfolioID).Msg("Failed to build suggestions")
		h.writeError(w, http.StatusInternalServerError, "failed to build suggestions")
		return
	}

	h.writeJSON(w, http.StatusOK, plan)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
