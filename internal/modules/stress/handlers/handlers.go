// Package handlers provides HTTP handlers for stress tests and projections.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/miowsis/analytics/internal/domain"
	"github.com/miowsis/analytics/internal/modules/stress"
)

// Handler handles stress testing HTTP requests
type Handler struct {
	service *stress.Service
	log     zerolog.Logger
}

// NewHandler creates a new stress handler
func NewHandler(service *stress.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "stress").Logger(),
	}
}

// RegisterRoutes registers stress testing routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/portfolios/{portfolioID}/stress-tests", h.HandleStressTests)
	r.Get("/portfolios/{portfolioID}/projections", h.HandleProjections)
}

// HandleStressTests handles GET /api/portfolios/{portfolioID}/stress-tests
func (h *Handler) HandleStressTests(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioID")

	report, err := h.service.RunStressTests(r.Context(), portfolioID)
	if errors.Is(err, domain.ErrPortfolioNotFound) {
		h.writeError(w, http.StatusNotFound, "portfolio not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("portfolio_id", portfolioID).Msg("Failed to run stress tests")
		h.writeError(w, http.StatusInternalServerError, "failed to run stress tests")
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

// HandleProjections handles GET /api/portfolios/{portfolioID}/projections
func (h *Handler) HandleProjections(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioID")

	projections, err := h.service.GetProjections(r.Context(), portfolioID)
	if errors.Is(err, domain.ErrPortfolioNotFound) {
		h.writeError(w, http.StatusNotFound, "portfolio not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("portfolio_id", portfolioID).Msg("Failed to build projections")
		h.writeError(w, http.StatusInternalServerError, "failed to build projections")
		return
	}

	h.writeJSON(w, http.StatusOK, projections)
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
