// Package handlers provides HTTP handlers for portfolio risk assessment.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/miowsis/analytics/internal/domain"
	"github.com/miowsis/analytics/internal/modules/risk"
)

// Handler handles risk assessment HTTP requests
type Handler struct {
	service *risk.Service
	log     zerolog.Logger
}

// NewHandler creates a new risk handler
func NewHandler(service *risk.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "risk").Logger(),
	}
}

// RegisterRoutes registers risk routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/portfolios/{portfolioID}/risk", h.HandleAssess)
}

// HandleAssess handles GET /api/portfolios/{portfolioID}/risk
func (h *Handler) HandleAssess(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioID")
	userID := r.URL.Query().Get("user_id")

	assessment, err := h.service.AssessPortfolio(r.Context(), portfolioID, userID)
	if errors.Is(err, domain.ErrPortfolioNotFound) {
		h.writeError(w, http.StatusNotFound, "portfolio not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("portfolio_id", portfolioID).Msg("Failed to assess portfolio")
		h.writeError(w, http.StatusInternalServerError, "failed to assess portfolio")
		return
	}

	h.writeJSON(w, http.StatusOK, assessment)
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
