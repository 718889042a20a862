// Package handlers provides HTTP handlers for portfolio analytics reports.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/miowsis/analytics/internal/domain"
	"github.com/miowsis/analytics/internal/modules/analytics"
)

// Handler handles analytics HTTP requests
type Handler struct {
	service *analytics.Service
	log     zerolog.Logger
}

// NewHandler creates a new analytics handler
func NewHandler(service *analytics.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "analytics").Logger(),
	}
}

// RegisterRoutes registers analytics routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/portfolios/{portfolioID}/analytics", h.HandleGetReport)
	r.Post("/portfolios/compare", h.HandleCompare)
}

// HandleGetReport handles GET /api/portfolios/{portfolioID}/analytics
func (h *Handler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioID")
	userID := r.URL.Query().Get("user_id")

	report, err := h.service.GetReport(r.Context(), portfolioID, userID)
	if errors.Is(err, domain.ErrPortfolioNotFound) {
		h.writeError(w, http.StatusNotFound, "portfolio not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("portfolio_id", portfolioID).Msg("Failed to build analytics report")
		h.writeError(w, http.StatusInternalServerError, "failed to build analytics report")
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

// HandleCompare handles POST /api/portfolios/compare
func (h *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PortfolioIDs []string `json:"portfolio_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.PortfolioIDs) < 2 {
		h.writeError(w, http.StatusBadRequest, "at least two portfolio ids are required")
		return
	}

	comparison, err := h.service.ComparePortfolios(r.Context(), req.PortfolioIDs)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compare portfolios")
		h.writeError(w, http.StatusInternalServerError, "failed to compare portfolios")
		return
	}

	h.writeJSON(w, http.StatusOK, comparison)
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
