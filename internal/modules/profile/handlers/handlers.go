// Package handlers provides HTTP handlers for risk profiles and limits.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/miowsis/analytics/internal/domain"
)

// Handler handles risk profile HTTP requests
type Handler struct {
	store domain.ProfileStore
	log   zerolog.Logger
}

// NewHandler creates a new profile handler
func NewHandler(store domain.ProfileStore, log zerolog.Logger) *Handler {
	return &Handler{
		store: store,
		log:   log.With().Str("handler", "profile").Logger(),
	}
}

// RegisterRoutes registers profile routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/users/{userID}/profile", h.HandleGetProfile)
	r.Put("/users/{userID}/profile", h.HandleSaveProfile)
	r.Get("/users/{userID}/limits", h.HandleGetLimits)
	r.Put("/users/{userID}/limits", h.HandleReplaceLimits)
}

// HandleGetProfile handles GET /api/users/{userID}/profile
func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	profile, err := h.store.GetProfile(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to get profile")
		h.writeError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}
	if profile == nil {
		h.writeError(w, http.StatusNotFound, "profile not found")
		return
	}

	h.writeJSON(w, http.StatusOK, profile)
}

// HandleSaveProfile handles PUT /api/users/{userID}/profile
func (h *Handler) HandleSaveProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var profile domain.RiskProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	profile.UserID = userID

	if err := h.store.SaveProfile(r.Context(), &profile); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to save profile")
		h.writeError(w, http.StatusInternalServerError, "failed to save profile")
		return
	}

	h.writeJSON(w, http.StatusOK, profile)
}

// HandleGetLimits handles GET /api/users/{userID}/limits
func (h *Handler) HandleGetLimits(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	enabledOnly := r.URL.Query().Get("enabled") == "true"

	limits, err := h.store.GetLimits(r.Context(), userID, enabledOnly)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to get limits")
		h.writeError(w, http.StatusInternalServerError, "failed to get limits")
		return
	}
	if limits == nil {
		limits = []domain.RiskLimit{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"limits": limits})
}

// HandleReplaceLimits handles PUT /api/users/{userID}/limits
func (h *Handler) HandleReplaceLimits(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req struct {
		Limits []domain.RiskLimit `json:"limits"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	limits, err := h.store.ReplaceLimits(r.Context(), userID, req.Limits)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to replace limits")
		h.writeError(w, http.StatusInternalServerError, "failed to replace limits")
		return
	}
	if limits == nil {
		limits = []domain.RiskLimit{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"limits": limits})
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
