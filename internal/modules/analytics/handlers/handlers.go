// Package handlers provides HTTP handlers for performance statistics.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/zhixing/journal/internal/modules/analytics"
)

// StatsHandlers contains HTTP handlers for the stats API
type StatsHandlers struct {
	service *analytics.Service
	log     zerolog.Logger
}

// NewStatsHandlers creates a new stats handlers instance
func NewStatsHandlers(service *analytics.Service, log zerolog.Logger) *StatsHandlers {
	return &StatsHandlers{
		service: service,
		log:     log.With().Str("handler", "stats").Logger(),
	}
}

// RegisterRoutes registers all stats routes
func (h *StatsHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/stats", func(r chi.Router) {
		r.Get("/", h.HandleGlobalStats)
		r.Get("/equity-curve", h.HandleEquityCurve)
		r.Get("/extended", h.HandleExtendedStats)
	})
}

// HandleGlobalStats returns global performance statistics
// GET /api/v1/stats
func (h *StatsHandlers) HandleGlobalStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GlobalStats()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute global stats")
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

// HandleEquityCurve returns the cumulative daily pnl series
// GET /api/v1/stats/equity-curve
func (h *StatsHandlers) HandleEquityCurve(w http.ResponseWriter, r *http.Request) {
	curve, err := h.service.EquityCurve()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute equity curve")
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, curve)
}

// HandleExtendedStats returns distribution and streak measures
// GET /api/v1/stats/extended
func (h *StatsHandlers) HandleExtendedStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.ExtendedStats()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute extended stats")
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

// writeJSON writes a JSON response
func (h *StatsHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *StatsHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
