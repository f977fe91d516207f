package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all trade routes
func (h *TradeHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/trades", func(r chi.Router) {
		r.Get("/", h.HandleSearchTrades)
		r.Post("/plan", h.HandleCreatePlan)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGetTrade)
			r.Put("/", h.HandleUpdateTrade)
			r.Delete("/", h.HandleDeleteTrade)
			r.Post("/execute", h.HandleExecuteTrade)
			r.Post("/close", h.HandleCloseTrade)
		})
	})
}
