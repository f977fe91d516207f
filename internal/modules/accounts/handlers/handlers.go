// Package handlers provides HTTP handlers for account management.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/zhixing/journal/internal/domain"
	"github.com/zhixing/journal/internal/modules/accounts"
)

// AccountHandlers contains HTTP handlers for the accounts API
type AccountHandlers struct {
	service *accounts.Service
	log     zerolog.Logger
}

// NewAccountHandlers creates a new account handlers instance
func NewAccountHandlers(service *accounts.Service, log zerolog.Logger) *AccountHandlers {
	return &AccountHandlers{
		service: service,
		log:     log.With().Str("handler", "accounts").Logger(),
	}
}

// RegisterRoutes registers all account routes
func (h *AccountHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.HandleListAccounts)
		r.Post("/", h.HandleCreateAccount)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGetAccount)
			r.Put("/", h.HandleUpdateAccount)
			r.Delete("/", h.HandleDeleteAccount)
		})
	})
}

// HandleListAccounts returns all accounts
// GET /api/v1/accounts
func (h *AccountHandlers) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListAccounts()
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

// HandleCreateAccount records a new account
// POST /api/v1/accounts
func (h *AccountHandlers) HandleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var account domain.Account
	if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.service.CreateAccount(&account)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, created)
}

// HandleGetAccount returns a single account
// GET /api/v1/accounts/{id}
func (h *AccountHandlers) HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.GetAccount(chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, account)
}

// HandleUpdateAccount updates an account
// PUT /api/v1/accounts/{id}
func (h *AccountHandlers) HandleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var account domain.Account
	if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.service.UpdateAccount(chi.URLParam(r, "id"), &account)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, updated)
}

// HandleDeleteAccount removes an account
// DELETE /api/v1/accounts/{id}
func (h *AccountHandlers) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAccount(chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandlers) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNoAccountAvailable),
		errors.Is(err, domain.ErrValidation):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error().Err(err).Msg("Account operation failed")
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// writeJSON writes a JSON response
func (h *AccountHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *AccountHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
