// Package handlers provides HTTP handlers for journal notes.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/zhixing/journal/internal/domain"
	"github.com/zhixing/journal/internal/modules/notes"
)

// NoteHandlers contains HTTP handlers for the notes API
type NoteHandlers struct {
	repo *notes.Repository
	log  zerolog.Logger
}

// NewNoteHandlers creates a new note handlers instance
func NewNoteHandlers(repo *notes.Repository, log zerolog.Logger) *NoteHandlers {
	return &NoteHandlers{
		repo: repo,
		log:  log.With().Str("handler", "notes").Logger(),
	}
}

// RegisterRoutes registers all note routes
func (h *NoteHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/notes", func(r chi.Router) {
		r.Get("/", h.HandleListNotes)
		r.Post("/", h.HandleCreateNote)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGetNote)
			r.Put("/", h.HandleUpdateNote)
			r.Delete("/", h.HandleDeleteNote)
		})
	})
}

// HandleListNotes returns notes, optionally filtered by symbol
// GET /api/v1/notes?symbol=AAPL
func (h *NoteHandlers) HandleListNotes(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(r.URL.Query().Get("symbol"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

// HandleCreateNote records a new note
// POST /api/v1/notes
func (h *NoteHandlers) HandleCreateNote(w http.ResponseWriter, r *http.Request) {
	var note domain.Note
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.repo.Create(&note)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, created)
}

// HandleGetNote returns a single note
// GET /api/v1/notes/{id}
func (h *NoteHandlers) HandleGetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.repo.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, note)
}

// HandleUpdateNote replaces a note's fields
// PUT /api/v1/notes/{id}
func (h *NoteHandlers) HandleUpdateNote(w http.ResponseWriter, r *http.Request) {
	var note domain.Note
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.repo.Update(chi.URLParam(r, "id"), &note)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, updated)
}

// HandleDeleteNote removes a note
// DELETE /api/v1/notes/{id}
func (h *NoteHandlers) HandleDeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NoteHandlers) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNoteNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrValidation):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error().Err(err).Msg("Note operation failed")
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// writeJSON writes a JSON response
func (h *NoteHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *NoteHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
