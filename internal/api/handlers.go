package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Amadeea/book-notes/internal/apperr"
	"github.com/Amadeea/book-notes/internal/bookservice"
)

// Handler holds the note route handlers.
type Handler struct {
	books *bookservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(books *bookservice.Service) *Handler {
	return &Handler{books: books}
}

// noteID parses the id URL parameter. ok is false when it is missing or not
// an integer; the response has already been written in that case.
func noteID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be an integer")
		return 0, false
	}
	return id, true
}

// noteError converts a note operation error to a response. Every failure on
// the note endpoints maps to 400; system faults are logged first.
func noteError(w http.ResponseWriter, op string, err error) {
	if apperr.IsFailure(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slog.Error(op+" failed", slog.String("error", err.Error()))
	writeError(w, http.StatusBadRequest, "internal error")
}

// ListNotes handles GET /notes/list.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.books.List(r.Context())
	if err != nil {
		noteError(w, "list notes", err)
		return
	}
	writeData(w, http.StatusOK, notes)
}

// GetNote handles GET /notes/{id}. The result is a zero-or-one element
// array; an unknown id is an empty array, not an error.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}
	notes, err := h.books.Get(r.Context(), id)
	if err != nil {
		noteError(w, "get note", err)
		return
	}
	writeData(w, http.StatusOK, notes)
}

// CreateNote handles POST /notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var in bookservice.NoteInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	note, err := h.books.Create(r.Context(), in)
	if err != nil {
		noteError(w, "create note", err)
		return
	}
	writeData(w, http.StatusOK, note)
}

// UpdateNote handles PUT /notes. The body carries the id plus the full set
// of editable fields; the stored row is replaced column for column.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ID *int64 `json:"id"`
		bookservice.NoteInput
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if in.ID == nil {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	note, err := h.books.Edit(r.Context(), *in.ID, in.NoteInput)
	if err != nil {
		noteError(w, "update note", err)
		return
	}
	writeData(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /notes/{id}. Deleting an id that does not exist
// still succeeds.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}
	if err := h.books.Delete(r.Context(), id); err != nil {
		noteError(w, "delete note", err)
		return
	}
	writeData(w, http.StatusOK, nil)
}
