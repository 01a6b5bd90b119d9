package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ownplanner/ownplanner/internal/planner"
)

// noteHandler exposes note and note list CRUD.
type noteHandler struct {
	notes *planner.NoteService
}

func newNoteHandler(notes *planner.NoteService) *noteHandler {
	return &noteHandler{notes: notes}
}

func (h *noteHandler) register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/notes", h.handleCreate)
	mux.HandleFunc("GET /api/v1/notes", h.handleList)
	mux.HandleFunc("GET /api/v1/notes/{id}", h.handleGet)
	mux.HandleFunc("PATCH /api/v1/notes/{id}", h.handleUpdate)
	mux.HandleFunc("DELETE /api/v1/notes/{id}", h.handleDelete)
	mux.HandleFunc("POST /api/v1/notes/{id}/pin", h.handlePin)
	mux.HandleFunc("POST /api/v1/notes/{id}/unpin", h.handleUnpin)

	mux.HandleFunc("POST /api/v1/note-lists", h.handleCreateList)
	mux.HandleFunc("GET /api/v1/note-lists", h.handleListLists)
	mux.HandleFunc("POST /api/v1/note-lists/{id}/archive", h.handleArchiveList)
	mux.HandleFunc("POST /api/v1/note-lists/{id}/unarchive", h.handleUnarchiveList)
	mux.HandleFunc("DELETE /api/v1/note-lists/{id}", h.handleDeleteList)
}

// CreateNoteRequest is the body of POST /api/v1/notes.
type CreateNoteRequest struct {
	Title      string    `json:"title"`
	Content    string    `json:"content,omitempty"`
	NoteListID uuid.UUID `json:"note_list_id"`
}

func (h *noteHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	if req.NoteListID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "note_list_id is required")
		return
	}
	note, err := h.notes.CreateNote(r.Context(), requestUser(r), req.Title, req.Content, req.NoteListID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (h *noteHandler) handleList(w http.ResponseWriter, r *http.Request) {
	var listID *uuid.UUID
	if raw := r.URL.Query().Get("list_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_id", "malformed list_id")
			return
		}
		listID = &id
	}
	notes, err := h.notes.ListNotes(r.Context(), requestUser(r), listID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if notes == nil {
		notes = []*planner.NoteItem{}
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *noteHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	note, err := h.notes.GetNote(r.Context(), requestUser(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// UpdateNoteRequest is the body of PATCH /api/v1/notes/{id}.
type UpdateNoteRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

func (h *noteHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req UpdateNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	note, err := h.notes.UpdateNote(r.Context(), requestUser(r), id, req.Title, req.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *noteHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.notes.DeleteNote(r.Context(), requestUser(r), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *noteHandler) handlePin(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	note, err := h.notes.PinNote(r.Context(), requestUser(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *noteHandler) handleUnpin(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	note, err := h.notes.UnpinNote(r.Context(), requestUser(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *noteHandler) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var req CreateListRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	list, err := h.notes.CreateNoteList(r.Context(), requestUser(r), req.Title, req.Description, req.Color)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

func (h *noteHandler) handleListLists(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("include_archived") == "true"
	lists, err := h.notes.ListNoteLists(r.Context(), requestUser(r), includeArchived)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if lists == nil {
		lists = []*planner.NoteList{}
	}
	writeJSON(w, http.StatusOK, lists)
}

func (h *noteHandler) handleArchiveList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	list, err := h.notes.ArchiveNoteList(r.Context(), requestUser(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *noteHandler) handleUnarchiveList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	list, err := h.notes.UnarchiveNoteList(r.Context(), requestUser(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *noteHandler) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.notes.DeleteNoteList(r.Context(), requestUser(r), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
