// Package api exposes the REST surface of the notes service.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/notemate/notemate/internal/auth"
	"github.com/notemate/notemate/internal/errs"
	"github.com/notemate/notemate/internal/notes"
)

// Handler wraps the application services and provides HTTP handlers.
type Handler struct {
	users    *auth.UserService
	notes    *notes.Service
	exporter *notes.Exporter
}

// NewHandler creates a new API handler.
func NewHandler(users *auth.UserService, notesService *notes.Service, exporter *notes.Exporter) *Handler {
	return &Handler{
		users:    users,
		notes:    notesService,
		exporter: exporter,
	}
}

// Health handles GET /api - a trivial liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "NoteMate API is running"})
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /api/users/signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.New(errs.InvalidArgument, "invalid JSON body"))
		return
	}

	result, err := h.users.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"token":   result.Token,
		"userId":  result.UserID,
		"message": "User created successfully",
	})
}

// Login handles POST /api/users/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.New(errs.InvalidArgument, "invalid JSON body"))
		return
	}

	result, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   result.Token,
		"userId":  result.UserID,
	})
}

// Me handles GET /api/auth - resolves the bearer token's user. A valid token
// whose account no longer exists yields 404, which clients treat as a signal
// to discard their session.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetMe(r.Context(), auth.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	})
}

// ListNotes handles GET /api/notes/all - the actor's live notes, newest first.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	list, err := h.notes.List(r.Context(), auth.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type createNoteRequest struct {
	Text  *string `json:"text"`
	Color string  `json:"color"`
}

// CreateNote handles POST /api/notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.New(errs.InvalidArgument, "invalid JSON body"))
		return
	}

	note, err := h.notes.Create(r.Context(), auth.GetUserID(r.Context()), notes.CreateNoteParams{
		Text:  req.Text,
		Color: req.Color,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, note)
}

// GetNote handles GET /api/notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.notes.Get(r.Context(), auth.GetUserID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// GetNoteHTML handles GET /api/notes/{id}/html - a sanitized HTML rendering
// of the note.
func (h *Handler) GetNoteHTML(w http.ResponseWriter, r *http.Request) {
	note, err := h.notes.Get(r.Context(), auth.GetUserID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(notes.RenderNoteHTML(note))
}

type updateNoteRequest struct {
	ID    string  `json:"id"`
	Text  *string `json:"text"`
	Color *string `json:"color"`
}

// UpdateNote handles PATCH /api/notes - the note id travels in the body.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var req updateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.New(errs.InvalidArgument, "invalid JSON body"))
		return
	}

	note, err := h.notes.Update(r.Context(), auth.GetUserID(r.Context()), notes.UpdateNoteParams{
		ID:    req.ID,
		Text:  req.Text,
		Color: req.Color,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes?id= - soft-deletes the note.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, errs.New(errs.InvalidArgument, "note id is required"))
		return
	}

	if err := h.notes.Delete(r.Context(), auth.GetUserID(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Note deleted successfully"})
}

// ExportNotes handles POST /api/notes/export - snapshots the actor's live
// notes to object storage.
func (h *Handler) ExportNotes(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.GetIdentity(r.Context())
	result, err := h.exporter.Export(r.Context(), id.UserID, id.Name, id.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// ListExports handles GET /api/notes/exports - keys of past exports.
func (h *Handler) ListExports(w http.ResponseWriter, r *http.Request) {
	keys, err := h.exporter.ListExports(r.Context(), auth.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"exports": keys})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps a coded error to its HTTP status and writes a JSON body.
// Untyped errors surface as a masked 500.
func writeError(w http.ResponseWriter, err error) {
	code := errs.CodeOf(err)
	writeJSON(w, errs.HTTPStatus(code), map[string]any{
		"success": false,
		"message": errs.MessageOf(err),
	})
}
