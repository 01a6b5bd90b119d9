package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ownplanner/ownplanner/internal/chat"
)

// chatHandler exposes the conversational assistant over HTTP.
//
// Endpoints:
//   - POST /api/v1/chat/message - send a message, get the reply
//   - POST /api/v1/chat/clear   - discard a session
//   - GET  /api/v1/chat/status  - session registry status
type chatHandler struct {
	sessions *chat.Registry
	logger   *slog.Logger
}

func newChatHandler(sessions *chat.Registry, logger *slog.Logger) *chatHandler {
	return &chatHandler{sessions: sessions, logger: logger}
}

func (h *chatHandler) register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/chat/message", h.handleMessage)
	mux.HandleFunc("POST /api/v1/chat/clear", h.handleClear)
	mux.HandleFunc("GET /api/v1/chat/status", h.handleStatus)
}

// ChatRequest is the body of POST /api/v1/chat/message. SessionID may be
// empty on the first message; the server then assigns one.
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// ChatResponse is the reply to a chat message.
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
}

func (h *chatHandler) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "message is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	driver, err := h.sessions.GetOrCreate(r.Context(), req.SessionID, requestUser(r))
	if err != nil {
		h.logger.Error("creating session failed", "session_id", req.SessionID, "error", err)
		writeError(w, http.StatusBadGateway, "session_unavailable", "could not start the assistant session")
		return
	}

	response, err := driver.Respond(r.Context(), req.Message)
	if err != nil {
		h.logger.Error("chat turn failed", "session_id", req.SessionID, "error", err)
		writeError(w, http.StatusBadGateway, "chat_failed", "the assistant could not process the message")
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{SessionID: req.SessionID, Response: response})
}

// ClearRequest is the body of POST /api/v1/chat/clear.
type ClearRequest struct {
	SessionID string `json:"session_id"`
}

func (h *chatHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	var req ClearRequest
	if err := decodeJSON(r, &req); err != nil || req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "session_id is required")
		return
	}

	h.sessions.Remove(req.SessionID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// StatusResponse reports whether a session is live and how many
// sessions the registry holds overall.
type StatusResponse struct {
	SessionID      string `json:"session_id,omitempty"`
	IsActive       bool   `json:"is_active"`
	ActiveSessions int    `json:"active_sessions"`
}

func (h *chatHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	writeJSON(w, http.StatusOK, StatusResponse{
		SessionID:      sessionID,
		IsActive:       sessionID != "" && h.sessions.Contains(sessionID),
		ActiveSessions: h.sessions.Len(),
	})
}
