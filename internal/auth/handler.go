package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inamate/canvasedit/internal/typeid"
)

// SessionChecker reports whether a session exists.
type SessionChecker interface {
	Exists(sessionID string) bool
}

type Handler struct {
	service  *Service
	sessions SessionChecker
}

func NewHandler(service *Service, sessions SessionChecker) *Handler {
	return &Handler{service: service, sessions: sessions}
}

type tokenResponse struct {
	SessionID string `json:"sessionId"`
	ViewerID  string `json:"viewerId"`
	Token     string `json:"token"`
}

// Join issues a token for a new viewer of an existing session.
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	if err := typeid.Validate(sessionID, typeid.PrefixSession); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed session id"})
		return
	}
	if !h.sessions.Exists(sessionID) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}

	viewerID := typeid.NewViewerID()
	token, err := h.service.IssueToken(sessionID, viewerID)
	if err != nil {
		slog.Error("issue token failed", "error", err, "session", sessionID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, tokenResponse{SessionID: sessionID, ViewerID: viewerID, Token: token})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
