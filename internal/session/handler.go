package session

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/inamate/canvasedit/internal/auth"
	"github.com/inamate/canvasedit/internal/scene"
	"github.com/inamate/canvasedit/internal/typeid"
)

type Handler struct {
	hub            *Hub
	auth           *auth.Service
	originPatterns []string
}

// NewHandler serves the session endpoints. origins are full origins such as
// http://localhost:5173; websocket handshakes from other origins fail.
func NewHandler(hub *Hub, authService *auth.Service, origins []string) *Handler {
	var patterns []string
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
		}
	}
	return &Handler{hub: hub, auth: authService, originPatterns: patterns}
}

type createRequest struct {
	Document *scene.Document `json:"document,omitempty"`
	Blank    bool            `json:"blank,omitempty"`
}

type createResponse struct {
	SessionID string `json:"sessionId"`
	ViewerID  string `json:"viewerId"`
	Token     string `json:"token"`
}

// Routes registers the session endpoints on r. Everything under a session
// id requires a token for that session.
func (h *Handler) Routes(r *mux.Router) {
	authed := func(f http.HandlerFunc) http.Handler {
		return h.auth.SessionMiddleware(f)
	}
	r.HandleFunc("/sessions", h.Create).Methods(http.MethodPost, http.MethodOptions)
	r.Handle("/sessions/{sessionId}/overlay", authed(h.Overlay)).Methods(http.MethodGet)
	r.Handle("/sessions/{sessionId}/document", authed(h.Document)).Methods(http.MethodGet)
	r.Handle("/ws/sessions/{sessionId}", authed(h.ServeWS))
}

// Create starts a session and returns a token for its first viewer.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	room, err := h.hub.CreateSession(req.Document, req.Blank)
	if err != nil {
		if errors.Is(err, scene.ErrInvalidDocument) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		slog.Error("create session failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	viewerID := typeid.NewViewerID()
	token, err := h.auth.IssueToken(room.ID(), viewerID)
	if err != nil {
		slog.Error("issue token failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, createResponse{SessionID: room.ID(), ViewerID: viewerID, Token: token})
}

// Overlay returns the session's current overlay draw commands.
func (h *Handler) Overlay(w http.ResponseWriter, r *http.Request) {
	room, ok := h.hub.Room(mux.Vars(r)["sessionId"])
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": ErrSessionNotFound.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, room.OverlayCommands())
}

// Document returns the session's composition.
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	room, ok := h.hub.Room(mux.Vars(r)["sessionId"])
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": ErrSessionNotFound.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, room.Document())
}

// ServeWS upgrades an authenticated request to a viewer connection.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	if !h.hub.Exists(claims.SessionID) {
		http.Error(w, ErrSessionNotFound.Error(), http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := NewClient(h.hub, conn, claims.ViewerID(), claims.SessionID, uuid.New().String())
	if !h.hub.Register(client) {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
