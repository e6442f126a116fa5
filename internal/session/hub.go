package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/inamate/canvasedit/internal/engine"
	"github.com/inamate/canvasedit/internal/geom"
	"github.com/inamate/canvasedit/internal/scene"
	"github.com/inamate/canvasedit/internal/typeid"
)

var ErrSessionNotFound = errors.New("session not found")

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // sessionID -> room
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	settings engine.Settings
	canvas   geom.Vec2
}

// NewHub creates a hub whose sessions use settings. Blank sessions get a
// canvas of the given size.
func NewHub(settings engine.Settings, canvas geom.Vec2) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		settings:   settings,
		canvas:     canvas,
	}
}

// Run serves registrations until ctx is done, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ctx.Done():
			h.closeAll()
			return nil
		}
	}
}

func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// CreateSession starts a session over doc. A nil doc seeds the sample
// composition; blank starts an empty canvas instead.
func (h *Hub) CreateSession(doc *scene.Document, blank bool) (*Room, error) {
	var store *scene.Store
	switch {
	case doc != nil:
		s, err := doc.Build()
		if err != nil {
			return nil, err
		}
		store = s
	case blank:
		store = scene.NewStore(h.canvas.X, h.canvas.Y)
	default:
		store = scene.NewSampleStore()
	}

	room := NewRoom(typeid.NewSessionID(), store, h.settings)
	h.mu.Lock()
	h.rooms[room.id] = room
	h.mu.Unlock()

	slog.Info("session created", "session", room.id, "elements", len(store.Items()))
	return room, nil
}

func (h *Hub) Exists(sessionID string) bool {
	_, ok := h.Room(sessionID)
	return ok
}

func (h *Hub) Room(sessionID string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[sessionID]
	return room, ok
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.SessionID]
	if !ok {
		h.mu.Unlock()
		close(client.send)
		slog.Warn("client for unknown session", "session", client.SessionID)
		return
	}
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	if welcome, err := room.Welcome(client.ClientID, client.ViewerID); err == nil {
		client.Send(welcome)
	} else {
		slog.Error("marshal welcome", "error", err)
	}
	state, first, err := room.Join(client.ViewerID)
	if err != nil {
		slog.Error("join", "error", err, "session", client.SessionID)
	} else {
		client.Send(state)
	}

	if first {
		if joinMsg, err := newMessage(TypePresenceJoin, PresenceJoinPayload{ViewerID: client.ViewerID}); err == nil {
			joinMsg.ViewerID = client.ViewerID
			h.broadcastToRoom(client.SessionID, joinMsg, client.ClientID)
		}
	}

	slog.Info("viewer joined", "viewer", client.ViewerID, "client", client.ClientID, "session", client.SessionID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.SessionID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := room.clients[client.ClientID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(room.clients, client.ClientID)
	close(client.send)
	h.mu.Unlock()

	out, last := room.Leave(client.ViewerID)
	for _, m := range out {
		h.broadcastToRoom(client.SessionID, m, "")
	}

	if last {
		if leaveMsg, err := newMessage(TypePresenceLeave, PresenceLeavePayload{ViewerID: client.ViewerID}); err == nil {
			leaveMsg.ViewerID = client.ViewerID
			h.broadcastToRoom(client.SessionID, leaveMsg, "")
		}
	}

	slog.Info("viewer left", "viewer", client.ViewerID, "client", client.ClientID, "session", client.SessionID)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range h.rooms {
		for id, c := range room.clients {
			close(c.send)
			delete(room.clients, id)
		}
	}
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	room, ok := h.Room(sender.SessionID)
	if !ok {
		return
	}

	out, err := room.Apply(sender.ViewerID, msg)
	if err != nil {
		slog.Warn("rejected input", "type", msg.Type, "viewer", sender.ViewerID, "error", err)
		if errMsg, mErr := newMessage(TypeError, ErrorPayload{Message: err.Error()}); mErr == nil {
			h.sendTo(sender, errMsg)
		}
		return
	}

	for _, m := range out {
		exclude := ""
		if m.Type == TypePresenceUpdate {
			exclude = sender.ClientID
		}
		h.broadcastToRoom(sender.SessionID, m, exclude)
	}
}

func (h *Hub) broadcastToRoom(sessionID string, msg *Message, excludeClientID string) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[sessionID]
	if !ok {
		return
	}
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			c.deliver(msg.Type, data)
		}
	}
}

// sendTo delivers msg to c if it is still connected.
func (h *Hub) sendTo(c *Client, msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if room, ok := h.rooms[c.SessionID]; ok && room.clients[c.ClientID] == c {
		c.deliver(msg.Type, data)
	}
}

// decodeMessage parses one frame from a viewer.
func decodeMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}
	return &msg, nil
}
