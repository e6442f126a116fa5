package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/inamate/canvasedit/internal/engine"
	"github.com/inamate/canvasedit/internal/geom"
	"github.com/inamate/canvasedit/internal/scene"
)

var (
	ErrUnknownType = errors.New("unknown message type")
	ErrBadPayload  = errors.New("invalid payload")
	ErrBusy        = errors.New("another viewer is dragging")
)

// Room is one editing session: a composition, the interaction over it and
// the viewers connected to it. Input from all viewers is applied one
// message at a time. One viewer at a time owns the pointer gesture; the
// others keep moving their cursors.
type Room struct {
	id      string
	clients map[string]*Client // clientID -> client, guarded by Hub.mu

	mu      sync.Mutex
	editor  *engine.Editor
	seq     int64
	owner   string             // viewer holding the pointer gesture
	viewers map[string]*viewer // viewerID -> presence
}

// viewer is the presence of one viewer, who may be connected more than
// once.
type viewer struct {
	conns  int
	cursor *CursorPos
}

func NewRoom(id string, store *scene.Store, settings engine.Settings) *Room {
	ed := engine.NewEditor(settings)
	ed.LoadStore(store)
	ed.TakeChanged()
	return &Room{
		id:      id,
		clients: make(map[string]*Client),
		editor:  ed,
		viewers: make(map[string]*viewer),
	}
}

func (r *Room) ID() string { return r.id }

// Apply runs one input message from viewerID through the editor and
// returns the messages to broadcast to the room.
func (r *Room) Apply(viewerID string, msg *Message) ([]*Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.owner != "" && r.owner != viewerID && msg.Type != TypePointerMove {
		return nil, ErrBusy
	}

	var cursor *CursorPos
	var restructured bool
	switch msg.Type {
	case TypePointerDown, TypePointerMove, TypePointerUp:
		var p PointerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadPayload, err)
		}
		if r.owner != "" && r.owner != viewerID {
			// A bystander's hover must not reach the editor during someone
			// else's gesture; only its cursor moves.
			return r.moveCursorLocked(viewerID, p)
		}
		mods := p.Modifiers()
		switch msg.Type {
		case TypePointerDown:
			r.editor.PointerDown(p.X, p.Y, mods)
			r.owner = viewerID
		case TypePointerMove:
			r.editor.PointerMove(p.X, p.Y, mods)
		case TypePointerUp:
			r.editor.PointerUp(p.X, p.Y, mods)
			r.owner = ""
		}
		c := r.editor.Viewport().ToCanvas(geom.V(p.X, p.Y))
		cursor = &CursorPos{X: c.X, Y: c.Y}

	case TypePointerLeave:
		r.editor.PointerLeave()
		r.owner = ""

	case TypeKeyNudge:
		var p NudgePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadPayload, err)
		}
		r.editor.Nudge(p.DX, p.DY)

	case TypeSelectionSet:
		var p SelectionPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadPayload, err)
		}
		r.editor.SetSelection(p.IDs)

	case TypeSelectionGroup:
		if _, err := r.editor.GroupSelection(); err != nil {
			return nil, err
		}
		restructured = true

	case TypeSelectionUngroup:
		if err := r.editor.UngroupSelection(); err != nil {
			return nil, err
		}
		restructured = true

	case TypeViewportSet:
		var p ViewportPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadPayload, err)
		}
		r.editor.FitToWidget(p.Width, p.Height, p.PixelRatio)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, msg.Type)
	}

	r.seq++
	out, err := r.updatesLocked()
	if err != nil {
		return nil, err
	}
	if restructured {
		doc, err := newMessage(TypeDocumentUpdate, r.editor.Store().Document())
		if err != nil {
			return nil, fmt.Errorf("marshal document: %w", err)
		}
		out = append(out, doc)
	}
	if cursor != nil {
		r.viewerLocked(viewerID).cursor = cursor
		m, err := r.presenceMessageLocked(viewerID)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	r.stampLocked(out)
	return out, nil
}

// moveCursorLocked records a bystander's pointer without applying it.
func (r *Room) moveCursorLocked(viewerID string, p PointerPayload) ([]*Message, error) {
	c := r.editor.Viewport().ToCanvas(geom.V(p.X, p.Y))
	r.viewerLocked(viewerID).cursor = &CursorPos{X: c.X, Y: c.Y}
	m, err := r.presenceMessageLocked(viewerID)
	if err != nil {
		return nil, err
	}
	out := []*Message{m}
	r.stampLocked(out)
	return out, nil
}

func (r *Room) stampLocked(out []*Message) {
	for _, m := range out {
		m.SessionID = r.id
		m.Seq = r.seq
	}
}

func (r *Room) viewerLocked(viewerID string) *viewer {
	v, ok := r.viewers[viewerID]
	if !ok {
		v = &viewer{}
		r.viewers[viewerID] = v
	}
	return v
}

// presenceLocked describes viewerID as others see it. Only the gesture
// owner reports a mode other than idle.
func (r *Room) presenceLocked(viewerID string) PresencePayload {
	p := PresencePayload{Mode: engine.Idle}
	if v, ok := r.viewers[viewerID]; ok {
		p.Cursor = v.cursor
	}
	if r.owner == viewerID {
		p.Dragging = true
		p.Mode = r.editor.Mode()
	}
	return p
}

func (r *Room) presenceMessageLocked(viewerID string) (*Message, error) {
	m, err := newMessage(TypePresenceUpdate, r.presenceLocked(viewerID))
	if err != nil {
		return nil, fmt.Errorf("marshal presence: %w", err)
	}
	m.ViewerID = viewerID
	return m, nil
}

// Join counts a new connection for viewerID and returns the presence of
// everyone in the room. first reports whether the viewer was not connected
// before.
func (r *Room) Join(viewerID string) (state *Message, first bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := r.viewerLocked(viewerID)
	v.conns++

	payload := PresenceStatePayload{
		Owner:     r.owner,
		Presences: make(map[string]PresencePayload, len(r.viewers)),
	}
	for id := range r.viewers {
		payload.Presences[id] = r.presenceLocked(id)
	}
	state, err = newMessage(TypePresenceState, payload)
	if err != nil {
		return nil, false, fmt.Errorf("marshal presence state: %w", err)
	}
	r.stampLocked([]*Message{state})
	return state, v.conns == 1, nil
}

// Leave drops one connection of viewerID. Any gesture the viewer holds is
// released, since the connection that drove it may be the one gone. last
// reports whether the viewer has no connections left.
func (r *Room) Leave(viewerID string) (out []*Message, last bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out = r.releaseLocked(viewerID)
	v, ok := r.viewers[viewerID]
	if !ok {
		return out, true
	}
	v.conns--
	if v.conns <= 0 {
		delete(r.viewers, viewerID)
		return out, true
	}
	return out, false
}

// updatesLocked builds the overlay and element updates for the current
// state. Caller must hold r.mu.
func (r *Room) updatesLocked() ([]*Message, error) {
	overlay, err := newMessage(TypeOverlayUpdate, r.editor.Overlay())
	if err != nil {
		return nil, fmt.Errorf("marshal overlay: %w", err)
	}
	out := []*Message{overlay}

	if changed := r.editor.TakeChanged(); len(changed) > 0 {
		elements, err := newMessage(TypeElementsUpdate, ElementsPayload{Elements: changed})
		if err != nil {
			return nil, fmt.Errorf("marshal elements: %w", err)
		}
		out = append(out, elements)
	}
	return out, nil
}

// Release ends a gesture held by viewerID, as when its connection drops.
func (r *Room) Release(viewerID string) []*Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.releaseLocked(viewerID)
}

func (r *Room) releaseLocked(viewerID string) []*Message {
	if r.owner != viewerID {
		return nil
	}
	r.owner = ""
	r.editor.PointerLeave()
	r.seq++

	out, err := r.updatesLocked()
	if err != nil {
		slog.Error("release updates", "error", err, "session", r.id)
		return nil
	}
	if m, err := r.presenceMessageLocked(viewerID); err == nil {
		out = append(out, m)
	}
	r.stampLocked(out)
	return out
}

// Welcome returns the greeting for a newly connected viewer.
func (r *Room) Welcome(clientID, viewerID string) (*Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, err := newMessage(TypeWelcome, WelcomePayload{
		ClientID: clientID,
		ViewerID: viewerID,
		Document: r.editor.Store().Document(),
		Viewport: r.editor.Viewport(),
	})
	if err != nil {
		return nil, err
	}
	r.stampLocked([]*Message{m})
	return m, nil
}

// OverlayCommands returns the latest overlay as draw commands JSON. It
// does not wait for input being applied.
func (r *Room) OverlayCommands() string {
	return r.editor.Render()
}

// Document returns the composition as JSON.
func (r *Room) Document() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.editor.GetDocument()
}
