package session

import (
	"encoding/json"

	"github.com/inamate/canvasedit/internal/engine"
	"github.com/inamate/canvasedit/internal/scene"
)

type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	ViewerID  string          `json:"viewerId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

const (
	// Input (viewer → session)
	TypePointerDown      = "pointer.down"
	TypePointerMove      = "pointer.move"
	TypePointerUp        = "pointer.up"
	TypePointerLeave     = "pointer.leave"
	TypeKeyNudge         = "key.nudge"
	TypeSelectionSet     = "selection.set"
	TypeSelectionGroup   = "selection.group"
	TypeSelectionUngroup = "selection.ungroup"
	TypeViewportSet      = "viewport.set"

	// Output (session → viewers)
	TypeWelcome        = "welcome"
	TypeOverlayUpdate  = "overlay.update"
	TypeElementsUpdate = "elements.update"
	TypeDocumentUpdate = "document.update"
	TypeError          = "error"

	// Presence
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
)

// PointerPayload is a pointer event in logical widget pixels.
type PointerPayload struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Shift bool    `json:"shift,omitempty"`
	Ctrl  bool    `json:"ctrl,omitempty"`
	Alt   bool    `json:"alt,omitempty"`
}

func (p PointerPayload) Modifiers() engine.Modifiers {
	var m engine.Modifiers
	if p.Shift {
		m |= engine.ModShift
	}
	if p.Ctrl {
		m |= engine.ModCtrl
	}
	if p.Alt {
		m |= engine.ModAlt
	}
	return m
}

// NudgePayload moves the selection by canvas units.
type NudgePayload struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type SelectionPayload struct {
	IDs []string `json:"ids"`
}

// ViewportPayload fits the canvas into a widget of the given logical size.
type ViewportPayload struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	PixelRatio float64 `json:"pixelRatio"`
}

type WelcomePayload struct {
	ClientID string          `json:"clientId"`
	ViewerID string          `json:"viewerId"`
	Document *scene.Document `json:"document"`
	Viewport engine.Viewport `json:"viewport"`
}

type ElementsPayload struct {
	Elements []scene.ElementNode `json:"elements"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// PresencePayload is what other viewers see of one viewer. Mode is the
// gesture state while the viewer is dragging and idle otherwise.
type PresencePayload struct {
	Cursor   *CursorPos  `json:"cursor,omitempty"`
	Mode     engine.Mode `json:"mode"`
	Dragging bool        `json:"dragging,omitempty"`
}

// CursorPos is a viewer's pointer in canvas units.
type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PresenceStatePayload greets a new connection with everyone in the room.
type PresenceStatePayload struct {
	Owner     string                     `json:"owner,omitempty"`
	Presences map[string]PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	ViewerID string `json:"viewerId"`
}

type PresenceLeavePayload struct {
	ViewerID string `json:"viewerId"`
}

func newMessage(msgType string, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: msgType, Payload: data}, nil
}
