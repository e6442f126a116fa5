package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
	sendQueue  = 256
)

var ErrBinaryFrame = errors.New("binary frames are not accepted")

// Client is one websocket connection of a viewer to a session.
//
// Frames queue on send. Overlay and presence frames are replaced by the
// next ones, so a full queue drops them. Any other frame carries document
// state the viewer cannot rebuild, so a full queue evicts the client
// instead; it reconnects and starts over from a welcome.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	ViewerID  string
	SessionID string
	ClientID  string

	evictOnce sync.Once
	evicted   atomic.Bool
}

func NewClient(hub *Hub, conn *websocket.Conn, viewerID, sessionID, clientID string) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, sendQueue),
		ViewerID:  viewerID,
		SessionID: sessionID,
		ClientID:  clientID,
	}
}

// ReadPump feeds the viewer's input to the hub until the connection ends,
// then unregisters the client.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)

	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				slog.Debug("read error", "error", err, "viewer", c.ViewerID, "client", c.ClientID)
			}
			return
		}
		if typ != websocket.MessageText {
			c.reject(ErrBinaryFrame)
			continue
		}

		msg, err := decodeMessage(data)
		if err != nil {
			c.reject(err)
			continue
		}

		// Identity comes from the token, never from the frame.
		msg.ViewerID = c.ViewerID
		msg.ClientID = c.ClientID
		msg.SessionID = c.SessionID

		c.hub.handleMessage(c, msg)
	}
}

// WritePump drains the send queue onto the connection and keeps it alive
// with pings.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, frame)
			cancel()
			if err != nil {
				slog.Debug("write error", "error", err, "viewer", c.ViewerID, "client", c.ClientID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// Send queues msg for this client only.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}
	c.deliver(msg.Type, data)
}

// Evicted reports whether the client was dropped for falling behind.
func (c *Client) Evicted() bool { return c.evicted.Load() }

func (c *Client) reject(err error) {
	slog.Warn("invalid frame", "error", err, "viewer", c.ViewerID, "client", c.ClientID)
	if m, mErr := newMessage(TypeError, ErrorPayload{Message: err.Error()}); mErr == nil {
		c.hub.sendTo(c, m)
	}
}

func (c *Client) deliver(msgType string, data []byte) {
	if c.evicted.Load() {
		return
	}
	select {
	case c.send <- data:
		return
	default:
	}
	if supersedable(msgType) {
		slog.Debug("send queue full, dropping frame", "type", msgType, "client", c.ClientID)
		return
	}
	c.evict()
}

// evict closes the connection of a client that missed a state frame. The
// read pump then unregisters it.
func (c *Client) evict() {
	c.evictOnce.Do(func() {
		c.evicted.Store(true)
		slog.Warn("evicting slow client", "viewer", c.ViewerID, "client", c.ClientID, "session", c.SessionID)
		if c.conn != nil {
			go c.conn.Close(websocket.StatusTryAgainLater, "client fell behind")
		}
	})
}

// supersedable reports whether a later frame of the same type replaces
// msgType entirely.
func supersedable(msgType string) bool {
	return msgType == TypeOverlayUpdate || msgType == TypePresenceUpdate
}
