// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/danielhkuo/merit-box/hub"
	"github.com/danielhkuo/merit-box/models"
)

// WSConfig holds tunables for WebSocket connections.
type WSConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultWSConfig returns the standard WebSocket configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// The API is already open and CORS-permissive.
			return true
		},
	}
}

// WSHandler upgrades clients onto the push channel. Each connection gets
// a hub subscription for merit events plus an outbound queue for the
// connection-local message echo feature.
type WSHandler struct {
	hub      *hub.Hub
	clock    clockwork.Clock
	cfg      WSConfig
	upgrader websocket.Upgrader
}

func NewWSHandler(h *hub.Hub, clock clockwork.Clock, cfg WSConfig) *WSHandler {
	return &WSHandler{
		hub:   h,
		clock: clock,
		cfg:   cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     cfg.CheckOrigin,
		},
	}
}

// Serve handles GET /ws
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		slog.Error("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	c := &wsConn{
		id:       uuid.NewString(),
		ws:       ws,
		sub:      h.hub.Subscribe(),
		handler:  h,
		outbound: make(chan models.Frame, 8),
	}

	slog.Info("client connected", "connection_id", c.id, "remote", r.RemoteAddr)

	c.enqueueMessage("Welcome to the merit box!")

	go c.writePump()
	go c.readPump()
}

type wsConn struct {
	id       string
	ws       *websocket.Conn
	sub      *hub.Subscriber
	handler  *WSHandler
	outbound chan models.Frame
}

// enqueueMessage queues a system chat message for this connection only.
// Non-blocking: the echo side-channel is allowed to drop rather than
// interfere with merit event delivery.
func (c *wsConn) enqueueMessage(text string) {
	frame, err := models.NewFrame(models.EventMessage, models.ChatMessage{
		Text:      text,
		SenderID:  "system",
		Timestamp: c.handler.clock.Now().UTC(),
	})
	if err != nil {
		slog.Error("failed to build message frame", "error", err, "connection_id", c.id)
		return
	}

	select {
	case c.outbound <- frame:
	default:
		slog.Warn("outbound queue full, dropping message", "connection_id", c.id)
	}
}

// writePump owns all writes to the connection: merit events from the hub
// subscription, connection-local frames, and keepalive pings.
func (c *wsConn) writePump() {
	ticker := time.NewTicker(c.handler.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.ws.Close()
		c.handler.hub.Unsubscribe(c.sub)
		slog.Info("client disconnected", "connection_id", c.id)
	}()

	for {
		select {
		case event, ok := <-c.sub.Events():
			if !ok {
				// Unsubscribed elsewhere; say goodbye properly.
				c.ws.SetWriteDeadline(time.Now().Add(c.handler.cfg.WriteTimeout))
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			frame, err := models.NewFrame(models.EventMeritUpdated, event)
			if err != nil {
				slog.Error("failed to build merit frame", "error", err, "connection_id", c.id)
				continue
			}
			if !c.write(frame) {
				return
			}

		case frame := <-c.outbound:
			if !c.write(frame) {
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(c.handler.cfg.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				slog.Debug("ping failed", "error", err, "connection_id", c.id)
				return
			}
		}
	}
}

func (c *wsConn) write(frame models.Frame) bool {
	c.ws.SetWriteDeadline(time.Now().Add(c.handler.cfg.WriteTimeout))
	if err := c.ws.WriteJSON(frame); err != nil {
		slog.Debug("write failed", "error", err, "connection_id", c.id)
		return false
	}
	return true
}

// readPump consumes client frames. The only inbound event is "message",
// which is echoed back to the sender alone; merit mutations always travel
// over the HTTP request path, never the socket.
func (c *wsConn) readPump() {
	defer func() {
		c.handler.hub.Unsubscribe(c.sub)
		c.ws.Close()
	}()

	c.ws.SetReadLimit(c.handler.cfg.MaxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(c.handler.cfg.ReadTimeout))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(c.handler.cfg.ReadTimeout))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				slog.Warn("unexpected close", "error", err, "connection_id", c.id)
			}
			return
		}

		var frame models.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			slog.Debug("ignoring malformed frame", "error", err, "connection_id", c.id)
			continue
		}

		switch frame.Event {
		case models.EventMessage:
			var msg models.ChatMessage
			if err := json.Unmarshal(frame.Data, &msg); err != nil {
				slog.Debug("ignoring malformed message", "error", err, "connection_id", c.id)
				continue
			}
			c.enqueueMessage("Echo: " + msg.Text)
		default:
			slog.Debug("ignoring unknown event", "event", frame.Event, "connection_id", c.id)
		}
	}
}
