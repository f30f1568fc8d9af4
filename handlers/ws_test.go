// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/danielhkuo/merit-box/hub"
	"github.com/danielhkuo/merit-box/models"
)

// newWSTestServer starts a test server exposing only the push channel.
func newWSTestServer(t *testing.T) (*hub.Hub, *httptest.Server) {
	t.Helper()

	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	h := hub.New(clock)
	wsHandler := NewWSHandler(h, clock, DefaultWSConfig())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", wsHandler.Serve)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return h, server
}

func dialWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) models.Frame {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var frame models.Frame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("failed to read frame: %v", err)
	}
	return frame
}

// waitForSubscribers blocks until the hub sees n subscribers; the server
// registers the subscription during the upgrade, slightly after the dial
// returns on the client side.
func waitForSubscribers(t *testing.T, h *hub.Hub, n int) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for h.SubscriberCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d subscribers, have %d", n, h.SubscriberCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWS_WelcomeMessage(t *testing.T) {
	_, server := newWSTestServer(t)
	conn := dialWS(t, server)

	frame := readFrame(t, conn)
	if frame.Event != models.EventMessage {
		t.Fatalf("expected a message frame first, got %q", frame.Event)
	}

	var msg models.ChatMessage
	if err := json.Unmarshal(frame.Data, &msg); err != nil {
		t.Fatalf("failed to decode message: %v", err)
	}
	if msg.SenderID != "system" {
		t.Errorf("expected senderId system, got %q", msg.SenderID)
	}
	if !strings.Contains(msg.Text, "Welcome") {
		t.Errorf("expected a welcome text, got %q", msg.Text)
	}
}

func TestWS_ReceivesMeritEvents(t *testing.T) {
	h, server := newWSTestServer(t)
	conn := dialWS(t, server)
	waitForSubscribers(t, h, 1)

	readFrame(t, conn) // welcome

	h.Publish(5, models.ActionIncrement)

	frame := readFrame(t, conn)
	if frame.Event != models.EventMeritUpdated {
		t.Fatalf("expected merit-updated, got %q", frame.Event)
	}

	var event models.MeritEvent
	if err := json.Unmarshal(frame.Data, &event); err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if event.TotalMerit != 5 || event.Action != models.ActionIncrement {
		t.Errorf("expected {5, increment}, got %+v", event)
	}
}

func TestWS_NoBacklogForLateSubscriber(t *testing.T) {
	h, server := newWSTestServer(t)

	// Published before anyone connects: gone forever.
	h.Publish(1, models.ActionIncrement)

	conn := dialWS(t, server)
	waitForSubscribers(t, h, 1)
	readFrame(t, conn) // welcome

	h.Publish(2, models.ActionUpdate)

	frame := readFrame(t, conn)
	if frame.Event != models.EventMeritUpdated {
		t.Fatalf("expected merit-updated, got %q", frame.Event)
	}
	var event models.MeritEvent
	if err := json.Unmarshal(frame.Data, &event); err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if event.TotalMerit != 1 {
		// E2 only; E1 must never surface.
		if event.TotalMerit != 2 || event.Action != models.ActionUpdate {
			t.Errorf("expected {2, update}, got %+v", event)
		}
	} else {
		t.Errorf("late subscriber received pre-subscription event: %+v", event)
	}
}

func TestWS_EchoesMessagesToSenderOnly(t *testing.T) {
	h, server := newWSTestServer(t)

	sender := dialWS(t, server)
	other := dialWS(t, server)
	waitForSubscribers(t, h, 2)

	readFrame(t, sender) // welcome
	readFrame(t, other)  // welcome

	out, err := models.NewFrame(models.EventMessage, models.ChatMessage{Text: "hello", SenderID: "client-1"})
	if err != nil {
		t.Fatalf("NewFrame() error = %v", err)
	}
	if err := sender.WriteJSON(out); err != nil {
		t.Fatalf("failed to send message: %v", err)
	}

	frame := readFrame(t, sender)
	if frame.Event != models.EventMessage {
		t.Fatalf("expected message frame, got %q", frame.Event)
	}
	var msg models.ChatMessage
	if err := json.Unmarshal(frame.Data, &msg); err != nil {
		t.Fatalf("failed to decode echo: %v", err)
	}
	if msg.Text != "Echo: hello" {
		t.Errorf("expected %q, got %q", "Echo: hello", msg.Text)
	}
	if msg.SenderID != "system" {
		t.Errorf("expected senderId system, got %q", msg.SenderID)
	}

	// The echo is connection-local; the other client sees merit events
	// but never someone else's chat.
	h.Publish(7, models.ActionIncrement)
	otherFrame := readFrame(t, other)
	if otherFrame.Event != models.EventMeritUpdated {
		t.Errorf("other client should only see merit events, got %q", otherFrame.Event)
	}
}

// TestWS_EchoDoesNotDisruptMeritEvents interleaves chat traffic with
// publishes; the merit stream must come through intact and in order.
func TestWS_EchoDoesNotDisruptMeritEvents(t *testing.T) {
	h, server := newWSTestServer(t)
	conn := dialWS(t, server)
	waitForSubscribers(t, h, 1)
	readFrame(t, conn) // welcome

	for i := 1; i <= 3; i++ {
		out, _ := models.NewFrame(models.EventMessage, models.ChatMessage{Text: "ping"})
		if err := conn.WriteJSON(out); err != nil {
			t.Fatalf("failed to send message: %v", err)
		}
		h.Publish(i, models.ActionIncrement)
	}

	got := make([]int, 0, 3)
	echoes := 0
	for len(got) < 3 || echoes < 3 {
		frame := readFrame(t, conn)
		switch frame.Event {
		case models.EventMeritUpdated:
			var event models.MeritEvent
			if err := json.Unmarshal(frame.Data, &event); err != nil {
				t.Fatalf("failed to decode event: %v", err)
			}
			got = append(got, event.TotalMerit)
		case models.EventMessage:
			echoes++
		}
	}

	for i, v := range got {
		if v != i+1 {
			t.Errorf("merit events out of order: %v", got)
			break
		}
	}
}

func TestWS_UnsubscribesOnDisconnect(t *testing.T) {
	h, server := newWSTestServer(t)
	conn := dialWS(t, server)
	waitForSubscribers(t, h, 1)

	conn.Close()
	waitForSubscribers(t, h, 0)
}
