// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Action identifies what kind of mutation produced a broadcast event.
// The set is closed: unmarshalling any other value is an error, so every
// consumer switching on Action covers all cases.
type Action string

const (
	ActionIncrement Action = "increment"
	ActionUpdate    Action = "update"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionIncrement, ActionUpdate:
		return true
	}
	return false
}

func (a Action) MarshalJSON() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("unknown action %q", string(a))
	}
	return json.Marshal(string(a))
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v := Action(s)
	if !v.Valid() {
		return fmt.Errorf("unknown action %q", s)
	}
	*a = v
	return nil
}

// WebSocket frame event names
const (
	EventMeritUpdated = "merit-updated"
	EventMessage      = "message"
)

// Request types

// AdminSetRequest carries the admin's absolute-set request.
// TotalMerit is a float pointer so the handler can tell "missing" and
// "fractional" apart from a plain zero; valid requests are whole and >= 0.
type AdminSetRequest struct {
	TotalMerit    *float64 `json:"totalMerit"`
	AdminPassword string   `json:"adminPassword"`
}

type AdminVerifyRequest struct {
	AdminPassword string `json:"adminPassword"`
}

// Response types

type MeritResponse struct {
	Success     bool      `json:"success"`
	TotalMerit  int       `json:"totalMerit"`
	LastUpdated time.Time `json:"lastUpdated"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Domain types

// MeritRecord is the singleton persisted counter. Exactly one logical
// record exists; CreatedAt breaks ties deterministically if a get-or-create
// race ever leaves more than one row behind.
type MeritRecord struct {
	ID          string    `json:"-"`
	TotalMerit  int       `json:"totalMerit"`
	LastUpdated time.Time `json:"lastUpdated"`
	CreatedAt   time.Time `json:"-"`
}

// Push channel types

// MeritEvent is the payload of a merit-updated frame, emitted once per
// successful mutation. Transient: never persisted, never replayed.
type MeritEvent struct {
	TotalMerit int       `json:"totalMerit"`
	Action     Action    `json:"action"`
	Timestamp  time.Time `json:"timestamp"`
}

// ChatMessage is the payload of a message frame on the push channel.
// The echo feature rides the same connection as merit events but is
// unrelated to the counter.
type ChatMessage struct {
	Text      string    `json:"text"`
	SenderID  string    `json:"senderId"`
	Timestamp time.Time `json:"timestamp"`
}

// Frame is the envelope for every message crossing the push channel,
// in either direction.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// NewFrame wraps a payload in a Frame, marshalling the payload.
func NewFrame(event string, payload any) (Frame, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}
	return Frame{Event: event, Data: data}, nil
}
