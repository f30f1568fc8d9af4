// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAction_Valid(t *testing.T) {
	tests := []struct {
		action Action
		want   bool
	}{
		{ActionIncrement, true},
		{ActionUpdate, true},
		{Action("reset"), false},
		{Action(""), false},
	}

	for _, tt := range tests {
		if got := tt.action.Valid(); got != tt.want {
			t.Errorf("Action(%q).Valid() = %v, want %v", tt.action, got, tt.want)
		}
	}
}

func TestAction_UnmarshalRejectsUnknown(t *testing.T) {
	var a Action
	if err := json.Unmarshal([]byte(`"increment"`), &a); err != nil {
		t.Fatalf("expected increment to unmarshal, got %v", err)
	}
	if a != ActionIncrement {
		t.Errorf("expected ActionIncrement, got %q", a)
	}

	if err := json.Unmarshal([]byte(`"reset"`), &a); err == nil {
		t.Error("expected unknown action to be rejected")
	}
	if err := json.Unmarshal([]byte(`5`), &a); err == nil {
		t.Error("expected non-string action to be rejected")
	}
}

func TestAction_MarshalRejectsUnknown(t *testing.T) {
	if _, err := json.Marshal(ActionUpdate); err != nil {
		t.Fatalf("expected update to marshal, got %v", err)
	}
	if _, err := json.Marshal(Action("bogus")); err == nil {
		t.Error("expected unknown action to fail marshalling")
	}
}

func TestNewFrame(t *testing.T) {
	event := MeritEvent{
		TotalMerit: 3,
		Action:     ActionIncrement,
		Timestamp:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	frame, err := NewFrame(EventMeritUpdated, event)
	if err != nil {
		t.Fatalf("NewFrame() error = %v", err)
	}
	if frame.Event != EventMeritUpdated {
		t.Errorf("expected event %q, got %q", EventMeritUpdated, frame.Event)
	}

	var decoded MeritEvent
	if err := json.Unmarshal(frame.Data, &decoded); err != nil {
		t.Fatalf("failed to decode frame data: %v", err)
	}
	if decoded != event {
		t.Errorf("round trip mismatch: %+v != %+v", decoded, event)
	}
}

func TestNewFrame_BadPayload(t *testing.T) {
	// An invalid action makes the payload unmarshalable.
	_, err := NewFrame(EventMeritUpdated, MeritEvent{Action: Action("bogus")})
	if err == nil {
		t.Error("expected error for unmarshalable payload")
	}
}
