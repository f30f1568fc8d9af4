// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package hub

import (
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/danielhkuo/merit-box/models"
)

// subscriberBuffer is the per-subscriber event queue depth. A subscriber
// that falls further behind than this starts losing events; delivery is
// best-effort by contract.
const subscriberBuffer = 16

// Hub fans merit events out to the currently connected subscribers.
//
// It is an explicitly owned object: main constructs exactly one and hands
// it to whoever needs to publish or subscribe. There is no package-level
// instance.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*Subscriber]bool
	clock       clockwork.Clock
}

// Subscriber is a registration handle. Events arrive on Events() until
// Unsubscribe closes the channel.
type Subscriber struct {
	ch chan models.MeritEvent
}

// Events returns the subscriber's event channel. The channel is closed by
// Hub.Unsubscribe; receivers should range over it.
func (s *Subscriber) Events() <-chan models.MeritEvent {
	return s.ch
}

func New(clock clockwork.Clock) *Hub {
	return &Hub{
		subscribers: make(map[*Subscriber]bool),
		clock:       clock,
	}
}

// Subscribe registers a new subscriber. No backlog is delivered: the
// subscriber sees only events published strictly after registration.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{ch: make(chan models.MeritEvent, subscriberBuffer)}

	h.mu.Lock()
	h.subscribers[sub] = true
	total := len(h.subscribers)
	h.mu.Unlock()

	slog.Debug("subscriber registered", "total_subscribers", total)
	return sub
}

// Unsubscribe removes a subscriber and closes its channel. Idempotent:
// removing an already-removed handle is a no-op.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.subscribers[sub] {
		return
	}
	delete(h.subscribers, sub)
	close(sub.ch)

	slog.Debug("subscriber unregistered", "total_subscribers", len(h.subscribers))
}

// Publish delivers a timestamped event to every registered subscriber,
// best-effort. Sends are non-blocking: a subscriber whose buffer is full
// is skipped with a warning and never stalls delivery to the others.
//
// Callers must only publish after a confirmed successful write.
func (h *Hub) Publish(totalMerit int, action models.Action) {
	event := models.MeritEvent{
		TotalMerit: totalMerit,
		Action:     action,
		Timestamp:  h.clock.Now().UTC(),
	}

	// The read lock is held across the sends. They cannot block, and
	// holding it means Unsubscribe cannot close a channel mid-publish.
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for sub := range h.subscribers {
		select {
		case sub.ch <- event:
			delivered++
		default:
			slog.Warn("subscriber buffer full, dropping event",
				"total_merit", totalMerit,
				"action", string(action),
			)
		}
	}

	slog.Debug("event published",
		"total_merit", totalMerit,
		"action", string(action),
		"delivered", delivered,
		"subscribers", len(h.subscribers),
	)
}

// SubscriberCount returns the number of currently registered subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
