// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package hub broadcasts merit events to connected clients.

# Lifecycle

One Hub is constructed in main and passed by reference to the handlers
that publish and to the WebSocket endpoint that subscribes:

	h := hub.New(clockwork.NewRealClock())

# Contract

	sub := h.Subscribe()        // handle with a buffered event channel
	h.Publish(42, models.ActionIncrement)
	h.Unsubscribe(sub)          // idempotent, closes the channel

Delivery is best-effort to the subscribers registered when Publish runs.
No backlog for late subscribers, no queueing for the disconnected, no
replay. A slow subscriber whose buffer fills simply loses events - it can
never stall delivery to the rest.

Subscribe and Unsubscribe are safe to call concurrently with a publish in
progress; a subscriber that unsubscribes mid-publish may miss that event,
which the contract allows.
*/
package hub
