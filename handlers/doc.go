// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Merit Box API.

# Handler Types

Each handler is a struct with its dependencies injected via constructor:

  - MeritHandler: counter operations (read, increment, admin set)
  - AdminHandler: standalone credential verification
  - WSHandler: the WebSocket push channel

	meritHandler := handlers.NewMeritHandler(store, h, cfg)

# Counter Operations

All three live on one path:

	GET  /merit → Read      (public)
	POST /merit → Increment (public, +1, publishes "increment")
	PUT  /merit → AdminSet  (password-gated, publishes "update")

AdminSet checks the password before anything else; a rejected request
never mutates state and never publishes. The value must be a non-negative
integer (400 otherwise). Storage failures map to 500 and also never
publish - an event always reflects a committed write.

# Admin Verification

	POST /admin/verify → 204 or 401

Verification is completely separate from mutation: logging in to the
admin page cannot touch the counter.

# Push Channel

	GET /ws

Upgrades to a WebSocket carrying Frame envelopes. The server pushes
merit-updated events fanned out by the hub, plus a welcome message on
connect. Client "message" frames are echoed back to the sender only and
never interfere with merit delivery. One writer goroutine per connection
owns the socket; pings keep idle connections alive.
*/
package handlers
