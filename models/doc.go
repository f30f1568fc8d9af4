// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - AdminSetRequest: totalMerit, adminPassword
  - AdminVerifyRequest: adminPassword

# Response Types

Types for JSON responses:

  - MeritResponse: success, totalMerit, lastUpdated
  - ErrorResponse: success (always false), error, message

# Domain Types

  - MeritRecord: the singleton persisted counter (id, totalMerit,
    lastUpdated, createdAt)

# Push Channel Types

Everything crossing the WebSocket is a Frame envelope:

	{"event": "merit-updated", "data": {...}}
	{"event": "message",       "data": {...}}

Payloads:

  - MeritEvent: totalMerit, action, timestamp (one per successful mutation)
  - ChatMessage: text, senderId, timestamp (the echo side-channel)

# Actions

Action is a closed enum:

	ActionIncrement = "increment"
	ActionUpdate    = "update"

Marshalling or unmarshalling any other value fails, so consumers that
switch on Action are exhaustive by construction.
*/
package models
