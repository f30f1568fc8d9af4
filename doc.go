// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Merit Box API server.

Merit Box is a real-time shared counter: anyone can add merit, every
connected client sees the new total live over a WebSocket, and an
administrator with the shared password can set the value outright.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=merit.db ADMIN_PASSWORD=... go run main.go

Or with flags:

	go run main.go -p 3000 -d merit.db --admin-password ...

A .env file in the working directory is loaded automatically.

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite path or postgres connection string
  - ADMIN_PASSWORD (--admin-password): shared admin secret

Optional settings:

  - PORT (-p): Server port (default: 3000)
  - DATABASE_TYPE (-t): "sqlite" (default) or "postgres"

# Architecture

The server uses a handler-based architecture with dependency injection:

  - merit: the persisted counter store (atomic SQL increment)
  - hub: broadcast fan-out to connected WebSocket clients
  - handlers: HTTP request handlers (counter, admin verify, WebSocket)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response/event types
  - auth: Admin password verification
  - db: Schema creation
  - cliparse: Configuration parsing
  - client: Go client implementing the session reconciliation logic

Exactly one store and one hub are constructed here and passed by
reference; nothing reaches for process-global state.

See package documentation for each component.
*/
package main
