// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Merit Box API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(store, h, clock, cfg)

# Endpoints

Health:

	GET /health

Counter (public):

	GET  /merit - Current value
	POST /merit - Add one merit

Counter (admin):

	PUT  /merit         - Absolute set, password in body
	POST /admin/verify  - Credential check only, no mutation

Push channel:

	GET /ws - WebSocket with merit-updated events

# Handler Initialization

The router creates handler instances with dependency injection:

	meritHandler := handlers.NewMeritHandler(store, h, cfg)
	adminHandler := handlers.NewAdminHandler(cfg)
	wsHandler := handlers.NewWSHandler(h, clock, handlers.DefaultWSConfig())

The store and hub are constructed once in main and passed down so there
is a single owned broadcast registry for the whole process.
*/
package router
