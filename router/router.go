// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/jonboulle/clockwork"

	"github.com/danielhkuo/merit-box/cliparse"
	"github.com/danielhkuo/merit-box/handlers"
	"github.com/danielhkuo/merit-box/hub"
	"github.com/danielhkuo/merit-box/merit"
	"github.com/danielhkuo/merit-box/middleware"
)

func NewRouter(store *merit.Store, h *hub.Hub, clock clockwork.Clock, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	meritHandler := handlers.NewMeritHandler(store, h, cfg)
	adminHandler := handlers.NewAdminHandler(cfg)
	wsHandler := handlers.NewWSHandler(h, clock, handlers.DefaultWSConfig())

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Counter operations (public except PUT, which checks the password itself)
	mux.HandleFunc("GET /merit", middleware.WithLogging(meritHandler.Read))
	mux.HandleFunc("POST /merit", middleware.WithLogging(meritHandler.Increment))
	mux.HandleFunc("PUT /merit", middleware.WithLogging(meritHandler.AdminSet))

	// Admin authentication (never touches the counter)
	mux.HandleFunc("POST /admin/verify", middleware.WithLogging(adminHandler.Verify))

	// Push channel (long-lived; logged by the handler itself)
	mux.HandleFunc("GET /ws", wsHandler.Serve)

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("merit-box API v1"))
	})

	return mux
}
