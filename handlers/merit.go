// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"math"
	"net/http"

	"github.com/danielhkuo/merit-box/auth"
	"github.com/danielhkuo/merit-box/cliparse"
	"github.com/danielhkuo/merit-box/hub"
	"github.com/danielhkuo/merit-box/merit"
	"github.com/danielhkuo/merit-box/middleware"
	"github.com/danielhkuo/merit-box/models"
)

type MeritHandler struct {
	store *merit.Store
	hub   *hub.Hub
	cfg   cliparse.Config
}

func NewMeritHandler(store *merit.Store, h *hub.Hub, cfg cliparse.Config) *MeritHandler {
	return &MeritHandler{store: store, hub: h, cfg: cfg}
}

// Read handles GET /merit
func (h *MeritHandler) Read(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.GetOrCreate()
	if err != nil {
		slog.Error("failed to load merit record", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load merit")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MeritResponse{
		Success:     true,
		TotalMerit:  rec.TotalMerit,
		LastUpdated: rec.LastUpdated,
	})
}

// Increment handles POST /merit. Public: no auth, and deliberately not
// idempotent - every call adds one.
func (h *MeritHandler) Increment(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.GetOrCreate()
	if err != nil {
		slog.Error("failed to load merit record", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add merit")
		return
	}

	rec, err = h.store.Increment(rec.ID)
	if err != nil {
		slog.Error("failed to increment merit", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add merit")
		return
	}

	// Publish only after the write has committed.
	h.hub.Publish(rec.TotalMerit, models.ActionIncrement)

	slog.Info("merit incremented", "total_merit", rec.TotalMerit)

	middleware.JSONResponse(w, http.StatusOK, models.MeritResponse{
		Success:     true,
		TotalMerit:  rec.TotalMerit,
		LastUpdated: rec.LastUpdated,
	})
}

// AdminSet handles PUT /merit. The password check runs first and a
// failure mutates nothing and publishes nothing; the value check runs
// second with the same guarantee.
func (h *MeritHandler) AdminSet(w http.ResponseWriter, r *http.Request) {
	var req models.AdminSetRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := auth.VerifyAdminPassword(req.AdminPassword, h.cfg.AdminPassword); err != nil {
		slog.Warn("admin set rejected", "reason", "bad password", "remote", r.RemoteAddr)
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin password")
		return
	}

	if req.TotalMerit == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "totalMerit is required")
		return
	}
	requested := *req.TotalMerit
	if requested < 0 || requested != math.Trunc(requested) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "totalMerit must be a non-negative integer")
		return
	}
	value := int(requested)

	rec, err := h.store.GetOrCreate()
	if err != nil {
		slog.Error("failed to load merit record", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update merit")
		return
	}

	rec, err = h.store.Set(rec.ID, value)
	if errors.Is(err, merit.ErrInvalidValue) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "totalMerit must be a non-negative integer")
		return
	}
	if err != nil {
		slog.Error("failed to set merit", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update merit")
		return
	}

	h.hub.Publish(rec.TotalMerit, models.ActionUpdate)

	slog.Info("merit set by admin", "total_merit", rec.TotalMerit)

	middleware.JSONResponse(w, http.StatusOK, models.MeritResponse{
		Success:     true,
		TotalMerit:  rec.TotalMerit,
		LastUpdated: rec.LastUpdated,
	})
}
