// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/merit-box/auth"
	"github.com/danielhkuo/merit-box/cliparse"
	"github.com/danielhkuo/merit-box/middleware"
	"github.com/danielhkuo/merit-box/models"
)

type AdminHandler struct {
	cfg cliparse.Config
}

func NewAdminHandler(cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{cfg: cfg}
}

// Verify handles POST /admin/verify. It checks the credential and nothing
// else - verifying a password never reads or writes the counter, so the
// admin UI can log in without risking a stray mutation.
func (h *AdminHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req models.AdminVerifyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := auth.VerifyAdminPassword(req.AdminPassword, h.cfg.AdminPassword); err != nil {
		slog.Warn("admin verify rejected", "remote", r.RemoteAddr)
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin password")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
