// Package handler implements the JSON API surface.
//
// This file serves the entitlement endpoint used by clients to render
// "X of Y redemptions left" banners.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dealhive/dealhive/internal/domain"
	"github.com/dealhive/dealhive/internal/middleware"
	"github.com/dealhive/dealhive/internal/service"
)

// EntitlementHandler serves monthly limit information.
type EntitlementHandler struct {
	entitlement service.EntitlementService
	logger      *slog.Logger
}

// NewEntitlementHandler creates a new EntitlementHandler.
func NewEntitlementHandler(entitlement service.EntitlementService, logger *slog.Logger) *EntitlementHandler {
	return &EntitlementHandler{
		entitlement: entitlement,
		logger:      logger,
	}
}

// RegisterRoutes registers the entitlement routes on the mux.
func (h *EntitlementHandler) RegisterRoutes(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	mux.Handle("GET /api/entitlement", protect(http.HandlerFunc(h.Get)))
}

type entitlementResponse struct {
	Allowed     bool      `json:"allowed"`
	Remaining   int       `json:"remaining"`
	Limit       int       `json:"limit"`
	Unlimited   bool      `json:"unlimited"`
	NextRenewal time.Time `json:"next_renewal"`
}

// Get returns the caller's remaining redemption capacity.
func (h *EntitlementHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		ErrorResponse(w, r, h.logger, domain.Unauthorized("entitlement.get", "identity required"))
		return
	}

	ent, err := h.entitlement.CheckMonthlyLimit(r.Context(), userID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, entitlementResponse{
		Allowed:     ent.Allowed,
		Remaining:   ent.Remaining,
		Limit:       ent.Limit,
		Unlimited:   ent.Unlimited,
		NextRenewal: ent.NextRenewal,
	})
}
