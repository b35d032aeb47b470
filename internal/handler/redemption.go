// Package handler implements the JSON API surface.
//
// This file serves the redemption endpoint.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dealhive/dealhive/internal/domain"
	"github.com/dealhive/dealhive/internal/middleware"
	"github.com/dealhive/dealhive/internal/service"
)

// RedemptionHandler serves deal redemption.
type RedemptionHandler struct {
	redemption service.RedemptionService
	logger     *slog.Logger
}

// NewRedemptionHandler creates a new RedemptionHandler.
func NewRedemptionHandler(redemption service.RedemptionService, logger *slog.Logger) *RedemptionHandler {
	return &RedemptionHandler{
		redemption: redemption,
		logger:     logger,
	}
}

// RegisterRoutes registers the redemption route on the mux.
func (h *RedemptionHandler) RegisterRoutes(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	mux.Handle("POST /api/deals/{dealID}/redeem", protect(http.HandlerFunc(h.Redeem)))
}

type redeemRequest struct {
	Style string `json:"style"`
}

type redemptionResponse struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	DealID     uuid.UUID `json:"deal_id"`
	RedeemedAt time.Time `json:"redeemed_at"`
	Style      string    `json:"style,omitempty"`
}

// Redeem performs the redemption and returns the audit record.
func (h *RedemptionHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	const op = "redemption.http"

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		ErrorResponse(w, r, h.logger, domain.Unauthorized(op, "identity required"))
		return
	}

	dealID, err := uuid.Parse(r.PathValue("dealID"))
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "invalid deal id"))
		return
	}

	// The body is optional; only the redemption style is accepted.
	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "malformed request body"))
		return
	}

	rec, err := h.redemption.RedeemDeal(r.Context(), userID, dealID, domain.RedemptionStyle(req.Style))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, redemptionResponse{
		ID:         rec.ID,
		UserID:     rec.UserID,
		DealID:     rec.DealID,
		RedeemedAt: rec.RedeemedAt,
		Style:      string(rec.Style),
	})
}
