// Package handler implements the JSON API surface.
//
// This file serves the wallet endpoints: claiming a deal, releasing a
// claim, and listing the wallet.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dealhive/dealhive/internal/domain"
	"github.com/dealhive/dealhive/internal/middleware"
	"github.com/dealhive/dealhive/internal/service"
)

// WalletHandler serves wallet claim operations.
type WalletHandler struct {
	wallet service.WalletService
	logger *slog.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(wallet service.WalletService, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{
		wallet: wallet,
		logger: logger,
	}
}

// RegisterRoutes registers the wallet routes on the mux.
func (h *WalletHandler) RegisterRoutes(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	mux.Handle("GET /api/wallet", protect(http.HandlerFunc(h.List)))
	mux.Handle("POST /api/wallet/{dealID}", protect(http.HandlerFunc(h.Save)))
	mux.Handle("DELETE /api/wallet/{dealID}", protect(http.HandlerFunc(h.Release)))
}

type walletItemResponse struct {
	ID         uuid.UUID  `json:"id"`
	DealID     uuid.UUID  `json:"deal_id"`
	Status     string     `json:"status"`
	ClaimedAt  time.Time  `json:"claimed_at"`
	RedeemedAt *time.Time `json:"redeemed_at,omitempty"`
}

// List returns the caller's wallet items, newest claim first.
func (h *WalletHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		ErrorResponse(w, r, h.logger, domain.Unauthorized("wallet.list", "identity required"))
		return
	}

	items, err := h.wallet.ListWallet(r.Context(), userID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]walletItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, walletItemResponse{
			ID:         item.ID,
			DealID:     item.DealID,
			Status:     string(item.Status),
			ClaimedAt:  item.ClaimedAt,
			RedeemedAt: item.RedeemedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": out})
}

// Save claims a deal into the caller's wallet.
func (h *WalletHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		ErrorResponse(w, r, h.logger, domain.Unauthorized("wallet.save", "identity required"))
		return
	}

	dealID, err := uuid.Parse(r.PathValue("dealID"))
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("wallet.save", "invalid deal id"))
		return
	}

	item, err := h.wallet.SaveDeal(r.Context(), userID, dealID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, walletItemResponse{
		ID:        item.ID,
		DealID:    item.DealID,
		Status:    string(item.Status),
		ClaimedAt: item.ClaimedAt,
	})
}

// Release frees an active claim.
func (h *WalletHandler) Release(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		ErrorResponse(w, r, h.logger, domain.Unauthorized("wallet.release", "identity required"))
		return
	}

	dealID, err := uuid.Parse(r.PathValue("dealID"))
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("wallet.release", "invalid deal id"))
		return
	}

	if err := h.wallet.ReleaseDeal(r.Context(), userID, dealID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
