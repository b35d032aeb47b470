// Package service contains the business logic layer.
//
// This file implements the wallet service: saving a deal as an active
// claim, releasing it, and listing a user's wallet. Claims are
// entitlement-gated because holding a claim consumes monthly capacity.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dealhive/dealhive/internal/domain"
	"github.com/dealhive/dealhive/internal/metrics"
	"github.com/dealhive/dealhive/internal/store"
)

// =============================================================================
// Interface Definition
// =============================================================================

// WalletService manages a user's claimed deals.
type WalletService interface {
	// SaveDeal claims a deal into the user's wallet as an active item.
	// Fails with a conflict if an active claim already exists, with
	// DealExpired for expired deals, and with LimitExceeded when the user
	// has no capacity left.
	SaveDeal(ctx context.Context, userID, dealID uuid.UUID) (*domain.WalletItem, error)

	// ReleaseDeal flips the user's active claim to removed, freeing the
	// capacity it held. Redeemed claims cannot be released.
	ReleaseDeal(ctx context.Context, userID, dealID uuid.UUID) error

	// ListWallet returns the user's wallet items, newest claim first.
	ListWallet(ctx context.Context, userID uuid.UUID) ([]domain.WalletItem, error)
}

// =============================================================================
// Implementation
// =============================================================================

type walletService struct {
	store       store.Store
	entitlement EntitlementService
	logger      *slog.Logger
}

// NewWalletService creates a new WalletService.
func NewWalletService(st store.Store, entitlement EntitlementService, logger *slog.Logger) WalletService {
	return &walletService{
		store:       st,
		entitlement: entitlement,
		logger:      logger,
	}
}

func (s *walletService) SaveDeal(ctx context.Context, userID, dealID uuid.UUID) (*domain.WalletItem, error) {
	const op = "wallet.save_deal"

	deal, err := s.store.GetDeal(ctx, dealID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.NotFound(op, "deal", dealID.String())
	}
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load deal")
	}

	now := time.Now().UTC()
	if deal.IsExpired(now) {
		return nil, domain.DealExpired(op, dealID)
	}

	ent, err := s.entitlement.CheckMonthlyLimit(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ent.Allowed {
		return nil, domain.LimitExceeded(op, 0, ent.Limit)
	}

	item := &domain.WalletItem{
		ID:        uuid.New(),
		UserID:    userID,
		DealID:    dealID,
		Status:    domain.WalletItemActive,
		ClaimedAt: now,
	}

	err = s.store.CreateWalletItem(ctx, item)
	if errors.Is(err, store.ErrDuplicateActive) {
		return nil, domain.Conflict(op, "deal is already in your wallet")
	}
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create wallet item")
	}

	metrics.WalletClaims.Inc()
	s.logger.Info("deal claimed",
		"user_id", userID,
		"deal_id", dealID,
	)
	return item, nil
}

func (s *walletService) ReleaseDeal(ctx context.Context, userID, dealID uuid.UUID) error {
	const op = "wallet.release_deal"

	rows, err := s.store.ReleaseWalletItem(ctx, userID, dealID)
	if err != nil {
		return domain.Internal(err, op, "failed to release wallet item")
	}
	if rows == 0 {
		return domain.NotFound(op, "active wallet item for deal", dealID.String())
	}

	metrics.WalletReleases.Inc()
	s.logger.Info("deal released",
		"user_id", userID,
		"deal_id", dealID,
	)
	return nil
}

func (s *walletService) ListWallet(ctx context.Context, userID uuid.UUID) ([]domain.WalletItem, error) {
	const op = "wallet.list"

	items, err := s.store.ListWalletItems(ctx, userID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list wallet items")
	}
	return items, nil
}
