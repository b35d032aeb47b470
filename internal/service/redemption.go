// Package service contains the business logic layer.
//
// This file implements the redemption engine: the state machine that
// moves a wallet item from active to redeemed exactly once, or performs
// a direct redemption for deals the user never claimed.
//
// The engine holds no locks of its own. At-most-once for owned claims
// comes from the store's conditional update: the flip only applies to a
// row still in active state, so of N concurrent callers exactly one
// observes rows == 1. Everyone else is routed to a disambiguation read
// rather than a blind retry.
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

// RedemptionService performs deal redemptions.
type RedemptionService interface {
	// RedeemDeal redeems a deal for a user and returns the audit record.
	//
	// Failure kinds, all distinguishable by the caller: DealExpired,
	// AlreadyRedeemed, LimitExceeded, DealSoldOut, UserCapReached,
	// PlanNotFound. Storage errors propagate wrapped as internal errors;
	// the engine never retries on its own, because retrying a conditional
	// update after an ambiguous failure could break at-most-once.
	RedeemDeal(ctx context.Context, userID, dealID uuid.UUID, style domain.RedemptionStyle) (*domain.RedemptionRecord, error)
}

// =============================================================================
// Implementation
// =============================================================================

type redemptionService struct {
	store       store.Store
	entitlement EntitlementService
	logger      *slog.Logger
}

// NewRedemptionService creates a new RedemptionService.
func NewRedemptionService(st store.Store, entitlement EntitlementService, logger *slog.Logger) RedemptionService {
	return &redemptionService{
		store:       st,
		entitlement: entitlement,
		logger:      logger,
	}
}

// RedeemDeal checks expiry first, then resolves the owned/unowned path,
// then capacity and caps. Expiry goes first so a clearly expired deal is
// reported as expired, never as sold out.
func (s *redemptionService) RedeemDeal(ctx context.Context, userID, dealID uuid.UUID, style domain.RedemptionStyle) (*domain.RedemptionRecord, error) {
	const op = "redemption.redeem"

	deal, err := s.store.GetDeal(ctx, dealID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.NotFound(op, "deal", dealID.String())
	}
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load deal")
	}

	now := time.Now().UTC()
	if deal.IsExpired(now) {
		// Ownership is not resolved yet, so the failure belongs to no path.
		metrics.Redemptions.WithLabelValues("expired", "n/a").Inc()
		return nil, domain.DealExpired(op, dealID)
	}

	rec := &domain.RedemptionRecord{
		ID:         uuid.New(),
		UserID:     userID,
		DealID:     dealID,
		RedeemedAt: now,
		Style:      style,
	}

	// Owned path: conditional flip of the active claim. The record is
	// written in the same store call, so a successful flip always has its
	// matching audit entry.
	rows, err := s.store.RedeemWalletItem(ctx, rec)
	if err != nil {
		metrics.Redemptions.WithLabelValues("error", "owned").Inc()
		return nil, domain.Internal(err, op, "failed to redeem wallet item")
	}
	if rows == 1 {
		metrics.Redemptions.WithLabelValues("success", "owned").Inc()
		s.logger.Info("deal redeemed",
			"user_id", userID,
			"deal_id", dealID,
			"record_id", rec.ID,
			"path", "owned",
		)
		return rec, nil
	}

	// Zero rows affected: the claim was not active. Disambiguate with a
	// read instead of retrying the update.
	lookup, err := s.store.GetWalletItem(ctx, userID, dealID)
	if err != nil {
		metrics.Redemptions.WithLabelValues("error", "owned").Inc()
		return nil, domain.Internal(err, op, "failed to inspect wallet item")
	}

	switch lookup.State {
	case domain.WalletRedeemed:
		metrics.Redemptions.WithLabelValues("already_redeemed", "owned").Inc()
		return nil, domain.AlreadyRedeemed(op, dealID)
	case domain.WalletActive:
		// A claim appeared between the failed flip and the read. Let the
		// caller decide whether to try again.
		metrics.Redemptions.WithLabelValues("conflict", "owned").Inc()
		return nil, domain.Conflict(op, "wallet item changed concurrently, please retry")
	case domain.WalletNotFound:
		return s.redeemDirect(ctx, userID, deal, rec)
	default:
		return nil, domain.Internal(nil, op, "unknown wallet lookup state")
	}
}

// redeemDirect is the unowned path: no wallet item to flip, so the
// entitlement check is the capacity gate, followed by the capped append
// of the record. The deal-level cap counts and the insert execute as one
// serialized store operation, so two concurrent callers at a cap
// boundary cannot both pass. No wallet item is created.
func (s *redemptionService) redeemDirect(ctx context.Context, userID uuid.UUID, deal *domain.Deal, rec *domain.RedemptionRecord) (*domain.RedemptionRecord, error) {
	const op = "redemption.redeem_direct"

	ent, err := s.entitlement.CheckMonthlyLimit(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ent.Allowed {
		metrics.Redemptions.WithLabelValues("limit_exceeded", "direct").Inc()
		return nil, domain.LimitExceeded(op, 0, ent.Limit)
	}

	err = s.store.InsertRedemptionCapped(ctx, rec, deal.MaxRedemptionsTotal, deal.MaxUserRedemptions)
	switch {
	case errors.Is(err, store.ErrDealCapReached):
		if !deal.IsSoldOut {
			// Refresh the derived flag so listings stop offering the deal.
			if err := s.store.MarkDealSoldOut(ctx, deal.ID); err != nil {
				s.logger.Warn("failed to mark deal sold out",
					"deal_id", deal.ID,
					"error", err,
				)
			}
		}
		metrics.Redemptions.WithLabelValues("sold_out", "direct").Inc()
		return nil, domain.DealSoldOut(op, deal.ID)
	case errors.Is(err, store.ErrUserCapReached):
		metrics.Redemptions.WithLabelValues("user_cap", "direct").Inc()
		return nil, domain.UserCapReached(op, deal.ID, *deal.MaxUserRedemptions)
	case err != nil:
		metrics.Redemptions.WithLabelValues("error", "direct").Inc()
		return nil, domain.Internal(err, op, "failed to insert redemption record")
	}

	metrics.Redemptions.WithLabelValues("success", "direct").Inc()
	s.logger.Info("deal redeemed",
		"user_id", userID,
		"deal_id", deal.ID,
		"record_id", rec.ID,
		"path", "direct",
	)
	return rec, nil
}
