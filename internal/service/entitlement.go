// Package service contains the business logic layer.
//
// This file implements the entitlement calculator: given a user, decide
// whether one more redemption is currently allowed and how many remain
// in the billing window.
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

// EntitlementService computes remaining redemption capacity.
type EntitlementService interface {
	// CheckMonthlyLimit returns whether the user may redeem one more deal
	// right now, along with the remaining/limit pair for quota banners.
	CheckMonthlyLimit(ctx context.Context, userID uuid.UUID) (*domain.Entitlement, error)
}

// =============================================================================
// Implementation
// =============================================================================

type entitlementService struct {
	store   store.Store
	catalog PlanCatalog
	logger  *slog.Logger
}

// NewEntitlementService creates a new EntitlementService.
func NewEntitlementService(st store.Store, catalog PlanCatalog, logger *slog.Logger) EntitlementService {
	return &entitlementService{
		store:   st,
		catalog: catalog,
		logger:  logger,
	}
}

// CheckMonthlyLimit computes the user's remaining redemption capacity.
//
// The effective limit is the plan quota normalized to a monthly figure
// (yearly allotments are spread across twelve windows) plus the user's
// bonus grants. Usage is the count of currently active wallet items, not
// a historical count of redemption events: holding a claimed deal
// occupies capacity until it is redeemed or released. A user who claims
// deals and never redeems them is still out of capacity. Product policy,
// surfaced here on purpose.
func (s *entitlementService) CheckMonthlyLimit(ctx context.Context, userID uuid.UUID) (*domain.Entitlement, error) {
	const op = "entitlement.check_monthly_limit"

	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.NotFound(op, "user", userID.String())
	}
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load user")
	}

	plan, err := s.catalog.GetPlanForTier(ctx, user.Tier)
	if err != nil {
		return nil, err
	}

	window := domain.CurrentPeriod(user.SubscriptionAnchor(), plan.BillingPeriod, time.Now().UTC())

	// Unlimited plans skip the usage query entirely.
	if plan.IsUnlimited() {
		metrics.EntitlementChecks.WithLabelValues("true").Inc()
		return &domain.Entitlement{
			Allowed:     true,
			Unlimited:   true,
			NextRenewal: window.NextRenewal,
		}, nil
	}

	limit := plan.MonthlyAllotment() + user.ExtraRedemptions

	active, err := s.store.CountActiveWalletItems(ctx, userID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to count active wallet items")
	}

	remaining := limit - int(active)
	if remaining < 0 {
		// Usage can exceed the limit after an admin grant is revoked or a
		// quota is lowered; never report negative capacity.
		remaining = 0
	}

	allowed := remaining > 0
	if !allowed {
		s.logger.Info("monthly redemption limit reached",
			"user_id", userID,
			"tier", user.Tier,
			"active", active,
			"limit", limit,
		)
	}
	metrics.EntitlementChecks.WithLabelValues(boolLabel(allowed)).Inc()

	return &domain.Entitlement{
		Allowed:     allowed,
		Remaining:   remaining,
		Limit:       limit,
		NextRenewal: window.NextRenewal,
	}, nil
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
