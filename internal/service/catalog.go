// Package service contains the business logic layer.
//
// This file implements the plan catalog: read-only resolution of a
// subscription tier to its redemption quota and billing period.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dealhive/dealhive/internal/domain"
	"github.com/dealhive/dealhive/internal/store"
)

// =============================================================================
// Interface Definition
// =============================================================================

// PlanCatalog resolves tiers to their active subscription plan.
type PlanCatalog interface {
	// GetPlanForTier returns the single active plan for a tier.
	// A missing plan row is a configuration fault, logged loudly and
	// returned as a PlanNotFound error, distinct from limit failures.
	GetPlanForTier(ctx context.Context, tier domain.Tier) (*domain.SubscriptionPlan, error)
}

// =============================================================================
// Implementation
// =============================================================================

type planCatalog struct {
	store  store.Store
	logger *slog.Logger
}

// NewPlanCatalog creates a new PlanCatalog.
func NewPlanCatalog(st store.Store, logger *slog.Logger) PlanCatalog {
	return &planCatalog{
		store:  st,
		logger: logger,
	}
}

// GetPlanForTier returns the single active plan for a tier.
//
// Plans are read from the store on every call. Caching them would delay
// admin quota changes, which must take effect on the next check.
func (c *planCatalog) GetPlanForTier(ctx context.Context, tier domain.Tier) (*domain.SubscriptionPlan, error) {
	const op = "catalog.get_plan"

	plan, err := c.store.GetPlanByTier(ctx, tier)
	if errors.Is(err, store.ErrNotFound) {
		c.logger.Error("no active subscription plan configured for tier",
			"tier", tier,
			"op", op,
		)
		return nil, domain.PlanNotFound(op, tier)
	}
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load plan")
	}
	return plan, nil
}
