package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dealhive/dealhive/internal/domain"
	"github.com/dealhive/dealhive/internal/store/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seedUser creates a user on the given tier with n active wallet items
// spread over distinct deals.
func seedUser(st *memory.Store, tier domain.Tier, extra, activeItems int) uuid.UUID {
	userID := uuid.New()
	st.PutUser(domain.User{
		ID:               userID,
		Tier:             tier,
		ExtraRedemptions: extra,
		CreatedAt:        time.Now().UTC().AddDate(0, -2, 0),
	})
	for i := 0; i < activeItems; i++ {
		st.SeedWalletItem(domain.WalletItem{
			ID:     uuid.New(),
			UserID: userID,
			DealID: uuid.New(),
			Status: domain.WalletItemActive,
		})
	}
	return userID
}

func TestCheckMonthlyLimit(t *testing.T) {
	tests := []struct {
		name          string
		plan          domain.SubscriptionPlan
		extra         int
		activeItems   int
		wantAllowed   bool
		wantRemaining int
		wantLimit     int
	}{
		{
			name:          "basic allow with capacity left",
			plan:          domain.SubscriptionPlan{Tier: domain.TierBasic, RedemptionsPerPeriod: 10, BillingPeriod: domain.BillingMonthly},
			activeItems:   5,
			wantAllowed:   true,
			wantRemaining: 5,
			wantLimit:     10,
		},
		{
			name:          "free tier at limit",
			plan:          domain.SubscriptionPlan{Tier: domain.TierFree, RedemptionsPerPeriod: 3, BillingPeriod: domain.BillingMonthly},
			activeItems:   3,
			wantAllowed:   false,
			wantRemaining: 0,
			wantLimit:     3,
		},
		{
			name:          "usage above limit clamps to zero",
			plan:          domain.SubscriptionPlan{Tier: domain.TierBasic, RedemptionsPerPeriod: 10, BillingPeriod: domain.BillingMonthly},
			activeItems:   12,
			wantAllowed:   false,
			wantRemaining: 0,
			wantLimit:     10,
		},
		{
			name:          "bonus grants raise the ceiling",
			plan:          domain.SubscriptionPlan{Tier: domain.TierFree, RedemptionsPerPeriod: 3, BillingPeriod: domain.BillingMonthly},
			extra:         2,
			activeItems:   4,
			wantAllowed:   true,
			wantRemaining: 1,
			wantLimit:     5,
		},
		{
			name:          "yearly quota normalizes to monthly",
			plan:          domain.SubscriptionPlan{Tier: domain.TierPremium, RedemptionsPerPeriod: 120, BillingPeriod: domain.BillingYearly},
			activeItems:   2,
			wantAllowed:   true,
			wantRemaining: 8,
			wantLimit:     10,
		},
		{
			name:          "zero quota tier",
			plan:          domain.SubscriptionPlan{Tier: domain.TierNone, RedemptionsPerPeriod: 0, BillingPeriod: domain.BillingMonthly},
			activeItems:   0,
			wantAllowed:   false,
			wantRemaining: 0,
			wantLimit:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := memory.New()
			st.PutPlan(tt.plan)
			userID := seedUser(st, tt.plan.Tier, tt.extra, tt.activeItems)

			catalog := NewPlanCatalog(st, testLogger())
			svc := NewEntitlementService(st, catalog, testLogger())

			ent, err := svc.CheckMonthlyLimit(context.Background(), userID)
			if err != nil {
				t.Fatalf("CheckMonthlyLimit() error = %v", err)
			}

			if ent.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", ent.Allowed, tt.wantAllowed)
			}
			if ent.Remaining != tt.wantRemaining {
				t.Errorf("Remaining = %d, want %d", ent.Remaining, tt.wantRemaining)
			}
			if ent.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", ent.Limit, tt.wantLimit)
			}
			if ent.Unlimited {
				t.Error("Unlimited = true for a limited plan")
			}
			if ent.NextRenewal.IsZero() {
				t.Error("NextRenewal not populated")
			}
		})
	}
}

// usageQueryGuard fails the test if the usage count is ever consulted.
type usageQueryGuard struct {
	*memory.Store
	t *testing.T
}

func (g *usageQueryGuard) CountActiveWalletItems(ctx context.Context, userID uuid.UUID) (int64, error) {
	g.t.Error("CountActiveWalletItems called for an unlimited plan")
	return g.Store.CountActiveWalletItems(ctx, userID)
}

func TestCheckMonthlyLimit_UnlimitedBypassesUsageQuery(t *testing.T) {
	st := memory.New()
	st.PutPlan(domain.SubscriptionPlan{
		Tier:                 domain.TierVIP,
		RedemptionsPerPeriod: 999999,
		BillingPeriod:        domain.BillingMonthly,
	})
	userID := seedUser(st, domain.TierVIP, 0, 40)

	guard := &usageQueryGuard{Store: st, t: t}
	catalog := NewPlanCatalog(guard, testLogger())
	svc := NewEntitlementService(guard, catalog, testLogger())

	ent, err := svc.CheckMonthlyLimit(context.Background(), userID)
	if err != nil {
		t.Fatalf("CheckMonthlyLimit() error = %v", err)
	}
	if !ent.Allowed || !ent.Unlimited {
		t.Errorf("got Allowed=%v Unlimited=%v, want both true", ent.Allowed, ent.Unlimited)
	}
}

func TestCheckMonthlyLimit_PlanNotConfigured(t *testing.T) {
	st := memory.New()
	userID := seedUser(st, domain.TierBasic, 0, 0) // no plan seeded

	catalog := NewPlanCatalog(st, testLogger())
	svc := NewEntitlementService(st, catalog, testLogger())

	_, err := svc.CheckMonthlyLimit(context.Background(), userID)
	if err == nil {
		t.Fatal("expected error for missing plan")
	}
	if code := domain.ErrorCode(err); code != domain.EPLANCONFIG {
		t.Errorf("error code = %q, want %q", code, domain.EPLANCONFIG)
	}
}

func TestCheckMonthlyLimit_UnknownUser(t *testing.T) {
	st := memory.New()
	catalog := NewPlanCatalog(st, testLogger())
	svc := NewEntitlementService(st, catalog, testLogger())

	_, err := svc.CheckMonthlyLimit(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected error for unknown user")
	}
	if code := domain.ErrorCode(err); code != domain.ENOTFOUND {
		t.Errorf("error code = %q, want %q", code, domain.ENOTFOUND)
	}
}
