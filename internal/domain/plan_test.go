package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionPlan_IsUnlimited(t *testing.T) {
	tests := []struct {
		name  string
		quota int
		want  bool
	}{
		{"zero quota", 0, false},
		{"typical monthly quota", 10, false},
		{"just below sentinel", UnlimitedThreshold - 1, false},
		{"sentinel", UnlimitedThreshold, true},
		{"above sentinel", 2000000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &SubscriptionPlan{Tier: TierVIP, RedemptionsPerPeriod: tt.quota, BillingPeriod: BillingMonthly}
			assert.Equal(t, tt.want, p.IsUnlimited())
		})
	}
}

func TestSubscriptionPlan_MonthlyAllotment(t *testing.T) {
	tests := []struct {
		name    string
		quota   int
		billing BillingPeriod
		want    int
	}{
		{"monthly passes through", 10, BillingMonthly, 10},
		{"yearly 120 spreads to 10", 120, BillingYearly, 10},
		{"yearly rounds down", 125, BillingYearly, 10},
		{"yearly below 12 floors to zero", 11, BillingYearly, 0},
		{"zero", 0, BillingYearly, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &SubscriptionPlan{RedemptionsPerPeriod: tt.quota, BillingPeriod: tt.billing}
			assert.Equal(t, tt.want, p.MonthlyAllotment())
		})
	}
}

func TestTier_Valid(t *testing.T) {
	for _, tier := range []Tier{TierNone, TierFree, TierBasic, TierPremium, TierVIP} {
		assert.True(t, tier.Valid(), "tier %q", tier)
	}
	assert.False(t, Tier("gold").Valid())
	assert.False(t, Tier("").Valid())
}
