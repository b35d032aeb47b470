// Package domain contains core business types and interfaces.
//
// This file defines subscription plan types and the quota normalization
// rules the entitlement calculator depends on.
package domain

// BillingPeriod is the cadence a plan's allotment is granted on.
type BillingPeriod string

const (
	BillingMonthly BillingPeriod = "monthly"
	BillingYearly  BillingPeriod = "yearly"
)

// UnlimitedThreshold is the sentinel quota value at or above which a plan
// grants unlimited redemptions. Stored plans use 999999 by convention.
const UnlimitedThreshold = 999999

// SubscriptionPlan maps a tier to its redemption quota.
//
// Exactly one active plan exists per tier. Plans are resolved from the
// catalog at check time rather than cached, so admin quota changes take
// effect on the next entitlement check.
type SubscriptionPlan struct {
	Tier                 Tier
	RedemptionsPerPeriod int
	BillingPeriod        BillingPeriod
}

// IsUnlimited returns true if the plan never gates on redemption count.
func (p *SubscriptionPlan) IsUnlimited() bool {
	return p.RedemptionsPerPeriod >= UnlimitedThreshold
}

// MonthlyAllotment returns the plan quota normalized to a monthly figure.
//
// Yearly plans spread their allotment evenly across the year, rounded
// down, because usage is always checked against a rolling monthly window.
// Yearly subscribers get a steady monthly cadence rather than a
// once-a-year lump allotment.
func (p *SubscriptionPlan) MonthlyAllotment() int {
	if p.BillingPeriod == BillingYearly {
		return p.RedemptionsPerPeriod / 12
	}
	return p.RedemptionsPerPeriod
}
