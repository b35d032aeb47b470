// Package domain contains core business types and interfaces.
//
// This file defines the User domain type and subscription tiers.
// Identity and authentication are handled outside this module; the user
// record here carries only what the entitlement and redemption logic
// needs: the subscription tier, bonus redemption grants, and the account
// creation time that anchors billing periods.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tier represents a named subscription level.
type Tier string

const (
	TierNone    Tier = "none"
	TierFree    Tier = "free"
	TierBasic   Tier = "basic"
	TierPremium Tier = "premium"
	TierVIP     Tier = "vip"
)

// Valid returns true if the tier is one of the known subscription levels.
func (t Tier) Valid() bool {
	switch t {
	case TierNone, TierFree, TierBasic, TierPremium, TierVIP:
		return true
	}
	return false
}

// User is the domain view of a marketplace member.
//
// ExtraRedemptions are bonus grants added by admin tooling. They never
// expire and never reset; they stack additively on top of the plan quota.
type User struct {
	ID               uuid.UUID
	Tier             Tier
	ExtraRedemptions int
	CreatedAt        time.Time
}

// SubscriptionAnchor returns the date billing periods roll from.
func (u *User) SubscriptionAnchor() time.Time {
	return u.CreatedAt
}
