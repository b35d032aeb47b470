// Package domain contains core business types and interfaces.
//
// This file defines the RedemptionRecord audit entry and the entitlement
// result returned to callers.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// RedemptionStyle describes how a deal was redeemed, when the client
// reports it. Stored verbatim; an empty style is fine.
type RedemptionStyle string

const (
	RedemptionStyleInStore RedemptionStyle = "in_store"
	RedemptionStyleOnline  RedemptionStyle = "online"
)

// RedemptionRecord is an immutable append-only log entry created at the
// moment of a successful redemption. Records are never updated or
// deleted; they are both the audit trail and the basis for deal-level
// cap counting.
type RedemptionRecord struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	DealID     uuid.UUID
	RedeemedAt time.Time
	Style      RedemptionStyle
}

// Entitlement is the result of a monthly limit check.
//
// When Unlimited is true, Remaining and Limit are not meaningful and
// Allowed is always true. NextRenewal is always populated for display,
// even on unlimited plans.
type Entitlement struct {
	Allowed     bool
	Remaining   int
	Limit       int
	Unlimited   bool
	NextRenewal time.Time
}
