// Package domain contains core business types and interfaces.
//
// This file defines the Deal read model. Deal content, images and
// partner submission workflows live outside this module; the engine only
// needs expiry, redemption caps and pricing for wallet payloads.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Deal is the read-mostly view of a marketplace deal.
type Deal struct {
	ID            uuid.UUID
	Title         string
	OriginalPrice decimal.Decimal
	DealPrice     decimal.Decimal

	// MaxRedemptionsTotal caps redemptions across all users. Nil means no cap.
	MaxRedemptionsTotal *int

	// MaxUserRedemptions caps redemptions per user, independent of the
	// subscription period. Nil means no cap.
	MaxUserRedemptions *int

	// IsSoldOut is a derived flag, refreshed when the global cap trips.
	IsSoldOut bool

	ExpiresAt *time.Time
	CreatedAt time.Time
}

// IsExpired returns true if the deal can no longer be redeemed.
// Deals without an expiry never expire.
func (d *Deal) IsExpired(now time.Time) bool {
	return d.ExpiresAt != nil && !now.Before(*d.ExpiresAt)
}

// Savings returns the discount amount for display purposes.
func (d *Deal) Savings() decimal.Decimal {
	return d.OriginalPrice.Sub(d.DealPrice)
}
