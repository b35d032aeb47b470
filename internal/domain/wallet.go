// Package domain contains core business types and interfaces.
//
// This file defines the WalletItem lifecycle. A wallet item is a user's
// claim on a deal: created active when the deal is saved, flipped to
// redeemed exactly once by the redemption engine, or released to removed
// by the user. There is no path back from redeemed.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// WalletItemStatus is the lifecycle state of a claim.
type WalletItemStatus string

const (
	WalletItemActive   WalletItemStatus = "active"
	WalletItemRedeemed WalletItemStatus = "redeemed"
	WalletItemRemoved  WalletItemStatus = "removed"
)

// WalletItem is a user's claim on a specific deal.
//
// At most one active item exists per (user, deal) pair; the store
// enforces this with a uniqueness constraint.
type WalletItem struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	DealID     uuid.UUID
	Status     WalletItemStatus
	ClaimedAt  time.Time
	RedeemedAt *time.Time
}

// WalletLookupState classifies the result of looking up a (user, deal)
// claim. The three-way split keeps the engine's owned/unowned path
// selection exhaustive instead of chained nil/status checks.
type WalletLookupState int

const (
	// WalletNotFound means the user holds no live claim on the deal.
	// Released (removed) items resolve here.
	WalletNotFound WalletLookupState = iota

	// WalletActive means the user holds a claim that can still be redeemed.
	WalletActive

	// WalletRedeemed means the claim was already redeemed.
	WalletRedeemed
)

// WalletLookup is the tagged result of a claim lookup.
// Item is nil exactly when State is WalletNotFound.
type WalletLookup struct {
	State WalletLookupState
	Item  *WalletItem
}
