// Package store defines the persistence contract for the redemption
// engine and its collaborators.
//
// This package defines a Store interface with implementations for:
// - memory.Store: Mutex-guarded in-memory storage for development and tests
// - postgres.Store: PostgreSQL storage for production
//
// The engine's at-most-once guarantee rests entirely on the atomicity of
// RedeemWalletItem and the uniqueness constraint behind
// CreateWalletItem, so both are spelled out here as explicit primitives
// rather than left as accidental properties of a particular database.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dealhive/dealhive/internal/domain"
)

// Sentinel errors returned by Store implementations.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrDuplicateActive indicates an active wallet item already exists
	// for the (user, deal) pair.
	ErrDuplicateActive = errors.New("store: active wallet item already exists")

	// ErrDealCapReached indicates the deal-wide redemption cap would be
	// exceeded by the insert.
	ErrDealCapReached = errors.New("store: deal redemption cap reached")

	// ErrUserCapReached indicates the per-user redemption cap for the
	// deal would be exceeded by the insert.
	ErrUserCapReached = errors.New("store: per-user redemption cap reached")
)

// Store is the persistence contract for users, plans, deals, wallet
// items and redemption records.
//
// Users, plans and deals are read-only here: their write paths belong to
// identity, admin and partner tooling outside this module. Wallet items
// and redemption records are exclusively owned by this module's write
// path.
type Store interface {
	// GetUser returns the user's tier, bonus grants and subscription anchor.
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetPlanByTier resolves the single active plan for a tier.
	// Returns ErrNotFound if the tier has no active plan row.
	GetPlanByTier(ctx context.Context, tier domain.Tier) (*domain.SubscriptionPlan, error)

	// GetDeal returns a deal by id.
	GetDeal(ctx context.Context, id uuid.UUID) (*domain.Deal, error)

	// MarkDealSoldOut refreshes the derived sold-out flag on a deal.
	// Idempotent; used opportunistically when the global cap trips.
	MarkDealSoldOut(ctx context.Context, id uuid.UUID) error

	// GetWalletItem classifies the user's claim on a deal. An active item
	// wins over historical ones; released items resolve to not-found.
	GetWalletItem(ctx context.Context, userID, dealID uuid.UUID) (domain.WalletLookup, error)

	// ListWalletItems returns the user's wallet items, newest claim first.
	ListWalletItems(ctx context.Context, userID uuid.UUID) ([]domain.WalletItem, error)

	// CreateWalletItem persists a new active claim. Returns
	// ErrDuplicateActive if the user already holds an active claim on the
	// deal; the uniqueness check and the insert are one atomic operation.
	CreateWalletItem(ctx context.Context, item *domain.WalletItem) error

	// ReleaseWalletItem flips an active claim to removed and reports the
	// number of rows affected. Zero means no active claim existed.
	ReleaseWalletItem(ctx context.Context, userID, dealID uuid.UUID) (int64, error)

	// RedeemWalletItem is the conditional update at the heart of the
	// engine: it flips the user's claim on rec.DealID from active to
	// redeemed and appends rec, both in a single transaction where the
	// backend supports one. The flip only applies if the claim is active
	// at write time; the predicate and the mutation execute as one
	// indivisible unit, so of N concurrent callers exactly one observes
	// rows == 1.
	//
	// Returns the number of wallet rows affected. Zero means no active
	// claim matched and rec was not written.
	RedeemWalletItem(ctx context.Context, rec *domain.RedemptionRecord) (int64, error)

	// InsertRedemption appends a redemption record unconditionally.
	// Records are append-only: never updated, never deleted.
	InsertRedemption(ctx context.Context, rec *domain.RedemptionRecord) error

	// InsertRedemptionCapped appends rec only while the deal's caps
	// hold: totalCap bounds redemptions of rec.DealID across all users,
	// userCap bounds rec.UserID's redemptions of it. A nil cap is
	// unchecked. The cap counts and the insert execute as one serialized
	// operation, so two concurrent callers at a cap boundary cannot both
	// pass. Returns ErrDealCapReached or ErrUserCapReached when the
	// insert would exceed a cap; rec is not written in that case.
	InsertRedemptionCapped(ctx context.Context, rec *domain.RedemptionRecord, totalCap, userCap *int) error

	// CountActiveWalletItems counts the user's currently held claims.
	CountActiveWalletItems(ctx context.Context, userID uuid.UUID) (int64, error)
}
