// Package memory provides an in-memory Store implementation.
//
// It backs local development without a database and is the shared fake
// for engine and service tests. All operations that the Postgres store
// performs atomically (the conditional redeem, the duplicate-active
// check) run under one mutex here, so the concurrency guarantees match.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dealhive/dealhive/internal/domain"
	"github.com/dealhive/dealhive/internal/store"
)

// Store is a mutex-guarded in-memory implementation of store.Store.
type Store struct {
	mu          sync.Mutex
	users       map[uuid.UUID]domain.User
	plans       map[domain.Tier]domain.SubscriptionPlan
	deals       map[uuid.UUID]domain.Deal
	wallet      []domain.WalletItem
	redemptions []domain.RedemptionRecord
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users: make(map[uuid.UUID]domain.User),
		plans: make(map[domain.Tier]domain.SubscriptionPlan),
		deals: make(map[uuid.UUID]domain.Deal),
	}
}

// =============================================================================
// Seeding helpers (not part of store.Store)
// =============================================================================

// PutUser inserts or replaces a user row.
func (s *Store) PutUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// PutPlan inserts or replaces the active plan for a tier.
func (s *Store) PutPlan(p domain.SubscriptionPlan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[p.Tier] = p
}

// PutDeal inserts or replaces a deal row.
func (s *Store) PutDeal(d domain.Deal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deals[d.ID] = d
}

// Redemptions returns a snapshot of all redemption records.
func (s *Store) Redemptions() []domain.RedemptionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.RedemptionRecord, len(s.redemptions))
	copy(out, s.redemptions)
	return out
}

// =============================================================================
// store.Store implementation
// =============================================================================

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetPlanByTier(ctx context.Context, tier domain.Tier) (*domain.SubscriptionPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[tier]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *Store) GetDeal(ctx context.Context, id uuid.UUID) (*domain.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deals[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &d, nil
}

func (s *Store) MarkDealSoldOut(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deals[id]
	if !ok {
		return store.ErrNotFound
	}
	d.IsSoldOut = true
	s.deals[id] = d
	return nil
}

func (s *Store) GetWalletItem(ctx context.Context, userID, dealID uuid.UUID) (domain.WalletLookup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Active claims win over historical redeemed ones.
	var redeemed *domain.WalletItem
	for i := range s.wallet {
		item := s.wallet[i]
		if item.UserID != userID || item.DealID != dealID {
			continue
		}
		switch item.Status {
		case domain.WalletItemActive:
			return domain.WalletLookup{State: domain.WalletActive, Item: &item}, nil
		case domain.WalletItemRedeemed:
			redeemed = &item
		}
	}
	if redeemed != nil {
		return domain.WalletLookup{State: domain.WalletRedeemed, Item: redeemed}, nil
	}
	return domain.WalletLookup{State: domain.WalletNotFound}, nil
}

func (s *Store) ListWalletItems(ctx context.Context, userID uuid.UUID) ([]domain.WalletItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.WalletItem
	for _, item := range s.wallet {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ClaimedAt.After(out[j].ClaimedAt)
	})
	return out, nil
}

func (s *Store) CreateWalletItem(ctx context.Context, item *domain.WalletItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.wallet {
		if existing.UserID == item.UserID && existing.DealID == item.DealID &&
			existing.Status == domain.WalletItemActive {
			return store.ErrDuplicateActive
		}
	}
	s.wallet = append(s.wallet, *item)
	return nil
}

func (s *Store) ReleaseWalletItem(ctx context.Context, userID, dealID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.wallet {
		item := &s.wallet[i]
		if item.UserID == userID && item.DealID == dealID && item.Status == domain.WalletItemActive {
			item.Status = domain.WalletItemRemoved
			return 1, nil
		}
	}
	return 0, nil
}

func (s *Store) RedeemWalletItem(ctx context.Context, rec *domain.RedemptionRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.wallet {
		item := &s.wallet[i]
		if item.UserID == rec.UserID && item.DealID == rec.DealID &&
			item.Status == domain.WalletItemActive {
			at := rec.RedeemedAt
			item.Status = domain.WalletItemRedeemed
			item.RedeemedAt = &at
			s.redemptions = append(s.redemptions, *rec)
			return 1, nil
		}
	}
	return 0, nil
}

func (s *Store) InsertRedemption(ctx context.Context, rec *domain.RedemptionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redemptions = append(s.redemptions, *rec)
	return nil
}

func (s *Store) InsertRedemptionCapped(ctx context.Context, rec *domain.RedemptionRecord, totalCap, userCap *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The counts and the append share one mutex hold, so concurrent
	// callers at a cap boundary serialize here.
	var total, mine int64
	for _, r := range s.redemptions {
		if r.DealID != rec.DealID {
			continue
		}
		total++
		if r.UserID == rec.UserID {
			mine++
		}
	}

	if totalCap != nil && total >= int64(*totalCap) {
		return store.ErrDealCapReached
	}
	if userCap != nil && mine >= int64(*userCap) {
		return store.ErrUserCapReached
	}

	s.redemptions = append(s.redemptions, *rec)
	return nil
}

func (s *Store) CountActiveWalletItems(ctx context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, item := range s.wallet {
		if item.UserID == userID && item.Status == domain.WalletItemActive {
			n++
		}
	}
	return n, nil
}

// SeedWalletItem inserts a wallet item bypassing the duplicate-active
// check. Test helper for shaping edge-case states (e.g. usage above a
// reduced limit).
func (s *Store) SeedWalletItem(item domain.WalletItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ClaimedAt.IsZero() {
		item.ClaimedAt = time.Now().UTC()
	}
	s.wallet = append(s.wallet, item)
}
