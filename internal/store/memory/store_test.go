package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dealhive/dealhive/internal/domain"
	"github.com/dealhive/dealhive/internal/store"
)

func TestRedeemWalletItem_ConditionalFlip(t *testing.T) {
	st := New()
	userID, dealID := uuid.New(), uuid.New()

	st.SeedWalletItem(domain.WalletItem{
		ID:     uuid.New(),
		UserID: userID,
		DealID: dealID,
		Status: domain.WalletItemActive,
	})

	rec := &domain.RedemptionRecord{
		ID: uuid.New(), UserID: userID, DealID: dealID, RedeemedAt: time.Now().UTC(),
	}

	rows, err := st.RedeemWalletItem(context.Background(), rec)
	if err != nil {
		t.Fatalf("RedeemWalletItem() error = %v", err)
	}
	if rows != 1 {
		t.Fatalf("rows = %d, want 1", rows)
	}

	// The flip and the record land together.
	if got := len(st.Redemptions()); got != 1 {
		t.Errorf("redemption records = %d, want 1", got)
	}

	// A second flip matches nothing and writes nothing.
	rec2 := &domain.RedemptionRecord{
		ID: uuid.New(), UserID: userID, DealID: dealID, RedeemedAt: time.Now().UTC(),
	}
	rows, err = st.RedeemWalletItem(context.Background(), rec2)
	if err != nil {
		t.Fatalf("second RedeemWalletItem() error = %v", err)
	}
	if rows != 0 {
		t.Errorf("rows = %d, want 0", rows)
	}
	if got := len(st.Redemptions()); got != 1 {
		t.Errorf("redemption records = %d, want still 1", got)
	}
}

func TestCreateWalletItem_DuplicateActive(t *testing.T) {
	st := New()
	userID, dealID := uuid.New(), uuid.New()

	item := func() *domain.WalletItem {
		return &domain.WalletItem{
			ID:        uuid.New(),
			UserID:    userID,
			DealID:    dealID,
			Status:    domain.WalletItemActive,
			ClaimedAt: time.Now().UTC(),
		}
	}

	if err := st.CreateWalletItem(context.Background(), item()); err != nil {
		t.Fatalf("CreateWalletItem() error = %v", err)
	}
	if err := st.CreateWalletItem(context.Background(), item()); !errors.Is(err, store.ErrDuplicateActive) {
		t.Errorf("error = %v, want ErrDuplicateActive", err)
	}

	// Releasing frees the slot for a fresh claim.
	if rows, _ := st.ReleaseWalletItem(context.Background(), userID, dealID); rows != 1 {
		t.Fatalf("release rows = %d, want 1", rows)
	}
	if err := st.CreateWalletItem(context.Background(), item()); err != nil {
		t.Errorf("re-claim after release failed: %v", err)
	}
}

func TestGetWalletItem_ActiveWinsOverHistory(t *testing.T) {
	st := New()
	userID, dealID := uuid.New(), uuid.New()
	redeemedAt := time.Now().UTC().Add(-time.Hour)

	st.SeedWalletItem(domain.WalletItem{
		ID: uuid.New(), UserID: userID, DealID: dealID,
		Status: domain.WalletItemRedeemed, RedeemedAt: &redeemedAt,
	})
	st.SeedWalletItem(domain.WalletItem{
		ID: uuid.New(), UserID: userID, DealID: dealID,
		Status: domain.WalletItemActive,
	})

	lookup, err := st.GetWalletItem(context.Background(), userID, dealID)
	if err != nil {
		t.Fatalf("GetWalletItem() error = %v", err)
	}
	if lookup.State != domain.WalletActive {
		t.Errorf("state = %v, want active", lookup.State)
	}
}

func TestGetWalletItem_RemovedResolvesToNotFound(t *testing.T) {
	st := New()
	userID, dealID := uuid.New(), uuid.New()

	st.SeedWalletItem(domain.WalletItem{
		ID: uuid.New(), UserID: userID, DealID: dealID,
		Status: domain.WalletItemRemoved,
	})

	lookup, err := st.GetWalletItem(context.Background(), userID, dealID)
	if err != nil {
		t.Fatalf("GetWalletItem() error = %v", err)
	}
	if lookup.State != domain.WalletNotFound {
		t.Errorf("state = %v, want not-found", lookup.State)
	}
	if lookup.Item != nil {
		t.Error("Item should be nil for not-found")
	}
}

func TestCountActiveWalletItems(t *testing.T) {
	st := New()
	userID, otherUser := uuid.New(), uuid.New()

	st.SeedWalletItem(domain.WalletItem{ID: uuid.New(), UserID: userID, DealID: uuid.New(), Status: domain.WalletItemActive})
	st.SeedWalletItem(domain.WalletItem{ID: uuid.New(), UserID: userID, DealID: uuid.New(), Status: domain.WalletItemRemoved})
	st.SeedWalletItem(domain.WalletItem{ID: uuid.New(), UserID: otherUser, DealID: uuid.New(), Status: domain.WalletItemActive})

	if n, _ := st.CountActiveWalletItems(context.Background(), userID); n != 1 {
		t.Errorf("active items = %d, want 1", n)
	}
}

func TestInsertRedemptionCapped(t *testing.T) {
	st := New()
	userID, otherUser := uuid.New(), uuid.New()
	dealID := uuid.New()

	rec := func(user uuid.UUID) *domain.RedemptionRecord {
		return &domain.RedemptionRecord{
			ID: uuid.New(), UserID: user, DealID: dealID, RedeemedAt: time.Now().UTC(),
		}
	}
	totalCap, userCap := 2, 1

	if err := st.InsertRedemptionCapped(context.Background(), rec(userID), &totalCap, &userCap); err != nil {
		t.Fatalf("first insert error = %v", err)
	}

	// Second insert for the same user trips the per-user cap.
	if err := st.InsertRedemptionCapped(context.Background(), rec(userID), &totalCap, &userCap); !errors.Is(err, store.ErrUserCapReached) {
		t.Errorf("error = %v, want ErrUserCapReached", err)
	}

	// Another user still fits under the global cap.
	if err := st.InsertRedemptionCapped(context.Background(), rec(otherUser), &totalCap, &userCap); err != nil {
		t.Fatalf("second user insert error = %v", err)
	}

	// The deal is now at its global cap for everyone.
	if err := st.InsertRedemptionCapped(context.Background(), rec(uuid.New()), &totalCap, &userCap); !errors.Is(err, store.ErrDealCapReached) {
		t.Errorf("error = %v, want ErrDealCapReached", err)
	}

	// A rejected insert writes nothing.
	if got := len(st.Redemptions()); got != 2 {
		t.Errorf("redemption records = %d, want 2", got)
	}

	// Nil caps are unchecked.
	if err := st.InsertRedemptionCapped(context.Background(), rec(uuid.New()), nil, nil); err != nil {
		t.Errorf("uncapped insert error = %v", err)
	}
}
