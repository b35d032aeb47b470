// Package postgres provides the PostgreSQL Store implementation.
//
// The conditional redeem relies on a single UPDATE ... WHERE status =
// 'active' statement for its compare-and-swap semantics, paired with the
// record insert inside one transaction. Duplicate active claims are
// rejected by a partial unique index on (user_id, deal_id) WHERE status
// = 'active' (see internal/migrations).
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dealhive/dealhive/internal/domain"
	"github.com/dealhive/dealhive/internal/store"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// Store is the PostgreSQL implementation of store.Store.
type Store struct {
	db *sql.DB
}

// New creates a Store on top of an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const q = `
		SELECT id, tier, extra_redemptions, created_at
		FROM users
		WHERE id = $1`

	var u domain.User
	err := s.db.QueryRowContext(ctx, q, id).Scan(&u.ID, &u.Tier, &u.ExtraRedemptions, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *Store) GetPlanByTier(ctx context.Context, tier domain.Tier) (*domain.SubscriptionPlan, error) {
	const q = `
		SELECT tier, redemptions_per_period, billing_period
		FROM subscription_plans
		WHERE tier = $1 AND active`

	var p domain.SubscriptionPlan
	err := s.db.QueryRowContext(ctx, q, tier).Scan(&p.Tier, &p.RedemptionsPerPeriod, &p.BillingPeriod)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return &p, nil
}

func (s *Store) GetDeal(ctx context.Context, id uuid.UUID) (*domain.Deal, error) {
	const q = `
		SELECT id, title, original_price, deal_price,
		       max_redemptions_total, max_user_redemptions,
		       is_sold_out, expires_at, created_at
		FROM deals
		WHERE id = $1`

	var (
		d         domain.Deal
		totalCap  sql.NullInt32
		userCap   sql.NullInt32
		expiresAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.Title, &d.OriginalPrice, &d.DealPrice,
		&totalCap, &userCap, &d.IsSoldOut, &expiresAt, &d.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get deal: %w", err)
	}

	if totalCap.Valid {
		v := int(totalCap.Int32)
		d.MaxRedemptionsTotal = &v
	}
	if userCap.Valid {
		v := int(userCap.Int32)
		d.MaxUserRedemptions = &v
	}
	if expiresAt.Valid {
		d.ExpiresAt = &expiresAt.Time
	}
	return &d, nil
}

func (s *Store) MarkDealSoldOut(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE deals SET is_sold_out = TRUE WHERE id = $1`

	if _, err := s.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("mark deal sold out: %w", err)
	}
	return nil
}

func (s *Store) GetWalletItem(ctx context.Context, userID, dealID uuid.UUID) (domain.WalletLookup, error) {
	// Active claims win over historical redeemed ones; removed items
	// never surface.
	const q = `
		SELECT id, user_id, deal_id, status, claimed_at, redeemed_at
		FROM wallet_items
		WHERE user_id = $1 AND deal_id = $2 AND status IN ('active', 'redeemed')
		ORDER BY status = 'active' DESC, claimed_at DESC
		LIMIT 1`

	var (
		item       domain.WalletItem
		redeemedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, q, userID, dealID).Scan(
		&item.ID, &item.UserID, &item.DealID, &item.Status, &item.ClaimedAt, &redeemedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.WalletLookup{State: domain.WalletNotFound}, nil
	}
	if err != nil {
		return domain.WalletLookup{}, fmt.Errorf("get wallet item: %w", err)
	}
	if redeemedAt.Valid {
		item.RedeemedAt = &redeemedAt.Time
	}

	state := domain.WalletActive
	if item.Status == domain.WalletItemRedeemed {
		state = domain.WalletRedeemed
	}
	return domain.WalletLookup{State: state, Item: &item}, nil
}

func (s *Store) ListWalletItems(ctx context.Context, userID uuid.UUID) ([]domain.WalletItem, error) {
	const q = `
		SELECT id, user_id, deal_id, status, claimed_at, redeemed_at
		FROM wallet_items
		WHERE user_id = $1
		ORDER BY claimed_at DESC`

	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list wallet items: %w", err)
	}
	defer rows.Close()

	var items []domain.WalletItem
	for rows.Next() {
		var (
			item       domain.WalletItem
			redeemedAt sql.NullTime
		)
		if err := rows.Scan(&item.ID, &item.UserID, &item.DealID, &item.Status, &item.ClaimedAt, &redeemedAt); err != nil {
			return nil, fmt.Errorf("scan wallet item: %w", err)
		}
		if redeemedAt.Valid {
			item.RedeemedAt = &redeemedAt.Time
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) CreateWalletItem(ctx context.Context, item *domain.WalletItem) error {
	const q = `
		INSERT INTO wallet_items (id, user_id, deal_id, status, claimed_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.db.ExecContext(ctx, q, item.ID, item.UserID, item.DealID, item.Status, item.ClaimedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return store.ErrDuplicateActive
		}
		return fmt.Errorf("create wallet item: %w", err)
	}
	return nil
}

func (s *Store) ReleaseWalletItem(ctx context.Context, userID, dealID uuid.UUID) (int64, error) {
	const q = `
		UPDATE wallet_items
		SET status = 'removed'
		WHERE user_id = $1 AND deal_id = $2 AND status = 'active'`

	res, err := s.db.ExecContext(ctx, q, userID, dealID)
	if err != nil {
		return 0, fmt.Errorf("release wallet item: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) RedeemWalletItem(ctx context.Context, rec *domain.RedemptionRecord) (int64, error) {
	// The WHERE status = 'active' predicate and the mutation execute as
	// one statement, so concurrent redeemers of the same claim race on
	// rows-affected, not on a read-then-write gap. The record insert
	// shares the transaction: either the flip and the record both land
	// or neither does.
	const flip = `
		UPDATE wallet_items
		SET status = 'redeemed', redeemed_at = $3
		WHERE user_id = $1 AND deal_id = $2 AND status = 'active'`

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin redeem tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, flip, rec.UserID, rec.DealID, rec.RedeemedAt)
	if err != nil {
		return 0, fmt.Errorf("redeem wallet item: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("redeem wallet item: %w", err)
	}
	if rows == 0 {
		return 0, nil
	}

	if err := insertRedemption(ctx, tx, rec); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit redeem tx: %w", err)
	}
	return rows, nil
}

func (s *Store) InsertRedemption(ctx context.Context, rec *domain.RedemptionRecord) error {
	return insertRedemption(ctx, s.db, rec)
}

func (s *Store) InsertRedemptionCapped(ctx context.Context, rec *domain.RedemptionRecord, totalCap, userCap *int) error {
	// Locking the deal row serializes concurrent capped inserts for the
	// same deal, so the count reads below cannot both pass at a cap
	// boundary. Uncapped inserts (RedeemWalletItem, InsertRedemption)
	// never take this lock.
	const lockDeal = `SELECT id FROM deals WHERE id = $1 FOR UPDATE`

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin capped insert tx: %w", err)
	}
	defer tx.Rollback()

	var dealID uuid.UUID
	if err := tx.QueryRowContext(ctx, lockDeal, rec.DealID).Scan(&dealID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return fmt.Errorf("lock deal: %w", err)
	}

	if totalCap != nil {
		const q = `SELECT COUNT(*) FROM redemption_records WHERE deal_id = $1`
		var total int64
		if err := tx.QueryRowContext(ctx, q, rec.DealID).Scan(&total); err != nil {
			return fmt.Errorf("count deal redemptions: %w", err)
		}
		if total >= int64(*totalCap) {
			return store.ErrDealCapReached
		}
	}

	if userCap != nil {
		const q = `
			SELECT COUNT(*) FROM redemption_records
			WHERE user_id = $1 AND deal_id = $2`
		var mine int64
		if err := tx.QueryRowContext(ctx, q, rec.UserID, rec.DealID).Scan(&mine); err != nil {
			return fmt.Errorf("count user redemptions: %w", err)
		}
		if mine >= int64(*userCap) {
			return store.ErrUserCapReached
		}
	}

	if err := insertRedemption(ctx, tx, rec); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit capped insert tx: %w", err)
	}
	return nil
}

// execer covers *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertRedemption(ctx context.Context, db execer, rec *domain.RedemptionRecord) error {
	const q = `
		INSERT INTO redemption_records (id, user_id, deal_id, redeemed_at, style)
		VALUES ($1, $2, $3, $4, $5)`

	style := sql.NullString{String: string(rec.Style), Valid: rec.Style != ""}
	if _, err := db.ExecContext(ctx, q, rec.ID, rec.UserID, rec.DealID, rec.RedeemedAt, style); err != nil {
		return fmt.Errorf("insert redemption: %w", err)
	}
	return nil
}

func (s *Store) CountActiveWalletItems(ctx context.Context, userID uuid.UUID) (int64, error) {
	const q = `
		SELECT COUNT(*) FROM wallet_items
		WHERE user_id = $1 AND status = 'active'`

	var n int64
	if err := s.db.QueryRowContext(ctx, q, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count active wallet items: %w", err)
	}
	return n, nil
}
