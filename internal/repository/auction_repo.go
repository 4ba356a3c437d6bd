// Package repository contains the sqlx/PostgreSQL data access layer.
// All per-auction mutations go through SELECT ... FOR UPDATE row locks so
// concurrent writers against the same auction are serialized; auctions are
// independent rows, so there is no cross-auction locking.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/drovers/stockyard/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// AuctionRepository handles all database operations for Auctions.
type AuctionRepository struct {
	db *sqlx.DB
}

// NewAuctionRepository creates a new AuctionRepository.
func NewAuctionRepository(db *sqlx.DB) *AuctionRepository {
	return &AuctionRepository{db: db}
}

// Create inserts a new auction row.
func (r *AuctionRepository) Create(ctx context.Context, a *domain.Auction) error {
	query := `
		INSERT INTO auctions
			(id, seller_id, make, model, year, condition, description, status,
			 starting_price, reserve_price, min_increment, current_price,
			 starts_at, ends_at, created_at, updated_at)
		VALUES
			(:id, :seller_id, :make, :model, :year, :condition, :description, :status,
			 :starting_price, :reserve_price, :min_increment, :current_price,
			 :starts_at, :ends_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("auction_repo.Create: %w", err)
	}
	return nil
}

// GetByID fetches an auction by its primary key.
func (r *AuctionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	var a domain.Auction
	err := r.db.GetContext(ctx, &a, `SELECT * FROM auctions WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, fmt.Errorf("auction_repo.GetByID: %w", err)
	}
	return &a, nil
}

// GetByIDForUpdate fetches and row-locks an auction inside an existing
// transaction. This is the per-auction serialization point for every price
// or status mutation: two concurrent writers on the same auction id queue
// behind the lock, so neither can act on a stale current_price.
func (r *AuctionRepository) GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*domain.Auction, error) {
	var a domain.Auction
	err := tx.GetContext(ctx, &a, `SELECT * FROM auctions WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, fmt.Errorf("auction_repo.GetByIDForUpdate: %w", err)
	}
	return &a, nil
}

// GetExpiredActive returns every auction that is still active but whose
// bidding window has closed (i.e. due for settlement). Served by the
// (status, ends_at) index so the sweep stays cheap at scale.
func (r *AuctionRepository) GetExpiredActive(ctx context.Context, now time.Time) ([]*domain.Auction, error) {
	var auctions []*domain.Auction
	err := r.db.SelectContext(ctx, &auctions,
		`SELECT * FROM auctions WHERE status = 'active' AND ends_at <= $1 ORDER BY ends_at ASC`,
		now)
	if err != nil {
		return nil, fmt.Errorf("auction_repo.GetExpiredActive: %w", err)
	}
	return auctions, nil
}

// UpdateCurrentPrice writes a new current price inside an existing
// transaction. Callers must already hold the row lock via GetByIDForUpdate.
func (r *AuctionRepository) UpdateCurrentPrice(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, price decimal.Decimal) error {
	query := `UPDATE auctions SET current_price = $1, updated_at = now() WHERE id = $2`
	if _, err := tx.ExecContext(ctx, query, price, id); err != nil {
		return fmt.Errorf("auction_repo.UpdateCurrentPrice: %w", err)
	}
	return nil
}

// Transition moves an auction from one status to another with a guarded
// UPDATE. The WHERE status clause makes the operation idempotent and safe
// under races: when zero rows match, either the auction is missing or it is
// no longer in the expected state, and the caller is told which.
func (r *AuctionRepository) Transition(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, from, to domain.AuctionStatus) error {
	if !domain.CanTransition(from, to) {
		return domain.ErrInvalidTransition
	}

	var (
		res sql.Result
		err error
	)
	query := `UPDATE auctions SET status = $1, updated_at = now() WHERE id = $2 AND status = $3`
	if tx != nil {
		res, err = tx.ExecContext(ctx, query, string(to), id, string(from))
	} else {
		res, err = r.db.ExecContext(ctx, query, string(to), id, string(from))
	}
	if err != nil {
		return fmt.Errorf("auction_repo.Transition: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.transitionFailure(ctx, id)
	}
	return nil
}

// Approve marks a pending_review auction active and stamps approved_at.
func (r *AuctionRepository) Approve(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE auctions
		SET status = 'active', approved_at = now(), updated_at = now()
		WHERE id = $1 AND status = 'pending_review'`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("auction_repo.Approve: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.transitionFailure(ctx, id)
	}
	return nil
}

// Reject marks a pending_review auction rejected with the reviewer's reason.
func (r *AuctionRepository) Reject(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE auctions
		SET status = 'rejected', rejection_reason = $1, updated_at = now()
		WHERE id = $2 AND status = 'pending_review'`
	res, err := r.db.ExecContext(ctx, query, reason, id)
	if err != nil {
		return fmt.Errorf("auction_repo.Reject: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.transitionFailure(ctx, id)
	}
	return nil
}

// Settle moves an active auction to its terminal state inside an existing
// transaction, stamping settled_at. Guarded on status='active' so a second
// sweep pass over an already-settled auction affects zero rows.
func (r *AuctionRepository) Settle(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, outcome domain.AuctionStatus) error {
	if outcome != domain.StatusSold && outcome != domain.StatusUnsold {
		return domain.ErrInvalidTransition
	}
	query := `
		UPDATE auctions
		SET status = $1, settled_at = now(), updated_at = now()
		WHERE id = $2 AND status = 'active'`
	res, err := tx.ExecContext(ctx, query, string(outcome), id)
	if err != nil {
		return fmt.Errorf("auction_repo.Settle: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

// transitionFailure distinguishes "row missing" from "row in wrong status"
// after a guarded UPDATE matched nothing.
func (r *AuctionRepository) transitionFailure(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM auctions WHERE id = $1)`, id); err != nil {
		return fmt.Errorf("auction_repo.transitionFailure: %w", err)
	}
	if !exists {
		return domain.ErrAuctionNotFound
	}
	return domain.ErrInvalidTransition
}

// List returns a paginated slice of auctions filtered by optional status.
// status="" returns all statuses. Returns (auctions, totalCount, error).
func (r *AuctionRepository) List(ctx context.Context, limit, offset int, status string) ([]*domain.Auction, int, error) {
	var auctions []*domain.Auction
	var total int

	if status != "" {
		if err := r.db.GetContext(ctx, &total,
			`SELECT COUNT(*) FROM auctions WHERE status = $1`, status); err != nil {
			return nil, 0, fmt.Errorf("auction_repo.List count: %w", err)
		}
		if err := r.db.SelectContext(ctx, &auctions,
			`SELECT * FROM auctions WHERE status = $1 ORDER BY ends_at ASC LIMIT $2 OFFSET $3`,
			status, limit, offset); err != nil {
			return nil, 0, fmt.Errorf("auction_repo.List select: %w", err)
		}
	} else {
		if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM auctions`); err != nil {
			return nil, 0, fmt.Errorf("auction_repo.List count: %w", err)
		}
		if err := r.db.SelectContext(ctx, &auctions,
			`SELECT * FROM auctions ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
			limit, offset); err != nil {
			return nil, 0, fmt.Errorf("auction_repo.List select: %w", err)
		}
	}
	return auctions, total, nil
}

// ListBySeller returns a seller's auctions, newest first.
func (r *AuctionRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]*domain.Auction, error) {
	var auctions []*domain.Auction
	err := r.db.SelectContext(ctx, &auctions,
		`SELECT * FROM auctions WHERE seller_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		sellerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("auction_repo.ListBySeller: %w", err)
	}
	return auctions, nil
}

// CountByStatus returns the number of auctions per status for the admin
// dashboard.
func (r *AuctionRepository) CountByStatus(ctx context.Context) (map[domain.AuctionStatus]int, error) {
	type row struct {
		Status domain.AuctionStatus `db:"status"`
		Count  int                  `db:"count"`
	}
	var rows []row
	err := r.db.SelectContext(ctx, &rows,
		`SELECT status, COUNT(*) AS count FROM auctions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("auction_repo.CountByStatus: %w", err)
	}
	counts := make(map[domain.AuctionStatus]int, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
