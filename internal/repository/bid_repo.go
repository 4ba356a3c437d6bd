package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/drovers/stockyard/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// BidRepository handles all database operations for the bid ledger.
// The ledger is append-only: rows are inserted once and the only mutation
// ever applied is valid → voided.
type BidRepository struct {
	db *sqlx.DB
}

// NewBidRepository creates a new BidRepository.
func NewBidRepository(db *sqlx.DB) *BidRepository {
	return &BidRepository{db: db}
}

// Create appends a bid inside an existing transaction. Callers must hold the
// auction row lock so the insert and the current_price update commit together.
func (r *BidRepository) Create(ctx context.Context, tx *sqlx.Tx, b *domain.Bid) error {
	query := `
		INSERT INTO bids (id, auction_id, bidder_id, amount, status, created_at)
		VALUES (:id, :auction_id, :bidder_id, :amount, :status, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, b); err != nil {
		return fmt.Errorf("bid_repo.Create: %w", err)
	}
	return nil
}

// GetByID fetches a bid by its primary key.
func (r *BidRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bid, error) {
	var b domain.Bid
	err := r.db.GetContext(ctx, &b, `SELECT * FROM bids WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBidNotFound
		}
		return nil, fmt.Errorf("bid_repo.GetByID: %w", err)
	}
	return &b, nil
}

// Void marks a valid bid voided inside an existing transaction, recording
// who voided it and why. Guarded on status='valid': a second void attempt
// matches zero rows and surfaces ErrBidAlreadyVoided.
func (r *BidRepository) Void(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, reason string, actorID uuid.UUID) error {
	query := `
		UPDATE bids
		SET status = 'voided', void_reason = $1, voided_by = $2, voided_at = now()
		WHERE id = $3 AND status = 'valid'`
	res, err := tx.ExecContext(ctx, query, reason, actorID, id)
	if err != nil {
		return fmt.Errorf("bid_repo.Void: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := tx.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM bids WHERE id = $1)`, id); err != nil {
			return fmt.Errorf("bid_repo.Void exists: %w", err)
		}
		if !exists {
			return domain.ErrBidNotFound
		}
		return domain.ErrBidAlreadyVoided
	}
	return nil
}

// LeadingBid returns the valid bid with the greatest amount for an auction,
// ties broken by earliest timestamp. Returns (nil, nil) when no valid bids
// exist — absence of bids is a normal state, not an error.
func (r *BidRepository) LeadingBid(ctx context.Context, auctionID uuid.UUID) (*domain.Bid, error) {
	return r.leadingBid(ctx, r.db, auctionID)
}

// LeadingBidTx is LeadingBid executed inside an existing transaction, used
// by the void-recompute path so the surviving-bid scan sees the just-voided
// row.
func (r *BidRepository) LeadingBidTx(ctx context.Context, tx *sqlx.Tx, auctionID uuid.UUID) (*domain.Bid, error) {
	return r.leadingBid(ctx, tx, auctionID)
}

func (r *BidRepository) leadingBid(ctx context.Context, q sqlx.QueryerContext, auctionID uuid.UUID) (*domain.Bid, error) {
	var b domain.Bid
	err := sqlx.GetContext(ctx, q, &b, `
		SELECT * FROM bids
		WHERE auction_id = $1 AND status = 'valid'
		ORDER BY amount DESC, created_at ASC
		LIMIT 1`,
		auctionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("bid_repo.leadingBid: %w", err)
	}
	return &b, nil
}

// HasValidBids reports whether at least one valid bid exists for the auction,
// inside an existing transaction. Decides whether the bidding floor is the
// starting price or current_price + min_increment.
func (r *BidRepository) HasValidBids(ctx context.Context, tx *sqlx.Tx, auctionID uuid.UUID) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM bids WHERE auction_id = $1 AND status = 'valid')`,
		auctionID)
	if err != nil {
		return false, fmt.Errorf("bid_repo.HasValidBids: %w", err)
	}
	return exists, nil
}

// ListByAuction returns the full ledger for an auction in placement order,
// voided rows included (they are retained for audit).
func (r *BidRepository) ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]*domain.Bid, error) {
	var bids []*domain.Bid
	err := r.db.SelectContext(ctx, &bids,
		`SELECT * FROM bids WHERE auction_id = $1 ORDER BY created_at ASC`,
		auctionID)
	if err != nil {
		return nil, fmt.Errorf("bid_repo.ListByAuction: %w", err)
	}
	return bids, nil
}

// ListByBidder returns a bidder's history across auctions, newest first.
func (r *BidRepository) ListByBidder(ctx context.Context, bidderID uuid.UUID, limit, offset int) ([]*domain.Bid, error) {
	var bids []*domain.Bid
	err := r.db.SelectContext(ctx, &bids,
		`SELECT * FROM bids WHERE bidder_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		bidderID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("bid_repo.ListByBidder: %w", err)
	}
	return bids, nil
}
