package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Types & constants
// ──────────────────────────────────────────────────────────────────────────────

// BidStatus represents the state of a single bid attempt.
type BidStatus string

const (
	BidStatusValid  BidStatus = "valid"  // counted towards the current price
	BidStatusVoided BidStatus = "voided" // administratively invalidated, kept for audit
)

// ──────────────────────────────────────────────────────────────────────────────
// Bid
// ──────────────────────────────────────────────────────────────────────────────

// Bid is one row in the append-only bid ledger. Rows are never deleted; the
// only mutation permitted after creation is valid → voided.
type Bid struct {
	ID         uuid.UUID       `json:"id"          db:"id"`
	AuctionID  uuid.UUID       `json:"auction_id"  db:"auction_id"`
	BidderID   uuid.UUID       `json:"bidder_id"   db:"bidder_id"`
	Amount     decimal.Decimal `json:"amount"      db:"amount"`
	Status     BidStatus       `json:"status"      db:"status"`
	VoidReason *string         `json:"void_reason" db:"void_reason"`
	VoidedBy   *uuid.UUID      `json:"voided_by"   db:"voided_by"`
	VoidedAt   *time.Time      `json:"voided_at"   db:"voided_at"`
	CreatedAt  time.Time       `json:"created_at"  db:"created_at"`
}

// IsValid returns true while the bid still counts towards the price.
func (b *Bid) IsValid() bool {
	return b.Status == BidStatusValid
}

// Outranks reports whether b beats other under the leading-bid ordering:
// greater amount wins, equal amounts are broken by the earlier timestamp.
func (b *Bid) Outranks(other *Bid) bool {
	if !b.Amount.Equal(other.Amount) {
		return b.Amount.GreaterThan(other.Amount)
	}
	return b.CreatedAt.Before(other.CreatedAt)
}

// LeadingBid returns the valid bid with the greatest amount, ties broken by
// earliest timestamp. Returns nil when the slice holds no valid bids.
func LeadingBid(bids []*Bid) *Bid {
	var leading *Bid
	for _, b := range bids {
		if !b.IsValid() {
			continue
		}
		if leading == nil || b.Outranks(leading) {
			leading = b
		}
	}
	return leading
}

// ──────────────────────────────────────────────────────────────────────────────
// PlaceBidRequest — value object used by BidService
// ──────────────────────────────────────────────────────────────────────────────

// PlaceBidRequest carries the validated inputs for placing a bid.
type PlaceBidRequest struct {
	AuctionID uuid.UUID
	BidderID  uuid.UUID
	Amount    decimal.Decimal
}

// BidResponse is the API-safe view of a bid.
type BidResponse struct {
	ID        uuid.UUID       `json:"id"`
	AuctionID uuid.UUID       `json:"auction_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    BidStatus       `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// ToResponse converts a Bid to its API response form.
func (b *Bid) ToResponse() BidResponse {
	return BidResponse{
		ID:        b.ID,
		AuctionID: b.AuctionID,
		Amount:    b.Amount,
		Status:    b.Status,
		CreatedAt: b.CreatedAt,
	}
}
