// Package domain defines the core business entities and types for the
// stockyard livestock/equipment auction marketplace.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Types & constants
// ──────────────────────────────────────────────────────────────────────────────

// AuctionStatus represents the lifecycle state of an auction listing.
type AuctionStatus string

const (
	StatusDraft         AuctionStatus = "draft"          // created by seller, not yet submitted
	StatusPendingReview AuctionStatus = "pending_review" // submitted, awaiting admin approval
	StatusActive        AuctionStatus = "active"         // approved, accepting bids
	StatusSold          AuctionStatus = "sold"           // ended with leading bid >= reserve
	StatusUnsold        AuctionStatus = "unsold"         // ended below reserve (or no bids)
	StatusRejected      AuctionStatus = "rejected"       // declined during review
)

// transitions is the closed set of legal status moves. Anything not listed
// here is an invalid transition; terminal states have no outgoing edges.
var transitions = map[AuctionStatus][]AuctionStatus{
	StatusDraft:         {StatusPendingReview},
	StatusPendingReview: {StatusActive, StatusRejected},
	StatusActive:        {StatusSold, StatusUnsold},
	StatusSold:          {},
	StatusUnsold:        {},
	StatusRejected:      {},
}

// CanTransition reports whether moving from → to is a legal lifecycle step.
func CanTransition(from, to AuctionStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s AuctionStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// IsValid reports whether the status is one of the recognised lifecycle states.
func (s AuctionStatus) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// ──────────────────────────────────────────────────────────────────────────────
// Auction
// ──────────────────────────────────────────────────────────────────────────────

// Auction represents a single listing: one lot of livestock or equipment
// offered by a seller for a timed auction.
//
// CurrentPrice always equals the highest valid (non-voided) bid amount, or
// StartingPrice when no valid bids exist. It is monotonically non-decreasing
// while the auction is active, except on the void-recompute path.
type Auction struct {
	ID              uuid.UUID       `json:"id"               db:"id"`
	SellerID        uuid.UUID       `json:"seller_id"        db:"seller_id"`
	Make            string          `json:"make"             db:"make"`
	Model           string          `json:"model"            db:"model"`
	Year            int             `json:"year"             db:"year"`
	Condition       string          `json:"condition"        db:"condition"`
	Description     string          `json:"description"      db:"description"`
	Status          AuctionStatus   `json:"status"           db:"status"`
	StartingPrice   decimal.Decimal `json:"starting_price"   db:"starting_price"`
	ReservePrice    decimal.Decimal `json:"reserve_price"    db:"reserve_price"`
	MinIncrement    decimal.Decimal `json:"min_increment"    db:"min_increment"`
	CurrentPrice    decimal.Decimal `json:"current_price"    db:"current_price"`
	StartsAt        time.Time       `json:"starts_at"        db:"starts_at"`
	EndsAt          time.Time       `json:"ends_at"          db:"ends_at"`
	ApprovedAt      *time.Time      `json:"approved_at"      db:"approved_at"`
	SettledAt       *time.Time      `json:"settled_at"       db:"settled_at"`
	RejectionReason *string         `json:"rejection_reason" db:"rejection_reason"`
	CreatedAt       time.Time       `json:"created_at"       db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"       db:"updated_at"`
}

// IsActive returns true while the auction is accepting bids (status only —
// callers must additionally check HasEnded for the time window).
func (a *Auction) IsActive() bool {
	return a.Status == StatusActive
}

// HasEnded reports whether the bidding window is over at the given instant.
// A bid arriving exactly at EndsAt is too late: acceptance requires
// now < EndsAt.
func (a *Auction) HasEnded(now time.Time) bool {
	return !now.Before(a.EndsAt)
}

// MinAcceptableBid returns the floor a new bid must meet: StartingPrice when
// no valid bids exist, otherwise CurrentPrice + MinIncrement.
func (a *Auction) MinAcceptableBid(hasValidBids bool) decimal.Decimal {
	if !hasValidBids {
		return a.StartingPrice
	}
	return a.CurrentPrice.Add(a.MinIncrement)
}

// ReserveMet reports whether the current price satisfies the seller's
// reserve. Decides sold vs unsold at settlement.
func (a *Auction) ReserveMet() bool {
	return a.CurrentPrice.GreaterThanOrEqual(a.ReservePrice)
}

// SettleOutcome returns the terminal status the sweep applies to an expired
// active auction: sold when the reserve is met, unsold otherwise (including
// the no-bids case where CurrentPrice == StartingPrice < ReservePrice).
func (a *Auction) SettleOutcome() AuctionStatus {
	if a.ReserveMet() {
		return StatusSold
	}
	return StatusUnsold
}

// TimeLeft returns the duration remaining until bidding closes.
// Returns 0 once EndsAt has passed.
func (a *Auction) TimeLeft(now time.Time) time.Duration {
	remaining := a.EndsAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateListingRequest — value object used by ListingService
// ──────────────────────────────────────────────────────────────────────────────

// CreateListingRequest carries the seller-supplied fields for a new draft
// listing. Every field the settlement engine depends on must be populated.
type CreateListingRequest struct {
	SellerID      uuid.UUID
	Make          string
	Model         string
	Year          int
	Condition     string
	Description   string
	StartingPrice decimal.Decimal
	ReservePrice  decimal.Decimal
	MinIncrement  decimal.Decimal
	StartsAt      time.Time
	EndsAt        time.Time
}

// ──────────────────────────────────────────────────────────────────────────────
// AuctionSnapshot — read model returned to the admin console after a void
// ──────────────────────────────────────────────────────────────────────────────

// AuctionSnapshot bundles an auction with its full bid history. Returned by
// the void path so the caller sees the recomputed price and the bid list in
// one consistent view.
type AuctionSnapshot struct {
	Auction *Auction `json:"auction"`
	Bids    []*Bid   `json:"bids"`
}

// LeadingBid returns the leading bid within the snapshot: the valid bid with
// the greatest amount, ties broken by earliest timestamp. Returns nil when no
// valid bids remain.
func (s *AuctionSnapshot) LeadingBid() *Bid {
	return LeadingBid(s.Bids)
}
