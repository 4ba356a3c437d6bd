package domain_test

import (
	"testing"
	"time"

	"github.com/drovers/stockyard/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func mkBid(amount int64, placedAt time.Time, status domain.BidStatus) *domain.Bid {
	return &domain.Bid{
		ID:        uuid.New(),
		AuctionID: uuid.New(),
		BidderID:  uuid.New(),
		Amount:    decimal.NewFromInt(amount),
		Status:    status,
		CreatedAt: placedAt,
	}
}

// ── Leading-bid selection ─────────────────────────────────────────────────────

func TestLeadingBid_HighestAmountWins(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	low := mkBid(1000, base, domain.BidStatusValid)
	mid := mkBid(1200, base.Add(time.Minute), domain.BidStatusValid)
	high := mkBid(5000, base.Add(2*time.Minute), domain.BidStatusValid)

	got := domain.LeadingBid([]*domain.Bid{low, high, mid})
	if got == nil || got.ID != high.ID {
		t.Fatalf("LeadingBid should pick the 5000 bid, got %+v", got)
	}
}

func TestLeadingBid_TieBrokenByEarliestTimestamp(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	first := mkBid(2000, base, domain.BidStatusValid)
	second := mkBid(2000, base.Add(time.Second), domain.BidStatusValid)

	got := domain.LeadingBid([]*domain.Bid{second, first})
	if got == nil || got.ID != first.ID {
		t.Fatalf("equal amounts must be won by the earlier bid, got %+v", got)
	}
}

func TestLeadingBid_SkipsVoidedBids(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	voided := mkBid(5000, base, domain.BidStatusVoided)
	next := mkBid(1200, base.Add(time.Minute), domain.BidStatusValid)

	got := domain.LeadingBid([]*domain.Bid{voided, next})
	if got == nil || got.ID != next.ID {
		t.Fatalf("voided bids must not lead; want the 1200 bid, got %+v", got)
	}
}

func TestLeadingBid_NoValidBids(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	voided := mkBid(5000, base, domain.BidStatusVoided)

	if got := domain.LeadingBid([]*domain.Bid{voided}); got != nil {
		t.Errorf("LeadingBid over only voided bids = %+v, want nil", got)
	}
	if got := domain.LeadingBid(nil); got != nil {
		t.Errorf("LeadingBid(nil) = %+v, want nil", got)
	}
}

// ── Snapshot recompute scenario ───────────────────────────────────────────────

// Voiding the leading 5000 bid must surface the next-highest valid bid (1200),
// mirroring the price recompute the void path performs.
func TestSnapshot_LeadingBidAfterVoid(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	c := mkBid(1200, base, domain.BidStatusValid)
	d := mkBid(5000, base.Add(time.Minute), domain.BidStatusValid)

	snap := &domain.AuctionSnapshot{Bids: []*domain.Bid{c, d}}
	if got := snap.LeadingBid(); got == nil || got.ID != d.ID {
		t.Fatalf("leading before void should be the 5000 bid, got %+v", got)
	}

	d.Status = domain.BidStatusVoided
	if got := snap.LeadingBid(); got == nil || got.ID != c.ID {
		t.Fatalf("leading after void should fall back to 1200, got %+v", got)
	}

	c.Status = domain.BidStatusVoided
	if got := snap.LeadingBid(); got != nil {
		t.Fatalf("leading with all bids voided = %+v, want nil", got)
	}
}
