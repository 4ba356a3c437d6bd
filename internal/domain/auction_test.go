package domain_test

import (
	"testing"
	"time"

	"github.com/drovers/stockyard/internal/domain"
	"github.com/shopspring/decimal"
)

// ── Status lifecycle ──────────────────────────────────────────────────────────

func TestCanTransition_LegalMoves(t *testing.T) {
	legal := []struct {
		from, to domain.AuctionStatus
	}{
		{domain.StatusDraft, domain.StatusPendingReview},
		{domain.StatusPendingReview, domain.StatusActive},
		{domain.StatusPendingReview, domain.StatusRejected},
		{domain.StatusActive, domain.StatusSold},
		{domain.StatusActive, domain.StatusUnsold},
	}
	for _, tc := range legal {
		if !domain.CanTransition(tc.from, tc.to) {
			t.Errorf("CanTransition(%s, %s) = false, want true", tc.from, tc.to)
		}
	}
}

func TestCanTransition_TerminalStatesAreFrozen(t *testing.T) {
	terminals := []domain.AuctionStatus{
		domain.StatusSold, domain.StatusUnsold, domain.StatusRejected,
	}
	all := []domain.AuctionStatus{
		domain.StatusDraft, domain.StatusPendingReview, domain.StatusActive,
		domain.StatusSold, domain.StatusUnsold, domain.StatusRejected,
	}
	for _, from := range terminals {
		if !from.IsTerminal() {
			t.Errorf("%s.IsTerminal() = false, want true", from)
		}
		for _, to := range all {
			if domain.CanTransition(from, to) {
				t.Errorf("CanTransition(%s, %s) = true, terminal states must have no exits", from, to)
			}
		}
	}
}

func TestCanTransition_NoBackwardsOrSkips(t *testing.T) {
	illegal := []struct {
		from, to domain.AuctionStatus
	}{
		{domain.StatusDraft, domain.StatusActive},         // must pass review
		{domain.StatusDraft, domain.StatusSold},           // must pass review + bidding
		{domain.StatusPendingReview, domain.StatusDraft},  // no backwards
		{domain.StatusActive, domain.StatusPendingReview}, // no backwards
		{domain.StatusActive, domain.StatusRejected},      // rejection only from review
		{domain.StatusActive, domain.StatusActive},        // no self-loop
	}
	for _, tc := range illegal {
		if domain.CanTransition(tc.from, tc.to) {
			t.Errorf("CanTransition(%s, %s) = true, want false", tc.from, tc.to)
		}
	}
}

// ── Bidding window ────────────────────────────────────────────────────────────

func TestAuction_HasEnded_BoundaryIsInclusive(t *testing.T) {
	end := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := &domain.Auction{EndsAt: end}

	if a.HasEnded(end.Add(-time.Second)) {
		t.Error("auction should still be open one second before EndsAt")
	}
	if !a.HasEnded(end) {
		t.Error("a bid arriving exactly at EndsAt must be too late")
	}
	if !a.HasEnded(end.Add(time.Second)) {
		t.Error("auction must be ended after EndsAt")
	}
}

func TestAuction_TimeLeft_NeverNegative(t *testing.T) {
	end := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := &domain.Auction{EndsAt: end}
	if got := a.TimeLeft(end.Add(time.Hour)); got != 0 {
		t.Errorf("TimeLeft after close = %s, want 0", got)
	}
	if got := a.TimeLeft(end.Add(-time.Minute)); got != time.Minute {
		t.Errorf("TimeLeft = %s, want 1m", got)
	}
}

// ── Bidding floor ─────────────────────────────────────────────────────────────

func TestAuction_MinAcceptableBid(t *testing.T) {
	a := &domain.Auction{
		StartingPrice: decimal.NewFromInt(1000),
		MinIncrement:  decimal.NewFromInt(100),
		CurrentPrice:  decimal.NewFromInt(1000),
	}

	// First bid only needs to meet the starting price.
	if got := a.MinAcceptableBid(false); !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("floor with no bids = %s, want 1000", got)
	}

	// With a valid bid at 1000, the next must clear 1100; 1050 is too low.
	if got := a.MinAcceptableBid(true); !got.Equal(decimal.NewFromInt(1100)) {
		t.Errorf("floor with bids = %s, want 1100", got)
	}
	if decimal.NewFromInt(1050).GreaterThanOrEqual(a.MinAcceptableBid(true)) {
		t.Error("1050 should be below the 1100 floor")
	}
	if !decimal.NewFromInt(1200).GreaterThanOrEqual(a.MinAcceptableBid(true)) {
		t.Error("1200 should clear the 1100 floor")
	}
}

// ── Settlement outcome ────────────────────────────────────────────────────────

func TestAuction_SettleOutcome(t *testing.T) {
	tests := []struct {
		name    string
		current int64
		reserve int64
		want    domain.AuctionStatus
	}{
		{"below reserve", 1200, 5000, domain.StatusUnsold},
		{"exactly at reserve", 5000, 5000, domain.StatusSold},
		{"above reserve", 6000, 5000, domain.StatusSold},
		{"no bids, starting below reserve", 1000, 5000, domain.StatusUnsold},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := &domain.Auction{
				StartingPrice: decimal.NewFromInt(1000),
				CurrentPrice:  decimal.NewFromInt(tc.current),
				ReservePrice:  decimal.NewFromInt(tc.reserve),
			}
			if got := a.SettleOutcome(); got != tc.want {
				t.Errorf("SettleOutcome(current=%d reserve=%d) = %s, want %s",
					tc.current, tc.reserve, got, tc.want)
			}
		})
	}
}
