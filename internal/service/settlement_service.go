package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/drovers/stockyard/internal/config"
	"github.com/drovers/stockyard/internal/domain"
	"github.com/drovers/stockyard/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SettlementService owns the auction lifecycle: it sweeps expired active
// auctions into their terminal state and re-derives current_price from the
// bid ledger after a void.
//
// It implements the PriceRecomputer interface declared in bid_service.go.
type SettlementService struct {
	db          *sqlx.DB
	auctionRepo *repository.AuctionRepository
	bidRepo     *repository.BidRepository
	notifRepo   *repository.NotificationRepository
	cfg         *config.Config
	broadcaster Broadcaster // injected after WS Hub is built
}

// NewSettlementService builds a SettlementService.
func NewSettlementService(
	db *sqlx.DB,
	auctionRepo *repository.AuctionRepository,
	bidRepo *repository.BidRepository,
	notifRepo *repository.NotificationRepository,
	cfg *config.Config,
) *SettlementService {
	return &SettlementService{
		db:          db,
		auctionRepo: auctionRepo,
		bidRepo:     bidRepo,
		notifRepo:   notifRepo,
		cfg:         cfg,
	}
}

// SetBroadcaster injects the WS Hub dependency post-construction.
func (s *SettlementService) SetBroadcaster(b Broadcaster) { s.broadcaster = b }

// ──────────────────────────────────────────────────────────────────────────────
// SettleExpiredAuctions — called by the Scheduler every sweep tick
// ──────────────────────────────────────────────────────────────────────────────

// SettleExpiredAuctions fetches every auction that is still active but whose
// bidding window closed at or before now, and settles each one independently:
// sold when current_price meets the reserve, unsold otherwise. A single
// failing auction does NOT abort the others. Re-running the sweep is a no-op
// for already-settled rows — they no longer match status='active'.
//
// Returns the number of auctions settled in this pass.
func (s *SettlementService) SettleExpiredAuctions(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.auctionRepo.GetExpiredActive(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("settlement_service.SettleExpiredAuctions: fetch: %w", err)
	}

	settled := 0
	for _, a := range expired {
		if err := s.settleOne(ctx, a.ID, now); err != nil {
			slog.Error("auction settlement failed",
				"auction_id", a.ID, "err", err)
			continue // isolate per-auction failures
		}
		settled++
	}
	return settled, nil
}

// settleOne applies the active → sold|unsold transition to a single auction.
// The row is re-read under FOR UPDATE so the decision uses the price as of
// settlement, not the sweep's earlier scan, and a concurrent sweep that got
// there first leaves nothing for this one to do.
func (s *SettlementService) settleOne(ctx context.Context, auctionID uuid.UUID, now time.Time) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("settlement_service.settleOne: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	auction, err := s.auctionRepo.GetByIDForUpdate(ctx, tx, auctionID)
	if err != nil {
		return err
	}
	if !auction.IsActive() {
		// Another sweep pass settled it between scan and lock.
		_ = tx.Rollback()
		return nil
	}
	if !auction.HasEnded(now) {
		_ = tx.Rollback()
		return nil
	}

	outcome := auction.SettleOutcome()
	if err = s.auctionRepo.Settle(ctx, tx, auction.ID, outcome); err != nil {
		return err
	}

	// Winner lookup happens inside the same tx so a concurrent void cannot
	// slip between the price decision and the notification.
	var winner *domain.Bid
	if outcome == domain.StatusSold {
		winner, err = s.bidRepo.LeadingBidTx(ctx, tx, auction.ID)
		if err != nil {
			return err
		}
	}

	if err = s.writeSettlementNotices(ctx, tx, auction, outcome, winner); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("settlement_service.settleOne: commit: %w", err)
	}

	slog.Info("auction settled",
		"auction_id", auction.ID,
		"outcome", string(outcome),
		"final_price", auction.CurrentPrice.StringFixed(0),
		"reserve", auction.ReservePrice.StringFixed(0))

	if s.broadcaster != nil {
		s.broadcaster.BroadcastAuctionSettled(auction.ID, string(outcome), auction.CurrentPrice.StringFixed(0))
	}
	return nil
}

// writeSettlementNotices queues the seller (and, for sold lots, the winning
// bidder) notifications inside the settlement transaction.
func (s *SettlementService) writeSettlementNotices(
	ctx context.Context,
	tx *sqlx.Tx,
	auction *domain.Auction,
	outcome domain.AuctionStatus,
	winner *domain.Bid,
) error {
	now := time.Now().UTC()
	auctionID := auction.ID
	lot := fmt.Sprintf("%d %s %s", auction.Year, auction.Make, auction.Model)

	sellerKind := domain.NotifyAuctionUnsold
	sellerBody := fmt.Sprintf("Your auction for %s closed below the reserve and is unsold", lot)
	if outcome == domain.StatusSold {
		sellerKind = domain.NotifyAuctionSold
		sellerBody = fmt.Sprintf("Your auction for %s sold at %s", lot, auction.CurrentPrice.StringFixed(0))
	}
	sellerNotice := &domain.Notification{
		ID:        uuid.New(),
		UserID:    auction.SellerID,
		Kind:      sellerKind,
		AuctionID: &auctionID,
		Body:      sellerBody,
		Status:    domain.NotificationPending,
		CreatedAt: now,
	}
	if err := s.notifRepo.Create(ctx, tx, sellerNotice); err != nil {
		return err
	}

	if winner != nil {
		winnerNotice := &domain.Notification{
			ID:        uuid.New(),
			UserID:    winner.BidderID,
			Kind:      domain.NotifyAuctionWon,
			AuctionID: &auctionID,
			Body:      fmt.Sprintf("You won the auction for %s at %s", lot, winner.Amount.StringFixed(0)),
			Status:    domain.NotificationPending,
			CreatedAt: now,
		}
		if err := s.notifRepo.Create(ctx, tx, winnerNotice); err != nil {
			return err
		}
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// RecomputePriceTx — called by BidService after a void
// ──────────────────────────────────────────────────────────────────────────────

// RecomputePriceTx re-derives current_price from the surviving valid bids:
// the leading bid's amount, or the starting price when none remain. This is
// the only path on which an active auction's price may decrease. A terminal
// auction still gets its price corrected for historical accuracy, but its
// sold/unsold status is frozen — settlement is never reversed here even if
// the new price crosses the reserve threshold differently.
//
// Runs inside the caller's transaction; the caller must already hold the
// auction row lock.
func (s *SettlementService) RecomputePriceTx(ctx context.Context, tx *sqlx.Tx, auction *domain.Auction) error {
	leading, err := s.bidRepo.LeadingBidTx(ctx, tx, auction.ID)
	if err != nil {
		return err
	}

	price := auction.StartingPrice
	if leading != nil {
		price = leading.Amount
	}

	if err := s.auctionRepo.UpdateCurrentPrice(ctx, tx, auction.ID, price); err != nil {
		return err
	}
	auction.CurrentPrice = price
	return nil
}
