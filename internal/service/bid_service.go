package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/drovers/stockyard/internal/config"
	"github.com/drovers/stockyard/internal/domain"
	"github.com/drovers/stockyard/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ──────────────────────────────────────────────────────────────────────────────
// Interfaces injected into BidService to avoid import cycles
// ──────────────────────────────────────────────────────────────────────────────

// PriceRecomputer is the minimal interface BidService needs from
// SettlementService: re-derive current_price from the surviving valid bids
// after a void, inside the caller's transaction.
type PriceRecomputer interface {
	RecomputePriceTx(ctx context.Context, tx *sqlx.Tx, auction *domain.Auction) error
}

// Broadcaster is the minimal interface services need from the WS hub.
// Implemented by ws.Hub.
type Broadcaster interface {
	BroadcastBidPlaced(auctionID uuid.UUID, amount string, endsAt time.Time)
	BroadcastPriceRecomputed(auctionID uuid.UUID, amount string)
	BroadcastAuctionSettled(auctionID uuid.UUID, outcome string, finalPrice string)
}

// ──────────────────────────────────────────────────────────────────────────────
// BidService
// ──────────────────────────────────────────────────────────────────────────────

// BidService owns the bid ledger: it accepts bid attempts, enforces the
// price/increment invariants at write time, and handles administrative
// voiding. Every mutation runs inside a single PostgreSQL transaction whose
// first statement row-locks the auction, so concurrent bidders racing for
// the same auction are serialized and no two bids can be accepted against
// the same stale current_price.
type BidService struct {
	db          *sqlx.DB
	bidRepo     *repository.BidRepository
	auctionRepo *repository.AuctionRepository
	notifRepo   *repository.NotificationRepository
	auditRepo   *repository.AuditRepository
	cfg         *config.Config
	recomputer  PriceRecomputer // injected after SettlementService is built
	broadcaster Broadcaster     // injected after WS Hub is built
}

// NewBidService creates a BidService. Call SetRecomputer and SetBroadcaster
// after the collaborating components are constructed.
func NewBidService(
	db *sqlx.DB,
	bidRepo *repository.BidRepository,
	auctionRepo *repository.AuctionRepository,
	notifRepo *repository.NotificationRepository,
	auditRepo *repository.AuditRepository,
	cfg *config.Config,
) *BidService {
	return &BidService{
		db:          db,
		bidRepo:     bidRepo,
		auctionRepo: auctionRepo,
		notifRepo:   notifRepo,
		auditRepo:   auditRepo,
		cfg:         cfg,
	}
}

// SetRecomputer injects the SettlementService dependency post-construction.
func (s *BidService) SetRecomputer(r PriceRecomputer) { s.recomputer = r }

// SetBroadcaster injects the WS Hub dependency post-construction.
func (s *BidService) SetBroadcaster(b Broadcaster) { s.broadcaster = b }

// ──────────────────────────────────────────────────────────────────────────────
// PlaceBid
// ──────────────────────────────────────────────────────────────────────────────

// PlaceBid validates and records a bid attempt. Preconditions are checked in
// a fixed order, first failure wins: auction exists; auction is active; the
// window has not closed; the bidder is not the seller; the amount is a
// positive whole number; the amount meets the bidding floor (starting price
// for the first bid, current_price + min_increment afterwards).
//
// The bid insert and the current_price update commit atomically. On Postgres
// serialization or deadlock failure the whole transaction is retried up to
// cfg.Auction.PlaceBidMaxAttempts before surfacing ErrConflict, which
// callers should treat as retryable.
func (s *BidService) PlaceBid(ctx context.Context, req domain.PlaceBidRequest) (*domain.Bid, error) {
	var bid *domain.Bid

	attempts := s.cfg.Auction.PlaceBidMaxAttempts
	for attempt := 1; ; attempt++ {
		b, err := s.placeBidOnce(ctx, req, time.Now().UTC())
		if err == nil {
			bid = b
			break
		}
		if !isRetryableTxError(err) {
			return nil, err
		}
		if attempt >= attempts {
			slog.Warn("bid placement gave up after contention",
				"auction_id", req.AuctionID, "attempts", attempt)
			return nil, domain.ErrConflict
		}
		// Brief pause before the retry so the competing transaction can finish.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * 10 * time.Millisecond):
		}
	}

	if s.broadcaster != nil {
		go s.broadcastBid(bid)
	}
	return bid, nil
}

// placeBidOnce runs one attempt of the bid transaction.
func (s *BidService) placeBidOnce(ctx context.Context, req domain.PlaceBidRequest, now time.Time) (*domain.Bid, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("bid_service.PlaceBid: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// ── 1. Row-lock the auction: per-auction serialization point ─────────────
	auction, err := s.auctionRepo.GetByIDForUpdate(ctx, tx, req.AuctionID)
	if err != nil {
		return nil, err
	}

	// ── 2. Status and window checks ──────────────────────────────────────────
	if !auction.IsActive() {
		err = domain.ErrAuctionNotActive
		return nil, err
	}
	if auction.HasEnded(now) {
		err = domain.ErrAuctionEnded
		return nil, err
	}
	if req.BidderID == auction.SellerID {
		err = domain.ErrSelfBid
		return nil, err
	}

	// ── 3. Amount checks ─────────────────────────────────────────────────────
	if !req.Amount.IsPositive() || !req.Amount.IsInteger() {
		err = domain.ErrInvalidAmount
		return nil, err
	}
	hasBids, err := s.bidRepo.HasValidBids(ctx, tx, auction.ID)
	if err != nil {
		return nil, err
	}
	floor := auction.MinAcceptableBid(hasBids)
	if req.Amount.LessThan(floor) {
		err = fmt.Errorf("%w: minimum acceptable bid is %s", domain.ErrBidTooLow, floor.StringFixed(0))
		return nil, err
	}

	// ── 4. Capture the displaced leader before the new bid lands ─────────────
	displaced, err := s.bidRepo.LeadingBidTx(ctx, tx, auction.ID)
	if err != nil {
		return nil, err
	}

	// ── 5. Append the bid and move the price ─────────────────────────────────
	bid := &domain.Bid{
		ID:        uuid.New(),
		AuctionID: auction.ID,
		BidderID:  req.BidderID,
		Amount:    req.Amount,
		Status:    domain.BidStatusValid,
		CreatedAt: now,
	}
	if err = s.bidRepo.Create(ctx, tx, bid); err != nil {
		return nil, err
	}
	if err = s.auctionRepo.UpdateCurrentPrice(ctx, tx, auction.ID, req.Amount); err != nil {
		return nil, err
	}

	// ── 6. Outbid notification for the displaced leader ──────────────────────
	if displaced != nil && displaced.BidderID != req.BidderID {
		auctionID := auction.ID
		n := &domain.Notification{
			ID:        uuid.New(),
			UserID:    displaced.BidderID,
			Kind:      domain.NotifyOutbid,
			AuctionID: &auctionID,
			Body: fmt.Sprintf("You have been outbid on %d %s %s: the price is now %s",
				auction.Year, auction.Make, auction.Model, req.Amount.StringFixed(0)),
			Status:    domain.NotificationPending,
			CreatedAt: now,
		}
		if err = s.notifRepo.Create(ctx, tx, n); err != nil {
			return nil, err
		}
	}

	// ── 7. Commit ────────────────────────────────────────────────────────────
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("bid_service.PlaceBid: commit: %w", err)
	}
	return bid, nil
}

// broadcastBid pushes the accepted bid to WS clients. Runs in a goroutine;
// failures only affect liveness of the live view, never the ledger.
func (s *BidService) broadcastBid(bid *domain.Bid) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	auction, err := s.auctionRepo.GetByID(ctx, bid.AuctionID)
	if err != nil {
		return
	}
	s.broadcaster.BroadcastBidPlaced(auction.ID, bid.Amount.StringFixed(0), auction.EndsAt)
}

// ──────────────────────────────────────────────────────────────────────────────
// VoidBid
// ──────────────────────────────────────────────────────────────────────────────

// VoidBid administratively invalidates a previously accepted bid and
// synchronously recomputes the auction's current_price from the surviving
// valid bids, all in one transaction: there is no observable window where
// current_price still reflects the voided bid. The voided row is retained
// for audit. Terminal auction status is never reversed by this path, even
// when the recomputed price crosses the reserve differently.
//
// Returns the updated auction snapshot (auction + full bid list) for the
// admin console.
func (s *BidService) VoidBid(ctx context.Context, bidID uuid.UUID, reason string, actorID uuid.UUID) (*domain.AuctionSnapshot, error) {
	bid, err := s.bidRepo.GetByID(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if !bid.IsValid() {
		return nil, domain.ErrBidAlreadyVoided
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("bid_service.VoidBid: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Lock the auction first so the void and recompute are serialized against
	// concurrent bid placement on the same auction.
	auction, err := s.auctionRepo.GetByIDForUpdate(ctx, tx, bid.AuctionID)
	if err != nil {
		return nil, err
	}

	// Guarded update re-checks validity under the lock.
	if err = s.bidRepo.Void(ctx, tx, bidID, reason, actorID); err != nil {
		return nil, err
	}

	if err = s.recomputer.RecomputePriceTx(ctx, tx, auction); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	auctionID := auction.ID
	notice := &domain.Notification{
		ID:        uuid.New(),
		UserID:    bid.BidderID,
		Kind:      domain.NotifyBidVoided,
		AuctionID: &auctionID,
		Body: fmt.Sprintf("Your bid of %s on %d %s %s was voided: %s",
			bid.Amount.StringFixed(0), auction.Year, auction.Make, auction.Model, reason),
		Status:    domain.NotificationPending,
		CreatedAt: now,
	}
	if err = s.notifRepo.Create(ctx, tx, notice); err != nil {
		return nil, err
	}

	entry := &domain.AuditEntry{
		ID:         uuid.New(),
		ActorID:    actorID,
		Action:     "bid.void",
		EntityType: "bid",
		EntityID:   bidID,
		Detail:     fmt.Sprintf("voided %s bid on auction %s: %s", bid.Amount.StringFixed(0), auction.ID, reason),
		CreatedAt:  now,
	}
	if err = s.auditRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("bid_service.VoidBid: commit: %w", err)
	}

	snapshot, err := s.Snapshot(ctx, auction.ID)
	if err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastPriceRecomputed(auction.ID, snapshot.Auction.CurrentPrice.StringFixed(0))
	}
	return snapshot, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────────────────────────

// LeadingBid returns the auction's current leading bid: greatest valid
// amount, ties broken by earliest timestamp. Returns (nil, nil) when no
// valid bids exist.
func (s *BidService) LeadingBid(ctx context.Context, auctionID uuid.UUID) (*domain.Bid, error) {
	if _, err := s.auctionRepo.GetByID(ctx, auctionID); err != nil {
		return nil, err
	}
	return s.bidRepo.LeadingBid(ctx, auctionID)
}

// Snapshot returns the auction with its full bid ledger in one view.
func (s *BidService) Snapshot(ctx context.Context, auctionID uuid.UUID) (*domain.AuctionSnapshot, error) {
	auction, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	bids, err := s.bidRepo.ListByAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	return &domain.AuctionSnapshot{Auction: auction, Bids: bids}, nil
}

// ListAuctionBids returns the full ledger for an auction, voided rows included.
func (s *BidService) ListAuctionBids(ctx context.Context, auctionID uuid.UUID) ([]*domain.Bid, error) {
	if _, err := s.auctionRepo.GetByID(ctx, auctionID); err != nil {
		return nil, err
	}
	return s.bidRepo.ListByAuction(ctx, auctionID)
}

// ListBidderBids returns paginated bid history for one bidder.
func (s *BidService) ListBidderBids(ctx context.Context, bidderID uuid.UUID, limit, offset int) ([]*domain.Bid, error) {
	return s.bidRepo.ListByBidder(ctx, bidderID, limit, offset)
}

// ──────────────────────────────────────────────────────────────────────────────
// Postgres contention classification
// ──────────────────────────────────────────────────────────────────────────────

// isRetryableTxError reports whether err is a transient Postgres write
// conflict worth retrying: serialization_failure (40001) or deadlock_detected
// (40P01). Domain errors are never retryable.
func isRetryableTxError(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "40001" || pqErr.Code == "40P01"
}
