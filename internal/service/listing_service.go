package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/drovers/stockyard/internal/config"
	"github.com/drovers/stockyard/internal/domain"
	"github.com/drovers/stockyard/internal/repository"
	"github.com/google/uuid"
)

// ListingService manages the pre-bidding half of an auction's life: sellers
// draft and submit listings, admins approve them onto the block or reject
// them back. Everything from the first bid onward belongs to BidService and
// SettlementService.
type ListingService struct {
	auctionRepo *repository.AuctionRepository
	bidRepo     *repository.BidRepository
	userRepo    *repository.UserRepository
	notifRepo   *repository.NotificationRepository
	auditRepo   *repository.AuditRepository
	cfg         *config.Config
}

// NewListingService builds a ListingService.
func NewListingService(
	auctionRepo *repository.AuctionRepository,
	bidRepo *repository.BidRepository,
	userRepo *repository.UserRepository,
	notifRepo *repository.NotificationRepository,
	auditRepo *repository.AuditRepository,
	cfg *config.Config,
) *ListingService {
	return &ListingService{
		auctionRepo: auctionRepo,
		bidRepo:     bidRepo,
		userRepo:    userRepo,
		notifRepo:   notifRepo,
		auditRepo:   auditRepo,
		cfg:         cfg,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Seller operations
// ──────────────────────────────────────────────────────────────────────────────

// CreateListing validates the request and inserts a draft auction. The lot
// does not appear to buyers until an admin approves it.
func (s *ListingService) CreateListing(ctx context.Context, req *domain.CreateListingRequest) (*domain.Auction, error) {
	if err := s.validateListing(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	auction := &domain.Auction{
		ID:            uuid.New(),
		SellerID:      req.SellerID,
		Make:          strings.TrimSpace(req.Make),
		Model:         strings.TrimSpace(req.Model),
		Year:          req.Year,
		Condition:     strings.TrimSpace(req.Condition),
		Description:   strings.TrimSpace(req.Description),
		Status:        domain.StatusDraft,
		StartingPrice: req.StartingPrice,
		ReservePrice:  req.ReservePrice,
		MinIncrement:  req.MinIncrement,
		CurrentPrice:  req.StartingPrice, // no bids yet
		StartsAt:      req.StartsAt.UTC(),
		EndsAt:        req.EndsAt.UTC(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.auctionRepo.Create(ctx, auction); err != nil {
		return nil, fmt.Errorf("listing_service.CreateListing: %w", err)
	}

	slog.Info("listing created",
		"auction_id", auction.ID,
		"seller_id", auction.SellerID,
		"make", auction.Make, "model", auction.Model, "year", auction.Year)
	return auction, nil
}

func (s *ListingService) validateListing(req *domain.CreateListingRequest) error {
	switch {
	case strings.TrimSpace(req.Make) == "":
		return fmt.Errorf("%w: make is required", domain.ErrInvalidListing)
	case strings.TrimSpace(req.Model) == "":
		return fmt.Errorf("%w: model is required", domain.ErrInvalidListing)
	case req.Year < 1900 || req.Year > time.Now().Year()+1:
		return fmt.Errorf("%w: implausible year %d", domain.ErrInvalidListing, req.Year)
	case !req.StartingPrice.IsPositive() || !req.StartingPrice.IsInteger():
		return fmt.Errorf("%w: starting price must be a positive whole amount", domain.ErrInvalidListing)
	case !req.ReservePrice.IsPositive() || !req.ReservePrice.IsInteger():
		return fmt.Errorf("%w: reserve price must be a positive whole amount", domain.ErrInvalidListing)
	case req.ReservePrice.LessThan(req.StartingPrice):
		return fmt.Errorf("%w: reserve price cannot be below the starting price", domain.ErrInvalidListing)
	case !req.MinIncrement.IsPositive() || !req.MinIncrement.IsInteger():
		return fmt.Errorf("%w: minimum increment must be a positive whole amount", domain.ErrInvalidListing)
	case !req.EndsAt.After(req.StartsAt):
		return fmt.Errorf("%w: end time must be after start time", domain.ErrInvalidListing)
	}

	window := req.EndsAt.Sub(req.StartsAt)
	if window < s.cfg.Auction.MinListingDuration {
		return fmt.Errorf("%w: bidding window must run at least %s", domain.ErrInvalidListing, s.cfg.Auction.MinListingDuration)
	}
	if window > s.cfg.Auction.MaxListingDuration {
		return fmt.Errorf("%w: bidding window cannot exceed %s", domain.ErrInvalidListing, s.cfg.Auction.MaxListingDuration)
	}
	return nil
}

// SubmitForReview moves the seller's draft into the admin review queue.
// Only the listing's owner may submit it.
func (s *ListingService) SubmitForReview(ctx context.Context, auctionID, sellerID uuid.UUID) (*domain.Auction, error) {
	auction, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if auction.SellerID != sellerID {
		return nil, domain.ErrForbidden
	}

	if err := s.auctionRepo.Transition(ctx, nil, auctionID, domain.StatusDraft, domain.StatusPendingReview); err != nil {
		return nil, err
	}
	auction.Status = domain.StatusPendingReview

	slog.Info("listing submitted for review", "auction_id", auctionID, "seller_id", sellerID)
	return auction, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Admin review
// ──────────────────────────────────────────────────────────────────────────────

// Approve takes a pending_review listing live. Sellers without verified
// identity cannot have lots on the block, so the check happens here rather
// than at submission time — verification may lapse between the two.
func (s *ListingService) Approve(ctx context.Context, auctionID, reviewerID uuid.UUID) (*domain.Auction, error) {
	auction, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	seller, err := s.userRepo.GetByID(ctx, auction.SellerID)
	if err != nil {
		return nil, err
	}
	if !seller.IsKYCVerified() {
		return nil, fmt.Errorf("%w: seller %s is not verified", domain.ErrKYCRequired, seller.Username)
	}

	if err := s.auctionRepo.Approve(ctx, auctionID); err != nil {
		return nil, err
	}
	auction.Status = domain.StatusActive

	s.notifySeller(ctx, auction, domain.NotifyListingApproved,
		fmt.Sprintf("Your listing for %s is now live", lotName(auction)))
	s.audit(ctx, reviewerID, "listing.approve", auctionID, "")

	slog.Info("listing approved", "auction_id", auctionID, "reviewer_id", reviewerID)
	return auction, nil
}

// Reject declines a pending_review listing with the reviewer's reason.
func (s *ListingService) Reject(ctx context.Context, auctionID, reviewerID uuid.UUID, reason string) (*domain.Auction, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", domain.ErrInvalidListing)
	}

	if err := s.auctionRepo.Reject(ctx, auctionID, reason); err != nil {
		return nil, err
	}

	auction, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	s.notifySeller(ctx, auction, domain.NotifyListingRejected,
		fmt.Sprintf("Your listing for %s was declined: %s", lotName(auction), reason))
	s.audit(ctx, reviewerID, "listing.reject", auctionID, reason)

	slog.Info("listing rejected", "auction_id", auctionID, "reviewer_id", reviewerID, "reason", reason)
	return auction, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Reads
// ──────────────────────────────────────────────────────────────────────────────

// GetAuction returns one auction by id.
func (s *ListingService) GetAuction(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	return s.auctionRepo.GetByID(ctx, id)
}

// GetSnapshot returns the auction with its full bid history, voided bids
// included.
func (s *ListingService) GetSnapshot(ctx context.Context, id uuid.UUID) (*domain.AuctionSnapshot, error) {
	auction, err := s.auctionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	bids, err := s.bidRepo.ListByAuction(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.AuctionSnapshot{Auction: auction, Bids: bids}, nil
}

// ListAuctions returns a page of auctions, optionally filtered by status,
// together with the total count for that filter.
func (s *ListingService) ListAuctions(ctx context.Context, limit, offset int, status string) ([]*domain.Auction, int, error) {
	if status != "" && !domain.AuctionStatus(status).IsValid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidListing, status)
	}
	return s.auctionRepo.List(ctx, limit, offset, status)
}

// ListBySeller returns the seller's own listings, all statuses.
func (s *ListingService) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]*domain.Auction, error) {
	return s.auctionRepo.ListBySeller(ctx, sellerID, limit, offset)
}

// CountByStatus powers the admin dashboard tiles.
func (s *ListingService) CountByStatus(ctx context.Context) (map[domain.AuctionStatus]int, error) {
	return s.auctionRepo.CountByStatus(ctx)
}

// ──────────────────────────────────────────────────────────────────────────────
// helpers
// ──────────────────────────────────────────────────────────────────────────────

func lotName(a *domain.Auction) string {
	return fmt.Sprintf("%d %s %s", a.Year, a.Make, a.Model)
}

// notifySeller queues a notification outside any transaction. Review
// decisions are single-row updates, so there is no tx to join; a lost
// notification here is tolerable, a blocked review is not.
func (s *ListingService) notifySeller(ctx context.Context, a *domain.Auction, kind domain.NotificationKind, body string) {
	auctionID := a.ID
	n := &domain.Notification{
		ID:        uuid.New(),
		UserID:    a.SellerID,
		Kind:      kind,
		AuctionID: &auctionID,
		Body:      body,
		Status:    domain.NotificationPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.notifRepo.Create(ctx, nil, n); err != nil {
		slog.Error("failed to queue notification", "kind", string(kind), "auction_id", a.ID, "err", err)
	}
}

func (s *ListingService) audit(ctx context.Context, actorID uuid.UUID, action string, auctionID uuid.UUID, detail string) {
	e := &domain.AuditEntry{
		ID:         uuid.New(),
		ActorID:    actorID,
		Action:     action,
		EntityType: "auction",
		EntityID:   auctionID,
		Detail:     detail,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.auditRepo.Create(ctx, nil, e); err != nil {
		slog.Error("failed to write audit entry", "action", action, "entity_id", auctionID, "err", err)
	}
}
