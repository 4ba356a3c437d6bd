package handler

import (
	"errors"
	"net/http"

	"github.com/drovers/stockyard/internal/api/middleware"
	"github.com/drovers/stockyard/internal/domain"
	"github.com/drovers/stockyard/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BidHandler serves bid placement and history endpoints.
type BidHandler struct {
	bidSvc *service.BidService
}

// NewBidHandler creates a BidHandler.
func NewBidHandler(bidSvc *service.BidService) *BidHandler {
	return &BidHandler{bidSvc: bidSvc}
}

// PlaceBid godoc
// POST /api/bids [JWT]
// Body: {"auction_id":"uuid","amount":"15500"}
func (h *BidHandler) PlaceBid(c *gin.Context) {
	bidderID := middleware.GetUserID(c)

	var body struct {
		AuctionID string `json:"auction_id" binding:"required"`
		Amount    string `json:"amount"     binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	auctionID, err := uuid.Parse(body.AuctionID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AUCTION_ID", "invalid auction_id format")
		return
	}

	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", "amount must be a decimal string")
		return
	}

	req := domain.PlaceBidRequest{
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    amount,
	}

	bid, err := h.bidSvc.PlaceBid(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAuctionNotFound):
			respondError(c, http.StatusNotFound, "ERR_AUCTION_NOT_FOUND", err.Error())
		case errors.Is(err, domain.ErrAuctionNotActive):
			respondError(c, http.StatusConflict, "ERR_AUCTION_NOT_ACTIVE", err.Error())
		case errors.Is(err, domain.ErrAuctionEnded):
			respondError(c, http.StatusConflict, "ERR_AUCTION_ENDED", err.Error())
		case errors.Is(err, domain.ErrSelfBid):
			respondError(c, http.StatusForbidden, "ERR_SELF_BID", err.Error())
		case errors.Is(err, domain.ErrInvalidAmount):
			respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", err.Error())
		case errors.Is(err, domain.ErrBidTooLow):
			respondError(c, http.StatusUnprocessableEntity, "ERR_BID_TOO_LOW", err.Error())
		case errors.Is(err, domain.ErrConflict):
			respondError(c, http.StatusConflict, "ERR_CONFLICT", "auction is busy, please retry")
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not place bid")
		}
		return
	}
	respondSuccess(c, http.StatusCreated, bid.ToResponse())
}

// GetAuctionBids godoc
// GET /api/auctions/:id/bids
// Public bid history for one auction, oldest first, voided bids included.
func (h *BidHandler) GetAuctionBids(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid auction id")
		return
	}

	bids, err := h.bidSvc.ListAuctionBids(c.Request.Context(), auctionID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch bids")
		return
	}

	out := make([]domain.BidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, b.ToResponse())
	}
	respondSuccess(c, http.StatusOK, out)
}

// GetLeadingBid godoc
// GET /api/auctions/:id/leading
func (h *BidHandler) GetLeadingBid(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid auction id")
		return
	}

	bid, err := h.bidSvc.LeadingBid(c.Request.Context(), auctionID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch leading bid")
		return
	}
	if bid == nil {
		respondSuccess(c, http.StatusOK, nil)
		return
	}
	respondSuccess(c, http.StatusOK, bid.ToResponse())
}

// GetMyBids godoc
// GET /api/bids/my?page=1&limit=20 [JWT]
func (h *BidHandler) GetMyBids(c *gin.Context) {
	bidderID := middleware.GetUserID(c)
	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	bids, err := h.bidSvc.ListBidderBids(c.Request.Context(), bidderID, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch bids")
		return
	}
	respondList(c, bids, len(bids), page, limit)
}
