package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/drovers/stockyard/internal/api/middleware"
	"github.com/drovers/stockyard/internal/domain"
	"github.com/drovers/stockyard/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuctionHandler serves auction browse and listing endpoints.
type AuctionHandler struct {
	listingSvc *service.ListingService
}

// NewAuctionHandler creates an AuctionHandler.
func NewAuctionHandler(listingSvc *service.ListingService) *AuctionHandler {
	return &AuctionHandler{listingSvc: listingSvc}
}

// ListAuctions godoc
// GET /api/auctions?status=active&page=1&limit=20
func (h *AuctionHandler) ListAuctions(c *gin.Context) {
	status := c.Query("status")
	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	auctions, total, err := h.listingSvc.ListAuctions(c.Request.Context(), limit, offset, status)
	if err != nil {
		if domain.IsValidation(err) {
			respondError(c, http.StatusBadRequest, "ERR_INVALID_STATUS", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not list auctions")
		return
	}
	respondList(c, auctions, total, page, limit)
}

// GetByID godoc
// GET /api/auctions/:id
func (h *AuctionHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid auction id")
		return
	}

	auction, err := h.listingSvc.GetAuction(c.Request.Context(), id)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch auction")
		return
	}
	respondSuccess(c, http.StatusOK, auction)
}

// CreateListing godoc
// POST /api/auctions [JWT]
// Body: {"make":"John Deere","model":"8R 410","year":2022,"condition":"used",
//
//	"description":"...","starting_price":"15000","reserve_price":"22000",
//	"min_increment":"500","starts_at":"...","ends_at":"..."}
func (h *AuctionHandler) CreateListing(c *gin.Context) {
	sellerID := middleware.GetUserID(c)

	var body struct {
		Make          string    `json:"make"           binding:"required"`
		Model         string    `json:"model"          binding:"required"`
		Year          int       `json:"year"           binding:"required"`
		Condition     string    `json:"condition"      binding:"required"`
		Description   string    `json:"description"`
		StartingPrice string    `json:"starting_price" binding:"required"`
		ReservePrice  string    `json:"reserve_price"  binding:"required"`
		MinIncrement  string    `json:"min_increment"  binding:"required"`
		StartsAt      time.Time `json:"starts_at"      binding:"required"`
		EndsAt        time.Time `json:"ends_at"        binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	starting, err := decimal.NewFromString(body.StartingPrice)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", "starting_price must be a decimal string")
		return
	}
	reserve, err := decimal.NewFromString(body.ReservePrice)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", "reserve_price must be a decimal string")
		return
	}
	increment, err := decimal.NewFromString(body.MinIncrement)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", "min_increment must be a decimal string")
		return
	}

	req := &domain.CreateListingRequest{
		SellerID:      sellerID,
		Make:          body.Make,
		Model:         body.Model,
		Year:          body.Year,
		Condition:     body.Condition,
		Description:   body.Description,
		StartingPrice: starting,
		ReservePrice:  reserve,
		MinIncrement:  increment,
		StartsAt:      body.StartsAt,
		EndsAt:        body.EndsAt,
	}

	auction, err := h.listingSvc.CreateListing(c.Request.Context(), req)
	if err != nil {
		if domain.IsValidation(err) {
			respondError(c, http.StatusBadRequest, "ERR_INVALID_LISTING", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not create listing")
		return
	}
	respondSuccess(c, http.StatusCreated, auction)
}

// SubmitForReview godoc
// POST /api/auctions/:id/submit [JWT]
func (h *AuctionHandler) SubmitForReview(c *gin.Context) {
	sellerID := middleware.GetUserID(c)

	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid auction id")
		return
	}

	auction, err := h.listingSvc.SubmitForReview(c.Request.Context(), auctionID, sellerID)
	if err != nil {
		switch {
		case domain.IsNotFound(err):
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
		case errors.Is(err, domain.ErrForbidden):
			respondError(c, http.StatusForbidden, "ERR_FORBIDDEN", "this listing does not belong to you")
		case domain.IsInvalidState(err):
			respondError(c, http.StatusConflict, "ERR_INVALID_TRANSITION", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not submit listing")
		}
		return
	}
	respondSuccess(c, http.StatusOK, auction)
}

// GetMyListings godoc
// GET /api/auctions/my?page=1&limit=20 [JWT]
func (h *AuctionHandler) GetMyListings(c *gin.Context) {
	sellerID := middleware.GetUserID(c)
	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	auctions, err := h.listingSvc.ListBySeller(c.Request.Context(), sellerID, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch listings")
		return
	}
	respondList(c, auctions, len(auctions), page, limit)
}
