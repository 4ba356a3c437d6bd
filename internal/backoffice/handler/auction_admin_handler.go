package handler

import (
	"errors"
	"net/http"

	"github.com/drovers/stockyard/internal/config"
	"github.com/drovers/stockyard/internal/domain"
	"github.com/drovers/stockyard/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuctionAdminHandler serves /admin/auctions endpoints: the review queue and
// the approve/reject decisions.
type AuctionAdminHandler struct {
	listingSvc *service.ListingService
	cfg        *config.Config
}

// NewAuctionAdminHandler creates an AuctionAdminHandler.
func NewAuctionAdminHandler(listingSvc *service.ListingService, cfg *config.Config) *AuctionAdminHandler {
	return &AuctionAdminHandler{listingSvc: listingSvc, cfg: cfg}
}

// List godoc
// GET /admin/auctions?status=pending_review&page=1&limit=50
func (h *AuctionAdminHandler) List(c *gin.Context) {
	status := c.Query("status")
	page, limit := adminPagination(c)
	offset := (page - 1) * limit

	auctions, total, err := h.listingSvc.ListAuctions(c.Request.Context(), limit, offset, status)
	if err != nil {
		if domain.IsValidation(err) {
			respondError(c, http.StatusBadRequest, "ERR_INVALID_STATUS", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondList(c, auctions, total, page, limit)
}

// Detail godoc
// GET /admin/auctions/:id
// Returns the auction with its full bid ledger, voided rows included.
func (h *AuctionAdminHandler) Detail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid auction id")
		return
	}

	snapshot, err := h.listingSvc.GetSnapshot(c.Request.Context(), id)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}

	leading := snapshot.LeadingBid()
	respondSuccess(c, http.StatusOK, gin.H{
		"auction":     snapshot.Auction,
		"bids":        snapshot.Bids,
		"leading_bid": leading,
	})
}

// Approve godoc
// POST /admin/auctions/:id/approve
func (h *AuctionAdminHandler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid auction id")
		return
	}
	reviewerID := actorID(c)

	auction, err := h.listingSvc.Approve(c.Request.Context(), id, reviewerID)
	if err != nil {
		switch {
		case domain.IsNotFound(err):
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
		case errors.Is(err, domain.ErrKYCRequired):
			respondError(c, http.StatusUnprocessableEntity, "ERR_KYC_REQUIRED", err.Error())
		case domain.IsInvalidState(err):
			respondError(c, http.StatusConflict, "ERR_INVALID_TRANSITION", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		}
		return
	}
	respondSuccess(c, http.StatusOK, auction)
}

// Reject godoc
// POST /admin/auctions/:id/reject
// Body: {"reason": "photos do not match the description"}
func (h *AuctionAdminHandler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid auction id")
		return
	}
	var body struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err = c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}
	reviewerID := actorID(c)

	auction, err := h.listingSvc.Reject(c.Request.Context(), id, reviewerID, body.Reason)
	if err != nil {
		switch {
		case domain.IsNotFound(err):
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
		case domain.IsInvalidState(err):
			respondError(c, http.StatusConflict, "ERR_INVALID_TRANSITION", err.Error())
		case domain.IsValidation(err):
			respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		}
		return
	}
	respondSuccess(c, http.StatusOK, auction)
}

// actorID reads the admin's user id stored by the JWT middleware.
func actorID(c *gin.Context) uuid.UUID {
	v, _ := c.Get("userID")
	s, _ := v.(string)
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}
