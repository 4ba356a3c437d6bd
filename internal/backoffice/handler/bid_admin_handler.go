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

// BidAdminHandler serves /admin/bids endpoints. Voiding is the only bid
// mutation admins have; everything else is read via the auction detail view.
type BidAdminHandler struct {
	bidSvc *service.BidService
	cfg    *config.Config
}

// NewBidAdminHandler creates a BidAdminHandler.
func NewBidAdminHandler(bidSvc *service.BidService, cfg *config.Config) *BidAdminHandler {
	return &BidAdminHandler{bidSvc: bidSvc, cfg: cfg}
}

// Void godoc
// POST /admin/bids/:id/void
// Body: {"reason": "shill bidding"}
// Returns the auction snapshot after the synchronous price recompute, so the
// operator immediately sees the corrected price and surviving ledger.
func (h *BidAdminHandler) Void(c *gin.Context) {
	bidID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid bid id")
		return
	}
	var body struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err = c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	snapshot, err := h.bidSvc.VoidBid(c.Request.Context(), bidID, body.Reason, actorID(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBidNotFound):
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
		case errors.Is(err, domain.ErrBidAlreadyVoided):
			respondError(c, http.StatusConflict, "ERR_ALREADY_VOIDED", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		}
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"auction":     snapshot.Auction,
		"bids":        snapshot.Bids,
		"leading_bid": snapshot.LeadingBid(),
	})
}
