package handler

import (
	"net/http"
	"time"

	"github.com/drovers/stockyard/internal/config"
	"github.com/drovers/stockyard/internal/repository"
	"github.com/drovers/stockyard/internal/service"
	"github.com/drovers/stockyard/internal/ws"
	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the /admin/dashboard endpoint and operational
// controls that don't belong to one entity.
type DashboardHandler struct {
	listingSvc    *service.ListingService
	settlementSvc *service.SettlementService
	auditRepo     *repository.AuditRepository
	hub           *ws.Hub
	cfg           *config.Config
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(
	listingSvc *service.ListingService,
	settlementSvc *service.SettlementService,
	auditRepo *repository.AuditRepository,
	hub *ws.Hub,
	cfg *config.Config,
) *DashboardHandler {
	return &DashboardHandler{
		listingSvc:    listingSvc,
		settlementSvc: settlementSvc,
		auditRepo:     auditRepo,
		hub:           hub,
		cfg:           cfg,
	}
}

// Dashboard godoc
// GET /admin/dashboard
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	counts, err := h.listingSvc.CountByStatus(ctx)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}

	var wsConnections int
	if h.hub != nil {
		wsConnections = h.hub.ConnectedCount()
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"timestamp":       time.Now().UTC(),
		"auction_counts":  counts,
		"sweep_interval":  h.cfg.Auction.SweepInterval.String(),
		"ws_connections":  wsConnections,
	})
}

// TriggerSweep godoc
// POST /admin/settlement/sweep
// Runs one settlement pass immediately instead of waiting for the next tick.
// Safe to call at any time — already-settled auctions are skipped.
func (h *DashboardHandler) TriggerSweep(c *gin.Context) {
	settled, err := h.settlementSvc.SettleExpiredAuctions(c.Request.Context(), time.Now().UTC())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"settled": settled})
}

// AuditLog godoc
// GET /admin/audit?page=1&limit=50
func (h *DashboardHandler) AuditLog(c *gin.Context) {
	page, limit := adminPagination(c)
	offset := (page - 1) * limit

	entries, err := h.auditRepo.ListRecent(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondList(c, entries, len(entries), page, limit)
}
