package backoffice

import (
	"net/http"
	"strings"

	"github.com/drovers/stockyard/internal/backoffice/handler"
	"github.com/drovers/stockyard/internal/config"
	"github.com/drovers/stockyard/internal/domain"
	"github.com/drovers/stockyard/internal/repository"
	"github.com/drovers/stockyard/internal/service"
	"github.com/drovers/stockyard/internal/ws"
	"github.com/gin-gonic/gin"
)

// BackofficeDeps bundles every dependency needed for the admin router.
type BackofficeDeps struct {
	AuthSvc       *service.AuthService
	ListingSvc    *service.ListingService
	BidSvc        *service.BidService
	SettlementSvc *service.SettlementService
	UserRepo      *repository.UserRepository
	AuditRepo     *repository.AuditRepository
	Hub           *ws.Hub
	Cfg           *config.Config
}

// SetupBackofficeRouter creates the admin Gin engine on port 8081.
func SetupBackofficeRouter(deps BackofficeDeps) *gin.Engine {
	if deps.Cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(ipWhitelistMiddleware(deps.Cfg.Server.BackofficeAllowedIPs))

	dashH := handler.NewDashboardHandler(deps.ListingSvc, deps.SettlementSvc, deps.AuditRepo, deps.Hub, deps.Cfg)
	auctionH := handler.NewAuctionAdminHandler(deps.ListingSvc, deps.Cfg)
	bidH := handler.NewBidAdminHandler(deps.BidSvc, deps.Cfg)
	userH := handler.NewUserAdminHandler(deps.UserRepo, deps.Cfg)

	jwtMW := adminJWTMiddleware(deps.AuthSvc)

	admin := r.Group("/admin")
	admin.Use(jwtMW)
	{
		admin.GET("/dashboard", dashH.Dashboard)
		admin.GET("/audit", dashH.AuditLog)
		admin.POST("/settlement/sweep", dashH.TriggerSweep)

		// Auctions
		a := admin.Group("/auctions")
		{
			a.GET("", auctionH.List)
			a.GET("/:id", auctionH.Detail)
			a.POST("/:id/approve", auctionH.Approve)
			a.POST("/:id/reject", auctionH.Reject)
		}

		// Bids
		b := admin.Group("/bids")
		{
			b.POST("/:id/void", bidH.Void)
		}

		// Users
		u := admin.Group("/users")
		{
			u.GET("", userH.List)
			u.GET("/:id", userH.Detail)
			u.POST("/:id/kyc/verify", userH.VerifyKYC)
			u.POST("/:id/kyc/reject", userH.RejectKYC)
			u.POST("/:id/suspend", userH.Suspend)
			u.POST("/:id/activate", userH.Activate)
			u.POST("/:id/role", userH.SetRole)
		}
	}

	return r
}

// ── IP whitelist middleware ───────────────────────────────────────────────────

// ipWhitelistMiddleware blocks requests from IPs not in the allowlist.
// allowedIPs is a comma-separated string; empty means allow all.
func ipWhitelistMiddleware(allowedIPs string) gin.HandlerFunc {
	if allowedIPs == "" {
		return func(c *gin.Context) { c.Next() } // dev mode: no restriction
	}

	allowed := make(map[string]bool)
	for _, ip := range strings.Split(allowedIPs, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			allowed[ip] = true
		}
	}

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if !allowed[clientIP] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "access denied: your IP is not whitelisted",
			})
			return
		}
		c.Next()
	}
}

// ── Admin JWT middleware ──────────────────────────────────────────────────────

// adminJWTMiddleware validates a JWT and requires the caller to have a
// backoffice-capable role. Mutating endpoints additionally reject the
// readonly role.
func adminJWTMiddleware(authSvc *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		claims, err := authSvc.ParseAccessToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil || claims.TokenType != "access" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		role := domain.UserRole(claims.Role)
		if !role.CanAccessBackoffice() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		if c.Request.Method != http.MethodGet && !role.CanMutate() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "read-only access"})
			return
		}

		c.Set("userID", claims.Subject)
		c.Set("role", claims.Role)
		c.Next()
	}
}
