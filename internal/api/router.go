package api

import (
	"net/http"

	"github.com/drovers/stockyard/internal/api/handler"
	"github.com/drovers/stockyard/internal/api/middleware"
	"github.com/drovers/stockyard/internal/config"
	"github.com/drovers/stockyard/internal/service"
	"github.com/drovers/stockyard/internal/ws"
	"github.com/gin-gonic/gin"
)

// RouterDeps bundles every dependency needed to build the router.
// Populated once in main() and passed to SetupRouter.
type RouterDeps struct {
	AuthSvc    *service.AuthService
	ListingSvc *service.ListingService
	BidSvc     *service.BidService
	NotifSvc   *service.NotificationService
	Hub        *ws.Hub
	Cfg        *config.Config
}

// SetupRouter creates and configures the main Gin engine with all routes,
// middleware, CORS, and rate limiting rules.
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	// ── CORS ─────────────────────────────────────────────────────────────────
	r.Use(corsMiddleware(deps.Cfg))

	// ── Health check ─────────────────────────────────────────────────────────
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── Handlers ─────────────────────────────────────────────────────────────
	userH := handler.NewUserHandler(deps.AuthSvc, deps.NotifSvc)
	auctionH := handler.NewAuctionHandler(deps.ListingSvc)
	bidH := handler.NewBidHandler(deps.BidSvc)

	// ── JWT middleware (shared) ───────────────────────────────────────────────
	jwtMW := middleware.JWTMiddleware(deps.AuthSvc)

	// ── Rate limiters ─────────────────────────────────────────────────────────
	authRL := middleware.RateLimitMiddleware(10) // 10 req/s per IP for auth endpoints
	bidRL := middleware.RateLimitMiddleware(30)  // 30 req/s per IP for bid endpoints

	api := r.Group("/api")
	{
		// ── Auth (public, strict rate limit) ─────────────────────────────────
		auth := api.Group("/auth")
		auth.Use(authRL)
		{
			auth.POST("/register", userH.Register)
			auth.POST("/login", userH.Login)
			auth.POST("/refresh", userH.Refresh)
		}

		// ── Auctions (public reads) ──────────────────────────────────────────
		auctions := api.Group("/auctions")
		{
			auctions.GET("", auctionH.ListAuctions)
			auctions.GET("/:id", auctionH.GetByID)
			auctions.GET("/:id/bids", bidH.GetAuctionBids)
			auctions.GET("/:id/leading", bidH.GetLeadingBid)
		}

		// ── Authenticated routes ──────────────────────────────────────────────
		authed := api.Group("")
		authed.Use(jwtMW)
		{
			// Profile
			authed.GET("/me", userH.Me)
			authed.POST("/me/kyc", userH.SubmitKYC)

			// Listings (seller side)
			authed.POST("/auctions", auctionH.CreateListing)
			authed.POST("/auctions/:id/submit", auctionH.SubmitForReview)
			authed.GET("/auctions/my", auctionH.GetMyListings)

			// Bids
			bids := authed.Group("/bids")
			bids.Use(bidRL)
			{
				bids.POST("", bidH.PlaceBid)
				bids.GET("/my", bidH.GetMyBids)
			}

			// Notifications
			authed.GET("/notifications", userH.GetNotifications)
			authed.POST("/notifications/:id/read", userH.MarkNotificationRead)
		}
	}

	// ── WebSocket ─────────────────────────────────────────────────────────────
	if deps.Hub != nil {
		r.GET("/ws", func(c *gin.Context) {
			deps.Hub.ServeWs(c.Writer, c.Request)
		})
	}

	return r
}

// ── CORS helper ───────────────────────────────────────────────────────────────

// corsMiddleware returns a gin middleware that sets appropriate CORS headers.
// In development all origins are allowed; in production only configured origins.
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if !cfg.IsProd() {
			// Development: allow any origin
			c.Header("Access-Control-Allow-Origin", "*")
		} else if origin != "" {
			// Production: allow only the marketplace frontends
			allowed := map[string]bool{
				"https://drovers.co":     true,
				"https://www.drovers.co": true,
			}
			if allowed[origin] {
				c.Header("Access-Control-Allow-Origin", origin)
			}
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
