package routes

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"soltracker/internal/handlers"
	"soltracker/internal/middleware"
)

// Handlers bundles the configured handler set the router exposes.
type Handlers struct {
	Tracking     *handlers.TrackingHandler
	Transactions *handlers.TransactionHandler
	Tokens       *handlers.TokenHandler
	WalletTokens *handlers.WalletTokenHandler
	Holdings     *handlers.HoldingsHandler
}

// SetupRouter initializes and returns the Gin router with all routes configured
func SetupRouter(h Handlers) *gin.Engine {
	r := gin.Default()

	// Add health check endpoint
	r.Any("/health", func(c *gin.Context) {
		c.String(200, "ok")
	})

	r.Use(corsMiddleware())

	setupTrackingRoutes(r, h.Tracking)
	setupTransactionRoutes(r, h.Transactions)
	setupTokenRoutes(r, h.Tokens)
	setupWalletTokenRoutes(r, h.WalletTokens)
	setupHoldingsRoutes(r, h.Holdings)

	return r
}

// corsMiddleware allows origins listed in ALLOWED_ORIGINS, a
// comma-separated list, e.g. "http://localhost:3000,http://localhost:3001"
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		var allowedOrigins []string
		if allowedOriginsStr := os.Getenv("ALLOWED_ORIGINS"); allowedOriginsStr != "" {
			for _, o := range strings.Split(allowedOriginsStr, ",") {
				if trimmed := strings.TrimSpace(o); trimmed != "" {
					allowedOrigins = append(allowedOrigins, trimmed)
				}
			}
		}

		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
				break
			}
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func setupTrackingRoutes(r *gin.Engine, h *handlers.TrackingHandler) {
	tracking := r.Group("/api/tracking")
	// control commands fan out to the worker; keep abusive clients off them
	tracking.Use(middleware.RateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: 5,
		Burst:             10,
	}))
	{
		tracking.POST("/start", h.StartTracking)
		tracking.POST("/stop", h.StopTracking)
		tracking.POST("/addresses", h.SetAddresses)
		tracking.GET("/status", h.GetStatus)
	}
}

func setupTransactionRoutes(r *gin.Engine, h *handlers.TransactionHandler) {
	transactions := r.Group("/api/transactions")
	{
		transactions.GET("", h.ListTransactions)
		transactions.GET("/count", h.CountTransactions)
	}
}

func setupTokenRoutes(r *gin.Engine, h *handlers.TokenHandler) {
	tokens := r.Group("/api/tokens")
	{
		tokens.GET("", h.ListTokens)
		tokens.GET("/:address", h.GetToken)
	}
	skip := r.Group("/api/skip-tokens")
	{
		skip.GET("", h.ListSkipTokens)
		skip.POST("", h.AddSkipToken)
		skip.DELETE("/:address", h.RemoveSkipToken)
	}
}

func setupWalletTokenRoutes(r *gin.Engine, h *handlers.WalletTokenHandler) {
	r.GET("/api/wallet-tokens", h.ListWalletTokenPairs)
	r.GET("/api/wallets/:wallet/tokens", h.GetWalletTokens)
	// the :address segment matches the /api/tokens tree above
	r.GET("/api/tokens/:address/wallets", h.GetTokenWallets)
}

func setupHoldingsRoutes(r *gin.Engine, h *handlers.HoldingsHandler) {
	r.GET("/api/wallets/:wallet/holdings", h.GetWalletHoldings)
}
