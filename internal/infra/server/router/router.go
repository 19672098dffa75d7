// Package router sets up the HTTP routing for the application.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/finance-tracker/wallet-ledger/internal/integration/entrypoint/controller"
	"github.com/finance-tracker/wallet-ledger/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine                *gin.Engine
	healthController      *controller.HealthController
	walletController      *controller.WalletController
	transactionController *controller.TransactionController
	statisticsController  *controller.StatisticsController
	writeRateLimiter      *middleware.RateLimiter
	authMiddleware        *middleware.AuthMiddleware
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(
	healthController *controller.HealthController,
	walletController *controller.WalletController,
	transactionController *controller.TransactionController,
	statisticsController *controller.StatisticsController,
	writeRateLimiter *middleware.RateLimiter,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		healthController:      healthController,
		walletController:      walletController,
		transactionController: transactionController,
		statisticsController:  statisticsController,
		writeRateLimiter:      writeRateLimiter,
		authMiddleware:        authMiddleware,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	// Set Gin mode based on environment
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	// Create router with default middleware (logger and recovery)
	r.engine = gin.Default()

	// Setup routes
	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// setupHealthRoutes configures health check endpoints.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
}

// setupAPIRoutes configures the main API routes.
func (r *Router) setupAPIRoutes() {
	if r.authMiddleware == nil {
		return
	}

	v1 := r.engine.Group("/api/v1")
	v1.Use(r.authMiddleware.Authenticate())

	// Wallet routes
	if r.walletController != nil {
		wallets := v1.Group("/wallets")
		{
			wallets.GET("", r.walletController.List)
			wallets.GET("/summary", r.walletController.Summary)
			wallets.GET("/:id", r.walletController.Get)
			wallets.POST("", r.write(r.walletController.Create)...)
			wallets.PATCH("/:id", r.write(r.walletController.Update)...)
			wallets.DELETE("/:id", r.write(r.walletController.Delete)...)
		}
	}

	// Transaction routes
	if r.transactionController != nil {
		transactions := v1.Group("/transactions")
		{
			transactions.GET("", r.transactionController.List)
			transactions.GET("/:id", r.transactionController.Get)
			transactions.POST("", r.write(r.transactionController.Create)...)
			transactions.PATCH("/:id", r.write(r.transactionController.Update)...)
			transactions.DELETE("/:id", r.write(r.transactionController.Delete)...)
		}
	}

	// Statistics routes
	if r.statisticsController != nil {
		v1.GET("/statistics/:window", r.statisticsController.Fetch)
	}
}

// write prepends the rate limiter to a handler of a mutating route.
func (r *Router) write(handler gin.HandlerFunc) []gin.HandlerFunc {
	if r.writeRateLimiter == nil {
		return []gin.HandlerFunc{handler}
	}
	return []gin.HandlerFunc{r.writeRateLimiter.Middleware(), handler}
}

// Engine returns the underlying Gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
