// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"shoptill/internal/domain/auth"
	"shoptill/internal/domain/billing"
	"shoptill/internal/domain/catalog"
	"shoptill/internal/domain/pricing"
	"shoptill/internal/infrastructure/http/v1/handlers"
	"shoptill/internal/infrastructure/http/v1/middleware"
	"shoptill/internal/infrastructure/storage/postgres"
	"shoptill/internal/render"
	"shoptill/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Pool *postgres.Pool

	Logger *logger.Logger

	JWTValidator middleware.JWTValidator
	AuthService  *auth.Service

	CatalogService *catalog.Service
	Mirror         *catalog.Mirror

	Drafts         *billing.DraftStore
	BillingService *billing.Service
	Rules          *pricing.Engine
	Receipt        *render.Receipt
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()

	// API v1
	api := router.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(base, cfg.AuthService)
		api.POST("/auth/login", authHandler.Login)

		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		protected.POST("/auth/change-pin", authHandler.ChangePIN)
		protected.POST("/auth/operators", middleware.RequireManager(), authHandler.CreateOperator)

		// Catalog
		itemHandler := handlers.NewItemHandler(base, cfg.CatalogService, cfg.Mirror)
		items := protected.Group("/items")
		{
			items.GET("", itemHandler.List)
			items.GET("/low-stock", itemHandler.LowStock)
			items.GET("/:id", itemHandler.Get)
			items.POST("", itemHandler.Create)
			items.PUT("/:id", itemHandler.Update)
			items.DELETE("/:id", itemHandler.Delete)
			items.POST("/:id/restock", itemHandler.Restock)
			items.PUT("/:id/price", itemHandler.Reprice)
		}

		// Register (the till)
		registerHandler := handlers.NewRegisterHandler(base, cfg.Drafts, cfg.Mirror, cfg.BillingService, cfg.Rules)
		register := protected.Group("/register/draft")
		{
			register.GET("", registerHandler.Get)
			register.DELETE("", registerHandler.Reset)
			register.POST("/lines", registerHandler.AddLine)
			register.PUT("/lines/price", registerHandler.SetLinePrice)
			register.DELETE("/lines", registerHandler.RemoveLine)
			register.PUT("/discount", registerHandler.SetDiscount)
			register.PUT("/cash", registerHandler.SetCash)
			register.POST("/finalize", registerHandler.Finalize)
		}

		// Bills
		billHandler := handlers.NewBillHandler(base, cfg.BillingService, cfg.Receipt)
		bills := protected.Group("/bills")
		{
			bills.GET("/credit", billHandler.ListCredit)
			bills.GET("/:number", billHandler.Get)
			bills.GET("/:number/receipt", billHandler.Receipt)
			bills.POST("/:number/settle", middleware.RequireManager(), billHandler.Settle)
			bills.DELETE("/:number", middleware.RequireManager(), billHandler.Void)
		}
	}

	return router
}
