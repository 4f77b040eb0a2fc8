package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medlane/pharmacare-api/internal/config"
	"github.com/medlane/pharmacare-api/internal/domain/entity"
	domainRepo "github.com/medlane/pharmacare-api/internal/domain/repository"
	"github.com/medlane/pharmacare-api/internal/presentation/http/handler"
	"github.com/medlane/pharmacare-api/internal/presentation/http/middleware"
	"github.com/medlane/pharmacare-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth      *handler.AuthHandler
	Store     *handler.StoreHandler
	Medicine  *handler.MedicineHandler
	Stock     *handler.StockHandler
	Billing   *handler.BillingHandler
	Analytics *handler.AnalyticsHandler
	Dashboard *handler.DashboardHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		registerAuthRoutes(v1, h)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		// Per-store rate limiter
		rateLimiter := middleware.NewStoreRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/refresh", h.Auth.RefreshToken)
		// Google OAuth routes
		auth.GET("/google", h.Auth.GoogleLogin)
		auth.GET("/google/callback", h.Auth.GoogleCallback)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	// Auth/Profile routes
	protected.POST("/auth/logout", h.Auth.Logout)
	protected.GET("/profile", h.Auth.GetProfile)
	protected.PUT("/profile/password", h.Auth.ChangePassword)

	// Dashboard
	protected.GET("/dashboard/stats", h.Dashboard.GetStats)

	// Store profile and staff
	registerStoreRoutes(protected, h)

	// Medicines and stock intake
	registerMedicineRoutes(protected, h)

	// Stock ledger
	registerStockRoutes(protected, h)

	// Billings
	registerBillingRoutes(protected, h, deps)

	// Analytics
	registerAnalyticsRoutes(protected, h)
}

func registerStoreRoutes(protected *gin.RouterGroup, h *Handlers) {
	store := protected.Group("/store")
	{
		store.GET("", h.Store.GetStore)
		store.PUT("", middleware.RequireRole(entity.RoleOwner), h.Store.UpdateStore)
		store.POST("/staff", middleware.RequireRole(entity.RoleOwner), h.Store.AddStaff)
	}
}

func registerMedicineRoutes(protected *gin.RouterGroup, h *Handlers) {
	medicines := protected.Group("/medicines")
	{
		medicines.GET("", h.Medicine.ListMedicines)
		medicines.POST("", h.Medicine.CreateMedicine)
		medicines.GET("/:id", h.Medicine.GetMedicine)
		medicines.PUT("/:id", h.Medicine.UpdateMedicine)
		medicines.DELETE("/:id", h.Medicine.DeleteMedicine)
		medicines.GET("/:id/stock", h.Medicine.GetMedicineStock)
		medicines.POST("/:id/stock", h.Stock.AddStock)
	}
}

func registerStockRoutes(protected *gin.RouterGroup, h *Handlers) {
	stock := protected.Group("/stock")
	{
		stock.GET("/expiring", h.Stock.ListExpiring)
		stock.PATCH("/:id", h.Stock.AdjustStock)
		stock.DELETE("/:id", h.Stock.RemoveStock)
	}
}

func registerBillingRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	billings := protected.Group("/billings")
	{
		billings.GET("", h.Billing.ListBillings)
		// Billing creation uses idempotency middleware so a retried checkout
		// never deducts stock twice
		billings.POST("", middleware.IdempotencyRequired(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		}), h.Billing.CreateBilling)
		billings.GET("/:id", h.Billing.GetBilling)
	}
}

func registerAnalyticsRoutes(protected *gin.RouterGroup, h *Handlers) {
	analytics := protected.Group("/analytics")
	{
		analytics.GET("/sales", h.Analytics.GetSalesAnalytics)
		analytics.GET("/top-selling", h.Analytics.GetTopSelling)
	}
}
