package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medlane/pharmacare-api/internal/application/service"
	"github.com/medlane/pharmacare-api/internal/config"
	"github.com/medlane/pharmacare-api/internal/infrastructure/cache"
	"github.com/medlane/pharmacare-api/internal/infrastructure/database"
	"github.com/medlane/pharmacare-api/internal/infrastructure/repository"
	"github.com/medlane/pharmacare-api/internal/presentation/http/handler"
	"github.com/medlane/pharmacare-api/internal/presentation/http/routes"
	"github.com/medlane/pharmacare-api/pkg/oauth"
	"github.com/medlane/pharmacare-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Analytics windows resolve in the store's timezone
	loc, err := time.LoadLocation(cfg.Analytics.Timezone)
	if err != nil {
		log.Printf("Warning: unknown timezone %q, falling back to UTC: %v", cfg.Analytics.Timezone, err)
		loc = time.UTC
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	storeRepo := repository.NewStoreRepository(db)
	userRepo := repository.NewUserRepository(db)
	medicineRepo := repository.NewMedicineRepository(db)
	stockRepo := repository.NewStockRepository(db)
	billingRepo := repository.NewBillingRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db, cfg.Analytics.Timezone)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize analytics cache
	analyticsCache := cache.NewAnalyticsCache(cfg.Analytics.CacheTTL)
	defer analyticsCache.Stop()

	// Initialize Google OAuth service
	googleOAuthService := oauth.NewGoogleOAuthService(oauth.GoogleOAuthConfig{
		ClientID:           cfg.OAuth.GoogleClientID,
		ClientSecret:       cfg.OAuth.GoogleClientSecret,
		RedirectURL:        cfg.OAuth.GoogleRedirectURL,
		FrontendSuccessURL: cfg.OAuth.FrontendSuccessURL,
		FrontendErrorURL:   cfg.OAuth.FrontendErrorURL,
	})

	// Initialize services
	authService := service.NewAuthService(userRepo, storeRepo, jwtManager, googleOAuthService)
	storeService := service.NewStoreService(storeRepo, userRepo)
	medicineService := service.NewMedicineService(medicineRepo, stockRepo)
	stockService := service.NewStockService(stockRepo, medicineRepo)
	billingService := service.NewBillingService(billingRepo, medicineRepo, stockRepo)
	analyticsService := service.NewAnalyticsService(analyticsRepo, analyticsCache, loc)
	dashboardService := service.NewDashboardService(medicineRepo, stockRepo, billingRepo, analyticsRepo, loc)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Store:     handler.NewStoreHandler(storeService),
		Medicine:  handler.NewMedicineHandler(medicineService),
		Stock:     handler.NewStockHandler(stockService),
		Billing:   handler.NewBillingHandler(billingService),
		Analytics: handler.NewAnalyticsHandler(analyticsService, cfg.Analytics.QueryTimeout),
		Dashboard: handler.NewDashboardHandler(dashboardService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
		log.Printf("Environment: %s", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt, then drain in-flight requests
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
