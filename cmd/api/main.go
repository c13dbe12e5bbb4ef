package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/tillbook-api/internal/application/service"
	"github.com/sangkips/tillbook-api/internal/config"
	"github.com/sangkips/tillbook-api/internal/infrastructure/database"
	"github.com/sangkips/tillbook-api/internal/infrastructure/repository"
	"github.com/sangkips/tillbook-api/internal/presentation/http/handler"
	"github.com/sangkips/tillbook-api/internal/presentation/http/middleware"
	"github.com/sangkips/tillbook-api/internal/presentation/http/routes"
	"github.com/sangkips/tillbook-api/pkg/logger"
	"github.com/sangkips/tillbook-api/pkg/utils"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(&cfg.Database, zl)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := database.AutoMigrate(db, zl); err != nil {
		zl.Fatal("failed to run migrations", zap.Error(err))
	}

	if err := database.SeedDefaultData(db, zl); err != nil {
		zl.Warn("failed to seed default data", zap.Error(err))
	}

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	tx := repository.NewTxManager(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	conversionRepo := repository.NewUnitConversionRepository(db)
	historyRepo := repository.NewInventoryHistoryRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	receiptRepo := repository.NewReceiptRepository(db)
	debtRepo := repository.NewDebtRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize services
	resolver := service.NewUnitConversionResolver(conversionRepo, inventoryRepo, historyRepo)
	ledger := service.NewInventoryLedger(inventoryRepo, historyRepo, notificationRepo)

	authService := service.NewAuthService(tx, userRepo, roleRepo, tenantRepo, jwtManager)
	tenantService := service.NewTenantService(tx, tenantRepo, userRepo)
	receiptService := service.NewReceiptService(
		tx, receiptRepo, customerRepo, tenantRepo, inventoryRepo, debtRepo, resolver, ledger,
		service.ReceiptOptions{
			DeleteRestoresStock: cfg.Receipts.DeleteRestoresStock,
			UnpaidThreshold:     cfg.Receipts.UnpaidThreshold,
		},
		zl.Named("receipts"),
	)
	debtService := service.NewDebtService(tx, debtRepo, receiptRepo, customerRepo, cfg.Receipts.SettleEpsilon)
	queryService := service.NewReceiptQueryService(receiptRepo, debtRepo, analyticsRepo, cfg.Receipts.UnpaidThreshold)
	inventoryService := service.NewInventoryService(tx, inventoryRepo, conversionRepo, historyRepo, analyticsRepo, ledger)
	customerService := service.NewCustomerService(customerRepo)
	notificationService := service.NewNotificationService(notificationRepo)

	handlers := &routes.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Tenant:       handler.NewTenantHandler(tenantService),
		Receipt:      handler.NewReceiptHandler(receiptService, queryService),
		Debt:         handler.NewDebtHandler(debtService, queryService),
		Analytics:    handler.NewAnalyticsHandler(queryService),
		Inventory:    handler.NewInventoryHandler(inventoryService),
		Customer:     handler.NewCustomerHandler(customerService),
		Notification: handler.NewNotificationHandler(notificationService),
	}

	stop := make(chan struct{})
	rateLimiter := middleware.NewTenantRateLimiter(middleware.RateLimiterConfigFor(cfg.RateLimit.Requests, cfg.RateLimit.Duration))
	go rateLimiter.Run(5*time.Minute, stop)
	go purgeIdempotencyKeys(idempotencyRepo, zl, time.Hour, stop)

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
		Logger:          zl,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("starting server", zap.String("name", cfg.App.Name), zap.String("port", port), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	close(stop)

	zl.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}
}

type expiredKeyPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

func purgeIdempotencyKeys(repo expiredKeyPurger, log *zap.Logger, every time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := repo.DeleteExpired(context.Background())
			if err != nil {
				log.Warn("failed to purge idempotency keys", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Debug("purged idempotency keys", zap.Int64("count", n))
			}
		case <-stop:
			return
		}
	}
}
