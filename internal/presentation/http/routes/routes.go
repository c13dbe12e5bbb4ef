package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tillbook-api/internal/config"
	domainRepo "github.com/sangkips/tillbook-api/internal/domain/repository"
	"github.com/sangkips/tillbook-api/internal/infrastructure/database"
	"github.com/sangkips/tillbook-api/internal/presentation/http/handler"
	"github.com/sangkips/tillbook-api/internal/presentation/http/middleware"
	"github.com/sangkips/tillbook-api/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth         *handler.AuthHandler
	Tenant       *handler.TenantHandler
	Receipt      *handler.ReceiptHandler
	Debt         *handler.DebtHandler
	Analytics    *handler.AnalyticsHandler
	Inventory    *handler.InventoryHandler
	Customer     *handler.CustomerHandler
	Notification *handler.NotificationHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.TenantRateLimiter
	Logger          *zap.Logger
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.RecoveryMiddleware(deps.Logger))
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, h)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		if deps.RateLimiter != nil {
			protected.Use(deps.RateLimiter.Middleware())
		}
		protected.Use(middleware.Idempotency(middleware.IdempotencyConfig{
			Repo:   deps.IdempotencyRepo,
			Logger: deps.Logger,
		}))

		registerProtectedRoutes(protected, h)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers) {
	protected.GET("/profile", h.Auth.GetProfile)
	protected.PUT("/profile/password", h.Auth.ChangePassword)

	registerTenantRoutes(protected, h)
	registerReceiptRoutes(protected, h)
	registerDebtRoutes(protected, h)
	registerInventoryRoutes(protected, h)
	registerCustomerRoutes(protected, h)

	protected.GET("/analytics/sales", middleware.RequirePermission(database.PermViewReports), h.Analytics.Sales)

	notifications := protected.Group("/notifications")
	{
		notifications.GET("", h.Notification.List)
		notifications.PATCH("/read", h.Notification.MarkAllRead)
		notifications.PATCH("/:id/read", h.Notification.MarkRead)
	}
}

func registerTenantRoutes(protected *gin.RouterGroup, h *Handlers) {
	tenant := protected.Group("/tenant")
	{
		tenant.GET("", h.Tenant.GetCurrentTenant)
		tenant.PUT("", middleware.RequirePermission(database.PermManageSettings), h.Tenant.UpdateTenant)

		members := tenant.Group("/members", middleware.RequirePermission(database.PermManageWorkers))
		members.GET("", h.Tenant.GetMembers)
		members.POST("", h.Tenant.AddWorker)
		members.GET("/:user_id", h.Tenant.GetMember)
	}
}

func registerReceiptRoutes(protected *gin.RouterGroup, h *Handlers) {
	receipts := protected.Group("/receipts")
	{
		manage := middleware.RequirePermission(database.PermManageReceipts)
		receipts.GET("", manage, h.Receipt.List)
		receipts.POST("", manage, h.Receipt.Create)
		receipts.GET("/:id", manage, h.Receipt.Get)
		receipts.PUT("/:id", manage, h.Receipt.Update)
		receipts.PATCH("/:id/flag", middleware.RequirePermission(database.PermFlagReceipts), h.Receipt.Flag)
		receipts.DELETE("/:id", middleware.RequirePermission(database.PermDeleteReceipts), h.Receipt.Delete)
	}
}

func registerDebtRoutes(protected *gin.RouterGroup, h *Handlers) {
	debts := protected.Group("/debts", middleware.RequirePermission(database.PermManageDebts))
	{
		debts.GET("", h.Debt.List)
		debts.POST("/:id/payments", h.Debt.Pay)
		debts.GET("/:id/payments", h.Debt.Payments)
	}
}

func registerInventoryRoutes(protected *gin.RouterGroup, h *Handlers) {
	inventory := protected.Group("/inventory")
	{
		// every worker can look items up at the till
		inventory.GET("", h.Inventory.List)
		inventory.GET("/:id", h.Inventory.Get)
		inventory.GET("/:id/conversions", h.Inventory.ListConversions)

		manage := inventory.Group("", middleware.RequirePermission(database.PermManageInventory))
		manage.POST("", h.Inventory.Create)
		manage.PUT("/:id", h.Inventory.Update)
		manage.DELETE("/:id", h.Inventory.Delete)
		manage.PUT("/:id/conversions", h.Inventory.SaveConversion)
		manage.DELETE("/:id/conversions/:conversion_id", h.Inventory.DeleteConversion)
		manage.POST("/:id/restock", h.Inventory.Restock)
		manage.POST("/:id/adjust", h.Inventory.Adjust)
		manage.GET("/:id/restocks", h.Inventory.RestockHistory)
		manage.GET("/:id/breakdowns", h.Inventory.BreakdownHistory)
		manage.POST("/:id/reorder", h.Inventory.Reorder)
	}
}

func registerCustomerRoutes(protected *gin.RouterGroup, h *Handlers) {
	customers := protected.Group("/customers", middleware.RequirePermission(database.PermManageCustomers))
	{
		customers.GET("", h.Customer.List)
		customers.POST("", h.Customer.Create)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
		customers.DELETE("/:id", h.Customer.Delete)
	}
}
