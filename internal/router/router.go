package router

import (
	"time"

	"calhaforte/internal/config"
	"calhaforte/internal/handler"
	"calhaforte/internal/infra"
	"calhaforte/internal/middleware"
	"calhaforte/internal/model"
	"calhaforte/internal/repository"
	"calhaforte/internal/service"
	"calhaforte/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps bundles the long-lived collaborators built in main so the router stays
// a pure wiring function.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	RDB      *redis.Client
	Renderer *infra.RendererClient
	Mailer   *infra.Mailer
}

// Services are handed back to main so it can start the background goroutines
// (worker pool, stock sweep) and seed settings on first boot.
type Services struct {
	Settings  service.SettingsService
	Inventory service.InventoryService
	Pool      *worker.Pool
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(d Deps) (*gin.Engine, *Services) {
	cfg := d.Config
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(d.DB)
	quoteRepo := repository.NewQuoteRepository(d.DB)
	inventoryRepo := repository.NewInventoryRepository(d.DB)
	financialRepo := repository.NewFinancialRepository(d.DB)
	activityRepo := repository.NewActivityRepository(d.DB)
	settingsRepo := repository.NewSettingsRepository(d.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	settingsSvc := service.NewSettingsService(settingsRepo, d.RDB)
	inventorySvc := service.NewInventoryService(inventoryRepo, settingsSvc)
	quoteSvc := service.NewQuoteService(quoteRepo, activityRepo, settingsSvc, d.Renderer)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(d.RDB)
	statusSvc := service.NewStatusService(quoteRepo, financialRepo, activityRepo, inventorySvc, dispatcher)

	pool := worker.NewPool(d.RDB)
	pool.Register("status_change", worker.NewNotifyWorker(d.Mailer, cfg.AlertEmail))

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	quotesH := handler.NewQuotesHandler(quoteSvc, statusSvc)
	profileH := handler.NewProfileHandler(quoteSvc)
	inventoryH := handler.NewInventoryHandler(inventorySvc)
	settingsH := handler.NewSettingsHandler(settingsSvc)
	usersH := handler.NewUsersHandler(authSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.DB, d.RDB, d.Renderer, pool))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(authSvc)
	v1 := r.Group("/v1", jwtMW)
	{
		anyRole := middleware.RequireRole(model.RoleCustomer, model.RoleStaff, model.RoleAdmin)
		staffUp := middleware.RequireRole(model.RoleStaff, model.RoleAdmin)
		adminOnly := middleware.RequireRole(model.RoleAdmin)

		// Quotes — submission and reads open to everyone authenticated;
		// ownership scoping happens in the service layer.
		v1.POST("/quotes", anyRole, quotesH.Submit)
		v1.GET("/quotes", anyRole, quotesH.List)
		v1.GET("/quotes/:id", anyRole, quotesH.Get)
		v1.POST("/quotes/manual", adminOnly, quotesH.ManualCreate)
		// Status changes gate per-role inside the service (customers may only
		// cancel their own pending quote).
		v1.PATCH("/quotes/:id/status", anyRole, quotesH.ChangeStatus)
		v1.POST("/quotes/:id/discount", adminOnly, quotesH.ApplyDiscount)
		v1.POST("/quotes/:id/payment-proof", anyRole, quotesH.AttachPaymentProof)

		v1.POST("/profile/preview", anyRole, profileH.Preview)

		inv := v1.Group("/inventory")
		{
			inv.GET("/batches", staffUp, inventoryH.ListBatches)
			inv.POST("/batches", adminOnly, inventoryH.AddBatches)
			inv.DELETE("/batches/:id", adminOnly, inventoryH.DeleteBatch)
			inv.GET("/movements", staffUp, inventoryH.ListMovements)
			inv.GET("/alerts", staffUp, inventoryH.StockAlert)
		}

		v1.GET("/settings", staffUp, settingsH.Get)
		v1.PATCH("/settings", adminOnly, settingsH.Update)

		users := v1.Group("/users", adminOnly)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PATCH("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, &Services{
		Settings:  settingsSvc,
		Inventory: inventorySvc,
		Pool:      pool,
	}
}
