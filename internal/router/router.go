package router

import (
	"time"

	"github.com/T0MGL/0rdefy-sub002/internal/config"
	"github.com/T0MGL/0rdefy-sub002/internal/handler"
	"github.com/T0MGL/0rdefy-sub002/internal/middleware"
	"github.com/T0MGL/0rdefy-sub002/internal/repository"
	"github.com/T0MGL/0rdefy-sub002/internal/service"
	"github.com/T0MGL/0rdefy-sub002/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
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
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	sequenceRepo := repository.NewSequenceRepository(db)
	settlementRepo := repository.NewSettlementRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	refgen := service.NewReferenceGenerator(sequenceRepo, cfg.ReferenceSequenceCap)
	engine := service.NewStockEngine(productRepo, orderRepo, movementRepo)
	orderSvc := service.NewOrderService(orderRepo, customerRepo, engine)
	productSvc := service.NewProductService(productRepo)
	resolver := service.NewCatalogResolver(productRepo)
	settlementSvc := service.NewSettlementService(orderRepo, settlementRepo, customerRepo, engine, refgen, cfg)
	reconSvc := service.NewReconciliationService(productRepo, orderRepo, movementRepo, customerRepo)
	sessionSvc := service.NewSessionService(sessionRepo, orderRepo, refgen)

	// Worker dispatcher — injected into handlers that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Handlers ─────────────────────────────────────────────────────────────
	ordersH := handler.NewOrderHandler(orderSvc, engine)
	productsH := handler.NewProductHandler(productSvc, resolver)
	inventoryH := handler.NewInventoryHandler(engine, movementRepo)
	settlementsH := handler.NewSettlementHandler(settlementSvc)
	reconH := handler.NewReconciliationHandler(reconSvc, dispatcher)
	sessionsH := handler.NewSessionHandler(sessionSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		orders := v1.Group("/orders")
		{
			orders.POST("", middleware.RequireRole("operator", "admin"), ordersH.Create)
			orders.GET("", middleware.RequireRole("viewer", "operator", "admin"), ordersH.List)
			orders.GET("/:id", middleware.RequireRole("viewer", "operator", "admin"), ordersH.Get)
			orders.POST("/:id/transition", middleware.RequireRole("operator", "admin"), ordersH.Transition)
			orders.GET("/:id/availability", middleware.RequireRole("viewer", "operator", "admin"), ordersH.Availability)
			orders.PUT("/:id/items", middleware.RequireRole("operator", "admin"), ordersH.UpdateLineItems)
			// Hard delete — admin only; ?force=true restores deducted stock first
			orders.DELETE("/:id", middleware.RequireRole("admin"), ordersH.Delete)
		}

		products := v1.Group("/products")
		{
			products.GET("", middleware.RequireRole("viewer", "operator", "admin"), productsH.List)
			products.GET("/:id", middleware.RequireRole("viewer", "operator", "admin"), productsH.Get)
			products.POST("/resolve", middleware.RequireRole("operator", "admin"), productsH.Resolve)
			products.POST("", middleware.RequireRole("admin"), productsH.Create)
			products.DELETE("/:id", middleware.RequireRole("admin"), productsH.Deactivate)
			products.POST("/:id/variants", middleware.RequireRole("admin"), productsH.CreateVariant)
			products.PATCH("/:id/stock", middleware.RequireRole("operator", "admin"), inventoryH.AdjustStock)
			products.POST("/:id/receipts", middleware.RequireRole("operator", "admin"), inventoryH.ReceiveStock)
		}

		inv := v1.Group("/inventory", middleware.RequireRole("viewer", "operator", "admin"))
		{
			inv.GET("/movements", inventoryH.ListMovements)
		}

		settlements := v1.Group("/settlements", middleware.RequireRole("operator", "admin"))
		{
			settlements.POST("/reconcile", settlementsH.Reconcile)
			settlements.GET("", settlementsH.List)
			settlements.GET("/:id", settlementsH.Get)
		}

		recon := v1.Group("/reconciliation", middleware.RequireRole("admin"))
		{
			recon.GET("/discrepancies", reconH.Discrepancies)
			recon.GET("/unmapped-items", reconH.UnmappedLineItems)
			recon.POST("/recalculate", reconH.RecalculateStock)
			recon.POST("/customers/repair", reconH.RepairCustomers)
		}

		sessions := v1.Group("/picking-sessions", middleware.RequireRole("operator", "admin"))
		{
			sessions.POST("", sessionsH.Create)
			sessions.GET("", sessionsH.List)
			sessions.GET("/:id", sessionsH.Get)
			sessions.POST("/:id/close", sessionsH.Close)
		}
	}

	return r
}
