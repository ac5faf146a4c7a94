package router

import (
	"time"

	"stockroom/internal/config"
	"stockroom/internal/handler"
	"stockroom/internal/middleware"
	"stockroom/internal/policy"
	"stockroom/internal/repository"
	"stockroom/internal/service"
	"stockroom/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

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
	r.Use(middleware.RateLimiter(1000, time.Minute))

	// ── Infrastructure ───────────────────────────────────────────────────────
	dispatcher := worker.NewDispatcher(rdb)

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	mutationRepo := repository.NewStockMutationRepository(db)
	cardRepo := repository.NewStockCardRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	cache := service.NewProductCache(rdb)
	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo, cache)
	ledgerSvc := service.NewLedgerService(productRepo, mutationRepo, cardRepo, cache,
		dispatcher, cfg.AlertEmail, cfg.LowStockThreshold)
	cardSvc := service.NewStockCardService(cardRepo, productRepo, cache, cfg.StockCardDeletePolicy)
	orderSvc := service.NewOrderService(orderRepo, productRepo, ledgerSvc, cache, cfg.OrderNumberPrefix)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	mutationsH := handler.NewStockMutationsHandler(ledgerSvc)
	cardsH := handler.NewStockCardsHandler(cardSvc)
	ordersH := handler.NewOrdersHandler(orderSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb))

	api := r.Group("/api/v1")

	// Public auth surface
	auth := api.Group("/auth")
	{
		auth.POST("/register", authH.Register)
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes — JWT first, then per-route action authorization.
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := api.Group("", jwtMW)
	{
		v1.GET("/profile", authH.Profile)
		v1.PUT("/profile", authH.UpdateProfile)

		products := v1.Group("/products")
		{
			products.GET("", middleware.Authorize(policy.ProductRead), productsH.List)
			products.GET("/:id", middleware.Authorize(policy.ProductRead), productsH.Get)
			products.GET("/code/:code", middleware.Authorize(policy.ProductRead), productsH.GetByCode)
			products.POST("", middleware.Authorize(policy.ProductWrite), productsH.Create)
			products.PUT("/:id", middleware.Authorize(policy.ProductWrite), productsH.Update)
			products.DELETE("/:id", middleware.Authorize(policy.ProductWrite), productsH.Delete)

			products.GET("/:id/mutations", middleware.Authorize(policy.StockMutationRead), mutationsH.ListByProduct)
			products.GET("/:id/stock-cards", middleware.Authorize(policy.StockMutationRead), cardsH.ListByProduct)
		}

		mutations := v1.Group("/stock-mutations")
		{
			// Append-only: no PUT or DELETE routes exist for the ledger.
			mutations.GET("", middleware.Authorize(policy.StockMutationRead), mutationsH.List)
			mutations.GET("/:id", middleware.Authorize(policy.StockMutationRead), mutationsH.Get)
			mutations.POST("", middleware.Authorize(policy.StockMutationRecord), mutationsH.Record)
		}

		cards := v1.Group("/stock-cards", middleware.Authorize(policy.StockCardManage))
		{
			cards.GET("", cardsH.List)
			cards.GET("/:id", cardsH.Get)
			cards.POST("", cardsH.Create)
			cards.PUT("/:id", cardsH.Update)
			cards.DELETE("/:id", cardsH.Delete)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("", middleware.Authorize(policy.OrderCreate), ordersH.Create)
			orders.GET("", middleware.Authorize(policy.OrderRead), ordersH.List)
			orders.GET("/mine", middleware.Authorize(policy.OrderRead), ordersH.ListMine)
			orders.GET("/:id", middleware.Authorize(policy.OrderRead), ordersH.Get)
			orders.PATCH("/:id/status", middleware.Authorize(policy.OrderUpdateStatus), ordersH.UpdateStatus)
		}

		users := v1.Group("/users", middleware.Authorize(policy.UserManage))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
