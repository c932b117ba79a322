package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deposito-pos/internal/dashboard"
	"deposito-pos/internal/events"
	"deposito-pos/internal/handler"
	"deposito-pos/internal/middleware"
	"deposito-pos/internal/model"
	"deposito-pos/internal/repository"
	"deposito-pos/internal/service"
	"deposito-pos/internal/ws"
	"deposito-pos/pkg/config"
	"deposito-pos/pkg/database"
	"deposito-pos/pkg/jwt"
	applog "deposito-pos/pkg/logger"
	"deposito-pos/pkg/ratelimit"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// 1. Load Env
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	applog.New(applog.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	if envErr != nil {
		log.Warn().Msg(".env file not found, relying on system env")
	}
	loc := cfg.App.Location()

	// 2. Setup Database
	db, err := database.Connect(cfg.DB, cfg.App.Timezone, cfg.App.Env)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if err := db.AutoMigrate(&model.Account{}, &model.Category{}, &model.Product{}, &model.Sale{}); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run(ctx)

	// 4. Optional infrastructure
	var limiter service.LoginLimiter = ratelimit.Noop{}
	var pingRedis service.Pinger
	if cfg.Redis.Addr != "" {
		rl := ratelimit.New(ratelimit.NewClient(cfg.Redis.Addr), cfg.Redis.LoginMaxAttempts, cfg.Redis.LoginWindow)
		limiter, pingRedis = rl, rl.Ping
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.SalesTopic)
	}
	if !cfg.Sales.AtomicStock {
		log.Warn().Msg("SALES_ATOMIC_STOCK=false: a failed stock write leaves the sale recorded and stock unchanged")
	}

	// 5. Dependency Injection (Wiring Layers)
	accountRepo := repository.NewAccountRepo(db)
	productRepo := repository.NewProductRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	txRunner := repository.NewTxRunner(db)

	feeds := service.NewFeeds()
	snapshots := service.NewSnapshotter(saleRepo, productRepo, feeds)
	snapshots.RefreshAll(ctx)

	reducer := dashboard.NewReducer(feeds.Sales, feeds.Products, wsHub, loc)
	go reducer.Run(ctx)

	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.ExpirationHours)*time.Hour)

	authService := service.NewAuthService(accountRepo, tokens, limiter, wsHub, service.AuthConfig{IdleTimeout: cfg.Session.IdleTimeout})
	accountService := service.NewAccountService(accountRepo, authService, wsHub)
	productService := service.NewProductService(productRepo, snapshots, wsHub)
	categoryService := service.NewCategoryService(categoryRepo)
	saleService := service.NewSaleService(saleRepo, productRepo, txRunner, snapshots, wsHub, publisher, service.SaleConfig{
		AtomicStock: cfg.Sales.AtomicStock,
		ShopName:    cfg.App.Name,
		Location:    loc,
	})
	reportService := service.NewReportService(saleRepo, productRepo, loc)
	dashService := service.NewDashboardService(saleRepo, productRepo, loc)
	setupService := service.NewSetupService(service.SetupDeps{
		Accounts:   accountRepo,
		Categories: categoryRepo,
		Products:   productRepo,
		Sales:      saleRepo,
		Auth:       authService,
		Snapshots:  snapshots,
		PingDB:     database.Pinger(db),
		PingRedis:  pingRedis,
		Kafka:      cfg.Kafka.Brokers,
	})

	authHandler := handler.NewAuthHandler(authService)
	accountHandler := handler.NewAccountHandler(accountService)
	productHandler := handler.NewProductHandler(productService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	saleHandler := handler.NewSaleHandler(saleService, loc)
	reportHandler := handler.NewReportHandler(reportService, loc)
	dashHandler := handler.NewDashboardHandler(dashService, reducer)
	setupHandler := handler.NewSetupHandler(setupService)
	roleHandler := handler.NewRoleHandler()

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.App.Name,
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/validate-token", authHandler.ValidateToken)
	api.Post("/setup", setupHandler.Run)
	api.Get("/diagnostics", setupHandler.Diagnostics)

	// ============ PROTECTED ROUTES ============
	requireAuth := middleware.RequireAuth(authService)
	auth.Post("/heartbeat", requireAuth, authHandler.Heartbeat)
	auth.Post("/logout", requireAuth, authHandler.Logout)
	auth.Post("/change-password", requireAuth, authHandler.ChangePassword)

	protected := api.Group("", requireAuth)

	// Dashboard Routes
	protected.Get("/dashboard/metrics", middleware.RequirePrivilege(model.PrivDashboardView), dashHandler.GetMetrics)
	protected.Get("/dashboard/live", middleware.RequirePrivilege(model.PrivDashboardView), dashHandler.GetLiveMetrics)

	// Product Routes
	protected.Get("/products", middleware.RequirePrivilege(model.PrivProductView), productHandler.GetProducts)
	protected.Get("/products/low-stock", middleware.RequirePrivilege(model.PrivProductView), productHandler.GetLowStock)
	protected.Get("/products/:id", middleware.RequirePrivilege(model.PrivProductView), productHandler.GetProduct)
	protected.Post("/products", middleware.RequirePrivilege(model.PrivProductCreate), productHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege(model.PrivProductUpdate), productHandler.UpdateProduct)
	protected.Patch("/products/:id", middleware.RequirePrivilege(model.PrivProductUpdate), productHandler.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequirePrivilege(model.PrivProductDelete), productHandler.DeleteProduct)

	// Category Routes
	protected.Get("/categories", middleware.RequirePrivilege(model.PrivCategoryView), categoryHandler.GetCategories)
	protected.Post("/categories", middleware.RequirePrivilege(model.PrivCategoryManage), categoryHandler.CreateCategory)
	protected.Delete("/categories/:id", middleware.RequirePrivilege(model.PrivCategoryManage), categoryHandler.DeleteCategory)

	// Sale Routes
	protected.Get("/sales", middleware.RequirePrivilege(model.PrivSaleView), saleHandler.GetSales)
	protected.Get("/sales/:id", middleware.RequirePrivilege(model.PrivSaleView), saleHandler.GetSale)
	protected.Get("/sales/:id/receipt", middleware.RequirePrivilege(model.PrivSaleView), saleHandler.Receipt)
	protected.Post("/sales", middleware.RequirePrivilege(model.PrivSaleCreate), saleHandler.CreateSale)
	protected.Patch("/sales/:id/status", middleware.RequirePrivilege(model.PrivSaleUpdate), saleHandler.UpdateStatus)
	protected.Delete("/sales/:id", middleware.RequirePrivilege(model.PrivSaleDelete), saleHandler.DeleteSale)

	// Report Routes
	protected.Get("/reports/summary", middleware.RequirePrivilege(model.PrivReportView), reportHandler.GetSummary)
	protected.Get("/reports/export", middleware.RequirePrivilege(model.PrivReportView), reportHandler.Export)

	// Account Management Routes (admin only)
	protected.Get("/users", middleware.RequirePrivilege(model.PrivUserView), accountHandler.GetAccounts)
	protected.Get("/users/:id", middleware.RequirePrivilege(model.PrivUserView), accountHandler.GetAccount)
	protected.Post("/users", middleware.RequirePrivilege(model.PrivUserCreate), accountHandler.CreateAccount)
	protected.Put("/users/:id", middleware.RequirePrivilege(model.PrivUserUpdate), accountHandler.UpdateAccount)
	protected.Patch("/users/:id/toggle", middleware.RequirePrivilege(model.PrivUserUpdate), accountHandler.ToggleActive)
	protected.Delete("/users/:id", middleware.RequirePrivilege(model.PrivUserDelete), accountHandler.DeleteAccount)

	// Roles and privileges
	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/privileges", roleHandler.GetPrivileges)

	// WebSocket Route
	app.Use("/ws", handler.RequireUpgrade)
	app.Get("/ws", middleware.RequireQueryToken(authService), handler.Live(wsHub))

	// 8. Graceful Shutdown
	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr()).Msg("listening")
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Panic().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	stop()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := publisher.Close(); err != nil {
		log.Error().Err(err).Msg("close event publisher")
	}

	log.Info().Msg("Server exited")
}
