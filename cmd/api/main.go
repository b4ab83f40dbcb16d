package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-retail-pos/internal/cache"
	"go-retail-pos/internal/config"
	"go-retail-pos/internal/handler"
	"go-retail-pos/internal/middleware"
	"go-retail-pos/internal/model"
	"go-retail-pos/internal/notify"
	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/service"
	"go-retail-pos/internal/ws"
	"go-retail-pos/pkg/database"
	"go-retail-pos/pkg/jwt"
	applogger "go-retail-pos/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	cfg := config.Load()

	// 2. Setup Database
	db := database.Connect(cfg.DatabaseURL)
	// Auto Migrate (use a dedicated migration tool for production rollouts)
	db.AutoMigrate(
		&model.Branch{},
		&model.Employee{},
		&model.Customer{},
		&model.Product{},
		&model.Variant{},
		&model.StockEntry{},
		&model.StockTransfer{},
		&model.Bill{},
		&model.BillItem{},
		&model.BillSequence{},
		&model.Commission{},
	)

	// 3. Seed default branch and admin employee
	seedBranchAndAdmin(db, cfg)

	// 4. Product cache: Redis when reachable, in-process noop otherwise
	var productCache cache.ProductCache = cache.NoopProductCache{}
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisProductCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := redisCache.Ping(ctx); err != nil {
			applogger.Get().WithError(err).Warn("redis unreachable, product cache disabled")
			redisCache.Close()
		} else {
			productCache = redisCache
			defer redisCache.Close()
		}
		cancel()
	}

	// 5. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 6. Dependency Injection (Wiring Layers)
	branchRepo := repository.NewBranchRepo(db)
	employeeRepo := repository.NewEmployeeRepo(db)
	customerRepo := repository.NewCustomerRepo(db)
	productRepo := repository.NewProductRepo(db)
	stockRepo := repository.NewStockRepo(db)
	billRepo := repository.NewBillRepo(db)
	commissionRepo := repository.NewCommissionRepo(db)

	tokens := jwt.NewManager(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)
	txRunner := repository.NewTxRunner(db, time.Duration(cfg.TxTimeoutSeconds)*time.Second)

	authService := service.NewAuthService(employeeRepo, tokens)
	catalogService := service.NewCatalogService(productRepo, productCache, wsHub)
	stockService := service.NewStockService(txRunner, stockRepo, productRepo, branchRepo, wsHub)
	commissionService := service.NewCommissionService(txRunner, commissionRepo, billRepo, employeeRepo)
	billingService := service.NewBillingService(
		txRunner, productRepo, stockRepo, billRepo, customerRepo, employeeRepo, branchRepo,
		commissionService,
		service.BillingPolicy{LoyaltyEarnRate: cfg.LoyaltyEarnRate},
		wsHub,
		notify.LogNotifier{},
	)
	customerService := service.NewCustomerService(customerRepo, billRepo)
	reportService := service.NewReportService(billRepo)

	authHandler := handler.NewAuthHandler(authService, employeeRepo)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	inventoryHandler := handler.NewInventoryHandler(stockService, cfg.LowStockThreshold)
	billingHandler := handler.NewBillingHandler(billingService)
	commissionHandler := handler.NewCommissionHandler(commissionService)
	customerHandler := handler.NewCustomerHandler(customerService)
	reportHandler := handler.NewReportHandler(reportService)
	branchHandler := handler.NewBranchHandler(branchRepo)
	employeeHandler := handler.NewEmployeeHandler(employeeRepo, branchRepo, cfg.DefaultCommissionRate)

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Retail POS Engine v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 8. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(tokens, employeeRepo))

	protected.Get("/auth/me", authHandler.Me)

	// Catalog
	protected.Get("/products", catalogHandler.GetProducts)
	protected.Get("/products/search/barcode/:code", catalogHandler.SearchByBarcode)
	protected.Get("/products/:id", catalogHandler.GetProduct)
	protected.Post("/products", middleware.RequireAdmin(), catalogHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequireAdmin(), catalogHandler.UpdateProduct)

	// Stock ledger
	protected.Post("/inventory/stock-in", middleware.RequireAdmin(), inventoryHandler.StockIn)
	protected.Post("/inventory/transfer", middleware.RequireAdmin(), inventoryHandler.Transfer)
	protected.Get("/inventory/low-stock", middleware.RequireAdmin(), inventoryHandler.LowStock)

	// Billing
	protected.Post("/billing", billingHandler.CreateBill)
	protected.Get("/billing", billingHandler.GetBills)
	protected.Post("/billing/return", billingHandler.ProcessReturn)
	protected.Get("/billing/:id", billingHandler.GetBill)

	// Customers
	protected.Post("/customers", customerHandler.Create)
	protected.Get("/customers/search/:phone", customerHandler.SearchByPhone)
	protected.Get("/customers/:id/bills", customerHandler.Bills)

	// Commissions
	protected.Get("/commissions/my", commissionHandler.My)
	protected.Get("/commissions/all", middleware.RequireAdmin(), commissionHandler.All)
	protected.Post("/commissions/payout", middleware.RequireAdmin(), commissionHandler.Payout)

	// Reports
	protected.Get("/reports/sales", reportHandler.SalesReport)
	protected.Get("/dashboard/stats", reportHandler.DashboardStats)

	// Branches
	protected.Get("/branches", branchHandler.List)
	protected.Get("/branches/:id", branchHandler.Get)
	protected.Post("/branches", middleware.RequireAdmin(), branchHandler.Create)

	// Employees
	protected.Get("/employees", middleware.RequireAdmin(), employeeHandler.List)
	protected.Post("/employees", middleware.RequireAdmin(), employeeHandler.Create)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 9. Graceful Shutdown
	go func() {
		if err := app.Listen(cfg.Address()); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedBranchAndAdmin creates a main branch and an admin account on first
// boot so the system is usable out of the box.
func seedBranchAndAdmin(db *gorm.DB, cfg config.Config) {
	branchRepo := repository.NewBranchRepo(db)
	employeeRepo := repository.NewEmployeeRepo(db)

	if _, err := employeeRepo.FindByUsername(cfg.SeedAdminUsername); err == nil {
		return
	}

	branches, err := branchRepo.FindAll()
	if err != nil {
		log.Printf("Warning: Failed to list branches: %v", err)
		return
	}

	var branch model.Branch
	if len(branches) > 0 {
		branch = branches[0]
	} else {
		branch = model.Branch{Name: "Main Branch", IsActive: true}
		if err := branchRepo.Create(&branch); err != nil {
			log.Printf("Warning: Failed to create default branch: %v", err)
			return
		}
	}

	admin := &model.Employee{
		Username:       cfg.SeedAdminUsername,
		FullName:       "Administrator",
		Role:           model.RoleAdmin,
		BranchID:       branch.ID,
		CommissionRate: cfg.DefaultCommissionRate,
		IsActive:       true,
	}
	if err := admin.SetPassword(cfg.SeedAdminPassword); err != nil {
		log.Printf("Warning: Failed to hash admin password: %v", err)
		return
	}
	if err := employeeRepo.Create(admin); err != nil {
		log.Printf("Warning: Failed to create admin employee: %v", err)
		return
	}
	log.Printf("Admin employee created: %s", cfg.SeedAdminUsername)
}
