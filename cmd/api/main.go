package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-branch-stock-ws/internal/handler"
	"go-branch-stock-ws/internal/middleware"
	"go-branch-stock-ws/internal/model"
	"go-branch-stock-ws/internal/repository"
	"go-branch-stock-ws/internal/service"
	"go-branch-stock-ws/internal/storage"
	"go-branch-stock-ws/internal/ws"
	"go-branch-stock-ws/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	appLog := newLogger()

	// 2. Setup Database
	db := database.ConnectDB()
	// Auto Migrate (use a dedicated migration tool for production)
	db.AutoMigrate(
		&model.User{}, &model.Privilege{}, &model.Role{},
		&model.Branch{}, &model.BranchStock{}, &model.Product{},
		&model.StockTransfer{}, &model.StockTransferItem{},
		&model.StockTransferQuery{}, &model.QueryResponse{},
		&model.StockReconciliation{}, &model.StockReconciliationItem{},
		&model.StockFinancialImpact{}, &model.StockAlert{},
		&model.StockMovement{},
	)

	// 3. Seed default privileges, roles, and admin user
	seedPrivilegesRolesAndAdmin(db)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. File storage for inspection photos and query attachments
	store, err := storage.NewStore(os.Getenv("UPLOAD_DIR"))
	if err != nil {
		log.Fatal("Failed to initialise upload storage: ", err)
	}

	// 6. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	branchRepo := repository.NewBranchRepo(db)
	productRepo := repository.NewProductRepo(db)
	transferRepo := repository.NewTransferRepo(db)
	queryRepo := repository.NewQueryRepo(db)
	movementRepo := repository.NewMovementRepo(db)
	alertRepo := repository.NewAlertRepo(db)
	impactRepo := repository.NewImpactRepo(db)
	reconRepo := repository.NewReconciliationRepo(db)
	statsRepo := repository.NewStatsRepo(db)

	authService := service.NewAuthService(userRepo, wsHub)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo, branchRepo)
	branchService := service.NewBranchService(branchRepo, movementRepo)
	productService := service.NewProductService(productRepo)
	alertService := service.NewAlertService(alertRepo, transferRepo, wsHub, appLog)
	transferService := service.NewTransferService(transferRepo, movementRepo, branchRepo, productRepo, db, wsHub, appLog)
	receiptService := service.NewReceiptService(transferRepo, queryRepo, movementRepo, alertService, db, wsHub, appLog)
	queryService := service.NewQueryService(queryRepo, transferRepo, userRepo, impactRepo, alertService, db, wsHub, appLog)
	reconService := service.NewReconciliationService(reconRepo, transferRepo, movementRepo, db, appLog)
	impactService := service.NewImpactService(impactRepo, branchRepo)
	dashboardService := service.NewDashboardService(statsRepo, transferRepo, queryRepo, alertService)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleRepo)
	branchHandler := handler.NewBranchHandler(branchService)
	productHandler := handler.NewProductHandler(productService)
	transferHandler := handler.NewTransferHandler(transferService)
	receiptHandler := handler.NewReceiptHandler(receiptService, store)
	queryHandler := handler.NewQueryHandler(queryService, store)
	reconHandler := handler.NewReconciliationHandler(reconService)
	impactHandler := handler.NewImpactHandler(impactService)
	alertHandler := handler.NewAlertHandler(alertService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:   "Branch Stock Transfer v1.0",
		BodyLimit: 32 << 20, // room for inspection photo uploads
	})

	// Middleware
	app.Use(fiberlogger.New()) // Logging request
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New())        // CORS

	// Uploaded files (photos, attachments)
	app.Static("/uploads", store.BaseDir())

	// 8. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Dashboard Routes
	protected.Get("/dashboard/branch/:id", middleware.RequirePrivilege("dashboard:view"), dashboardHandler.GetBranchDashboard)
	protected.Get("/dashboard/admin", middleware.RequireAnyPrivilege("user:create", "branch:create"), dashboardHandler.GetAdminDashboard)

	// Branch Routes
	protected.Get("/branches", middleware.RequirePrivilege("branch:view"), branchHandler.GetBranches)
	protected.Get("/branches/:id", middleware.RequirePrivilege("branch:view"), branchHandler.GetBranch)
	protected.Post("/branches", middleware.RequirePrivilege("branch:create"), branchHandler.CreateBranch)
	protected.Put("/branches/:id", middleware.RequirePrivilege("branch:update"), branchHandler.UpdateBranch)
	protected.Get("/branches/:id/stock", middleware.RequirePrivilege("branch:view"), branchHandler.GetBranchStock)
	protected.Get("/branches/:id/movements", middleware.RequirePrivilege("branch:view"), branchHandler.GetBranchMovements)
	protected.Get("/branches/:id/alerts", middleware.RequirePrivilege("alert:view"), alertHandler.GetAlerts)

	// Product Routes
	protected.Get("/products", middleware.RequirePrivilege("product:view"), productHandler.GetProducts)
	protected.Get("/products/:id", middleware.RequirePrivilege("product:view"), productHandler.GetProduct)
	protected.Post("/products", middleware.RequirePrivilege("product:create"), productHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege("product:update"), productHandler.UpdateProduct)

	// Transfer Routes
	protected.Get("/transfers", middleware.RequirePrivilege("transfer:view"), transferHandler.GetTransfers)
	protected.Get("/transfers/:id", middleware.RequirePrivilege("transfer:view"), transferHandler.GetTransfer)
	protected.Get("/transfers/:id/items", middleware.RequirePrivilege("transfer:view"), transferHandler.GetTransferItems)
	protected.Post("/transfers", middleware.RequirePrivilege("transfer:create"), transferHandler.CreateTransfer)
	protected.Post("/transfers/:id/dispatch", middleware.RequirePrivilege("transfer:dispatch"), transferHandler.Dispatch)
	protected.Post("/transfers/:id/deliver", middleware.RequirePrivilege("transfer:deliver"), transferHandler.MarkDelivered)
	protected.Post("/transfers/:id/cancel", middleware.RequirePrivilege("transfer:cancel"), transferHandler.Cancel)

	// Receipt confirmation and quality inspection
	protected.Post("/transfers/:id/confirm-receipt", middleware.RequirePrivilege("receipt:confirm"), receiptHandler.ConfirmReceipt)
	protected.Post("/transfer-items/:id/inspect", middleware.RequirePrivilege("receipt:inspect"), receiptHandler.RecordInspection)

	// Reconciliation
	protected.Post("/transfers/:id/reconciliations", middleware.RequirePrivilege("reconciliation:create"), reconHandler.CreateReconciliation)
	protected.Get("/transfers/:id/reconciliations", middleware.RequirePrivilege("transfer:view"), reconHandler.GetReconciliations)

	// Query Routes
	protected.Get("/queries", middleware.RequirePrivilege("query:view"), queryHandler.GetQueries)
	protected.Get("/queries/:id", middleware.RequirePrivilege("query:view"), queryHandler.GetQuery)
	protected.Post("/queries", middleware.RequirePrivilege("query:create"), queryHandler.CreateQuery)
	protected.Post("/queries/:id/assign", middleware.RequirePrivilege("query:assign"), queryHandler.AssignQuery)
	protected.Post("/queries/:id/start", middleware.RequirePrivilege("query:respond"), queryHandler.StartProgress)
	protected.Post("/queries/:id/responses", middleware.RequirePrivilege("query:respond"), queryHandler.AddResponse)
	protected.Post("/queries/:id/escalate", middleware.RequirePrivilege("query:escalate"), queryHandler.EscalateQuery)
	protected.Post("/queries/:id/resolve", middleware.RequirePrivilege("query:resolve"), queryHandler.ResolveQuery)
	protected.Post("/queries/:id/reject", middleware.RequirePrivilege("query:resolve"), queryHandler.RejectQuery)

	// Financial Impact Routes
	protected.Get("/impacts", middleware.RequirePrivilege("impact:view"), impactHandler.GetImpacts)
	protected.Get("/impacts/totals", middleware.RequirePrivilege("impact:view"), impactHandler.GetImpactTotals)
	protected.Post("/impacts", middleware.RequirePrivilege("impact:create"), impactHandler.RecordImpact)
	protected.Post("/impacts/:id/recover", middleware.RequirePrivilege("impact:create"), impactHandler.RecordRecovery)

	// Alert Routes
	protected.Post("/alerts/sweep", middleware.RequirePrivilege("alert:manage"), alertHandler.SweepOverdue)
	protected.Post("/alerts/:id/read", middleware.RequirePrivilege("alert:view"), alertHandler.MarkRead)
	protected.Post("/alerts/:id/resolve", middleware.RequirePrivilege("alert:manage"), alertHandler.MarkResolved)

	// Mobile mirrors: same handlers, shorter paths for the branch app
	mobile := api.Group("/mobile", middleware.RequireAuth(userRepo))
	mobile.Get("/transfers", middleware.RequirePrivilege("transfer:view"), transferHandler.GetTransfers)
	mobile.Get("/transfers/:id", middleware.RequirePrivilege("transfer:view"), transferHandler.GetTransfer)
	mobile.Post("/transfers/:id/deliver", middleware.RequirePrivilege("transfer:deliver"), transferHandler.MarkDelivered)
	mobile.Post("/transfers/:id/confirm-receipt", middleware.RequirePrivilege("receipt:confirm"), receiptHandler.ConfirmReceipt)
	mobile.Post("/transfer-items/:id/inspect", middleware.RequirePrivilege("receipt:inspect"), receiptHandler.RecordInspection)
	mobile.Get("/queries", middleware.RequirePrivilege("query:view"), queryHandler.GetQueries)
	mobile.Post("/queries/:id/responses", middleware.RequirePrivilege("query:respond"), queryHandler.AddResponse)

	// User Management Routes
	protected.Get("/users", userHandler.GetUsers)
	protected.Get("/users/:id", userHandler.GetUser)
	protected.Post("/users", middleware.RequirePrivilege("user:create"), userHandler.CreateUser)
	protected.Put("/users/:id", middleware.RequirePrivilege("user:update"), userHandler.UpdateUser)
	protected.Delete("/users/:id", middleware.RequirePrivilege("user:delete"), userHandler.DeleteUser)
	protected.Put("/users/:id/privileges", middleware.RequirePrivilege("user:update_privilege"), userHandler.UpdateUserPrivileges)

	// Role Routes
	protected.Get("/roles", roleHandler.GetRoles)

	// Privileges Route (list all available privileges)
	protected.Get("/privileges", func(c *fiber.Ctx) error {
		privileges, err := privilegeRepo.FindAll()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch privileges"})
		}
		return c.JSON(privileges)
	})

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
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	appLog.Info("Server exited")
}

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	if os.Getenv("LOG_FORMAT") == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		l.SetLevel(lvl)
	}
	return l
}

// seedPrivilegesRolesAndAdmin creates default privileges, roles, and admin user if they don't exist
func seedPrivilegesRolesAndAdmin(db *gorm.DB) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	// 1. Seed privileges first
	if err := privilegeRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed privileges: %v", err)
	}

	// 2. Seed roles
	if err := roleRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed roles: %v", err)
	}

	// 3. Assign privileges to roles
	allPrivileges, _ := privilegeRepo.FindAll()

	// SUPER_ADMIN gets ALL privileges
	superRole, err := roleRepo.FindByCode(model.RoleSuperAdmin)
	if err == nil && len(superRole.Privileges) == 0 {
		db.Model(&superRole).Association("Privileges").Replace(allPrivileges)
		log.Println("SUPER_ADMIN role assigned all privileges")
	}

	// ADMIN gets everything but user management
	adminRole, err := roleRepo.FindByCode(model.RoleAdmin)
	if err == nil && len(adminRole.Privileges) == 0 {
		adminPrivileges := []model.Privilege{}
		for _, p := range allPrivileges {
			if p.Code != "user:create" && p.Code != "user:update" && p.Code != "user:delete" && p.Code != "user:update_privilege" {
				adminPrivileges = append(adminPrivileges, p)
			}
		}
		db.Model(&adminRole).Association("Privileges").Replace(adminPrivileges)
		log.Println("ADMIN role assigned limited privileges")
	}

	// BRANCH_MANAGER gets the receipt-side subset
	managerRole, err := roleRepo.FindByCode(model.RoleBranchManager)
	if err == nil && len(managerRole.Privileges) == 0 {
		wanted := map[string]bool{}
		for _, code := range model.BranchManagerPrivilegeCodes {
			wanted[code] = true
		}
		managerPrivileges := []model.Privilege{}
		for _, p := range allPrivileges {
			if wanted[p.Code] {
				managerPrivileges = append(managerPrivileges, p)
			}
		}
		db.Model(&managerRole).Association("Privileges").Replace(managerPrivileges)
		log.Println("BRANCH_MANAGER role assigned receipt privileges")
	}

	// 4. Create default admin user with SUPER_ADMIN role
	_, err = userRepo.FindByEmail("admin@example.com")
	if err != nil {
		superRole, _ := roleRepo.FindByCode(model.RoleSuperAdmin)

		admin := &model.User{
			Email:       "admin@example.com",
			FullName:    "Super Administrator",
			PhoneNumber: "",
			RoleID:      &superRole.ID,
			IsActive:    true,
			Privileges:  superRole.Privileges,
		}
		admin.CreatedBy = "system"
		admin.UpdatedBy = "system"

		if err := admin.SetPassword("admin123"); err != nil {
			log.Printf("Warning: Failed to hash admin password: %v", err)
			return
		}

		if err := userRepo.Create(admin); err != nil {
			log.Printf("Warning: Failed to create admin user: %v", err)
		} else {
			log.Println("Admin user created: admin@example.com / admin123 (SUPER_ADMIN)")
		}
	}
}
