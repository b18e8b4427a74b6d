package service

import (
	"io"
	"testing"
	"time"

	"go-branch-stock-ws/internal/model"
	"go-branch-stock-ws/internal/repository"
	"go-branch-stock-ws/internal/ws"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testEnv wires the full service stack against an in-memory database.
type testEnv struct {
	db *gorm.DB

	transferRepo repository.TransferRepository
	queryRepo    repository.QueryRepository
	alertRepo    repository.AlertRepository

	transferSvc TransferService
	receiptSvc  ReceiptService
	querySvc    QueryService
	reconSvc    ReconciliationService
	alertSvc    AlertService
	impactSvc   ImpactService

	source model.Branch
	dest   model.Branch
	rice   model.Product
	milk   model.Product

	admin     *model.User
	sourceMgr *model.User
	destMgr   *model.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("raw database: %v", err)
	}
	// A single connection keeps every session on the same in-memory DB.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.User{}, &model.Privilege{}, &model.Role{},
		&model.Branch{}, &model.BranchStock{}, &model.Product{},
		&model.StockTransfer{}, &model.StockTransferItem{},
		&model.StockTransferQuery{}, &model.QueryResponse{},
		&model.StockReconciliation{}, &model.StockReconciliationItem{},
		&model.StockFinancialImpact{}, &model.StockAlert{},
		&model.StockMovement{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	env := &testEnv{db: db}
	env.seed(t)

	log := logrus.New()
	log.SetOutput(io.Discard)
	hub := ws.NewHub()
	go hub.Run()

	env.transferRepo = repository.NewTransferRepo(db)
	env.queryRepo = repository.NewQueryRepo(db)
	env.alertRepo = repository.NewAlertRepo(db)
	movementRepo := repository.NewMovementRepo(db)
	branchRepo := repository.NewBranchRepo(db)
	productRepo := repository.NewProductRepo(db)
	userRepo := repository.NewUserRepo(db)
	impactRepo := repository.NewImpactRepo(db)
	reconRepo := repository.NewReconciliationRepo(db)

	env.alertSvc = NewAlertService(env.alertRepo, env.transferRepo, hub, log)
	env.transferSvc = NewTransferService(env.transferRepo, movementRepo, branchRepo, productRepo, db, hub, log)
	env.receiptSvc = NewReceiptService(env.transferRepo, env.queryRepo, movementRepo, env.alertSvc, db, hub, log)
	env.querySvc = NewQueryService(env.queryRepo, env.transferRepo, userRepo, impactRepo, env.alertSvc, db, hub, log)
	env.reconSvc = NewReconciliationService(reconRepo, env.transferRepo, movementRepo, db, log)
	env.impactSvc = NewImpactService(impactRepo, branchRepo)

	return env
}

func (e *testEnv) seed(t *testing.T) {
	t.Helper()

	roles := map[string]*model.Role{}
	for _, code := range []string{model.RoleSuperAdmin, model.RoleAdmin, model.RoleBranchManager} {
		role := &model.Role{Code: code, Name: code}
		if err := e.db.Create(role).Error; err != nil {
			t.Fatalf("seed role %s: %v", code, err)
		}
		roles[code] = role
	}

	e.source = model.Branch{Code: "WH-01", Name: "Central Warehouse", IsActive: true}
	e.dest = model.Branch{Code: "BR-02", Name: "Riverside Branch", IsActive: true}
	for _, b := range []*model.Branch{&e.source, &e.dest} {
		if err := e.db.Create(b).Error; err != nil {
			t.Fatalf("seed branch %s: %v", b.Code, err)
		}
	}

	e.rice = model.Product{SKU: "RICE-5KG", Name: "Rice 5kg", Unit: "bag", UnitPrice: decimal.NewFromInt(12)}
	e.milk = model.Product{SKU: "MILK-1L", Name: "Milk 1L", Unit: "carton", UnitPrice: decimal.NewFromInt(2)}
	for _, p := range []*model.Product{&e.rice, &e.milk} {
		if err := e.db.Create(p).Error; err != nil {
			t.Fatalf("seed product %s: %v", p.SKU, err)
		}
	}

	newUser := func(email, roleCode string, branchID *model.Branch) *model.User {
		user := &model.User{
			Email:    email,
			FullName: email,
			RoleID:   &roles[roleCode].ID,
			IsActive: true,
		}
		if branchID != nil {
			user.BranchID = &branchID.ID
		}
		if err := user.SetPassword("secret123"); err != nil {
			t.Fatalf("hash password: %v", err)
		}
		if err := e.db.Create(user).Error; err != nil {
			t.Fatalf("seed user %s: %v", email, err)
		}
		user.Role = roles[roleCode]
		return user
	}

	e.admin = newUser("admin@test.local", model.RoleSuperAdmin, nil)
	e.sourceMgr = newUser("source@test.local", model.RoleBranchManager, &e.source)
	e.destMgr = newUser("dest@test.local", model.RoleBranchManager, &e.dest)

	// Seed source branch stock so dispatch succeeds.
	for _, p := range []*model.Product{&e.rice, &e.milk} {
		stock := &model.BranchStock{BranchID: e.source.ID, ProductID: p.ID, Quantity: 1000}
		if err := e.db.Create(stock).Error; err != nil {
			t.Fatalf("seed stock: %v", err)
		}
	}
}

func (e *testEnv) stockAt(t *testing.T, branchID, productID interface{}) int {
	t.Helper()
	var stock model.BranchStock
	err := e.db.First(&stock, "branch_id = ? AND product_id = ?", branchID, productID).Error
	if err == gorm.ErrRecordNotFound {
		return 0
	}
	if err != nil {
		t.Fatalf("load stock: %v", err)
	}
	return stock.Quantity
}

// newTransfer creates a pending transfer of the given rice quantity.
func (e *testEnv) newTransfer(t *testing.T, riceQty int) *model.StockTransfer {
	t.Helper()
	expected := time.Now().Add(48 * time.Hour)
	transfer, err := e.transferSvc.CreateTransfer(&CreateTransferRequest{
		FromBranchID:     e.source.ID,
		ToBranchID:       e.dest.ID,
		ExpectedDelivery: &expected,
		Items: []CreateTransferItemRequest{
			{ProductID: e.rice.ID, QuantitySent: riceQty},
		},
	}, e.admin)
	if err != nil {
		t.Fatalf("create transfer: %v", err)
	}
	return transfer
}

// deliveredTransfer walks a fresh transfer to delivered.
func (e *testEnv) deliveredTransfer(t *testing.T, riceQty int) *model.StockTransfer {
	t.Helper()
	transfer := e.newTransfer(t, riceQty)
	if _, err := e.transferSvc.Dispatch(transfer.ID, e.sourceMgr); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	transfer, err := e.transferSvc.MarkDelivered(transfer.ID, &MarkDeliveredRequest{}, e.destMgr)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	return transfer
}

// openQueriesFor lists queries raised against a transfer.
func (e *testEnv) queriesFor(t *testing.T, transferID interface{}) []model.StockTransferQuery {
	t.Helper()
	var queries []model.StockTransferQuery
	if err := e.db.Where("stock_transfer_id = ?", transferID).Find(&queries).Error; err != nil {
		t.Fatalf("load queries: %v", err)
	}
	return queries
}

func intPtr(v int) *int { return &v }
