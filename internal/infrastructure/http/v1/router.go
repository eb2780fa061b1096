// Package v1 provides HTTP API version 1.
package v1

import (
	"context"

	"github.com/gin-gonic/gin"

	"backoffice/internal/domain/catalogs"
	"backoffice/internal/domain/documents"
	"backoffice/internal/domain/fiscalyear"
	"backoffice/internal/domain/stock"
	"backoffice/internal/infrastructure/http/v1/handlers"
	"backoffice/internal/infrastructure/http/v1/middleware"
	"backoffice/internal/infrastructure/http/v1/sessions"
	"backoffice/internal/infrastructure/storage/postgres"
	"backoffice/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (used by readiness checks).
	Pool *postgres.Pool

	// TxManager runs repository work in transactions.
	TxManager *postgres.TxManager

	// Logger for request logging.
	Logger *logger.Logger

	// Gate holds the financial year selection.
	Gate *fiscalyear.Gate

	// Sessions stores in-flight invoice drafts.
	Sessions *sessions.Store

	// AuditRepo records and serves the audit trail.
	AuditRepo *postgres.AuditRepo

	// Version is reported by /health/info.
	Version string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool.Pool, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// Shared wiring: the ledger reconciler and the document services are
	// used by both the drafting sessions and the document endpoints.
	reconciler := stock.NewReconciler(postgres.NewLedgerRepo(cfg.TxManager))
	numbers := postgres.NewSequenceRepo(cfg.TxManager)

	saleService := documents.NewSaleService(
		postgres.NewSaleInvoiceRepo(cfg.TxManager),
		cfg.Gate, numbers, cfg.AuditRepo, cfg.TxManager,
	)
	purchaseService := documents.NewPurchaseService(
		postgres.NewPurchaseInvoiceRepo(cfg.TxManager),
		cfg.Gate, numbers, cfg.AuditRepo, cfg.TxManager,
	)

	v1 := router.Group("/api/v1")
	{
		registerSessionRoutes(v1, cfg, saleService, reconciler)
		registerCatalogRoutes(v1, cfg)
		registerDocumentRoutes(v1, saleService, purchaseService)
		registerStockRoutes(v1, cfg, reconciler)
		registerFiscalYearRoutes(v1, cfg)
		registerAuditRoutes(v1, cfg)
	}

	return router
}

// registerSessionRoutes registers the invoice drafting endpoints.
func registerSessionRoutes(rg *gin.RouterGroup, cfg RouterConfig, sales *documents.SaleService, reconciler *stock.Reconciler) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewSessionHandler(baseHandler, cfg.Sessions, sales, reconciler)
	handler.RegisterRoutes(rg.Group("/sessions"))
}

// registerCatalogRoutes registers catalog CRUD endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	catalogGroup := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	// --- CUSTOMERS ---
	{
		repo := postgres.NewCustomerRepo(cfg.TxManager)
		service := catalogs.NewService("customer", repo, cfg.TxManager)
		handler := handlers.NewCatalogHandler(baseHandler, service, func() *catalogs.Customer { return &catalogs.Customer{} })
		handler.RegisterRoutes(catalogGroup.Group("/customers"))
	}

	// --- ITEMS ---
	{
		repo := postgres.NewItemRepo(cfg.TxManager)
		service := catalogs.NewService("item", repo, cfg.TxManager)
		handler := handlers.NewCatalogHandler(baseHandler, service, func() *catalogs.Item { return &catalogs.Item{} })
		handler.RegisterRoutes(catalogGroup.Group("/items"))
	}

	// --- BRANCHES ---
	{
		repo := postgres.NewBranchRepo(cfg.TxManager)
		service := catalogs.NewService("branch", repo, cfg.TxManager)
		handler := handlers.NewCatalogHandler(baseHandler, service, func() *catalogs.Branch { return &catalogs.Branch{} })
		handler.RegisterRoutes(catalogGroup.Group("/branches"))
	}

	// --- WAREHOUSES ---
	{
		repo := postgres.NewWarehouseRepo(cfg.TxManager)
		service := catalogs.NewWarehouseService(repo, cfg.TxManager)
		handler := handlers.NewCatalogHandler(baseHandler, service, func() *catalogs.Warehouse { return &catalogs.Warehouse{} })
		handler.RegisterRoutes(catalogGroup.Group("/warehouses"))
	}
}

// registerDocumentRoutes registers saved invoice endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, sales *documents.SaleService, purchases *documents.PurchaseService) {
	docsGroup := rg.Group("/documents")
	baseHandler := handlers.NewBaseHandler()

	saleHandler := handlers.NewSaleInvoiceHandler(baseHandler, sales)
	saleHandler.RegisterRoutes(docsGroup.Group("/sale-invoices"))

	purchaseHandler := handlers.NewPurchaseInvoiceHandler(baseHandler, purchases)
	purchaseHandler.RegisterRoutes(docsGroup.Group("/purchase-invoices"))
}

// registerStockRoutes registers ledger-derived stock endpoints.
func registerStockRoutes(rg *gin.RouterGroup, cfg RouterConfig, reconciler *stock.Reconciler) {
	baseHandler := handlers.NewBaseHandler()

	itemRepo := postgres.NewItemRepo(cfg.TxManager)
	itemCache := stock.NewCatalogCache(stock.DefaultCatalogTTL, func(ctx context.Context) ([]*catalogs.Item, error) {
		filter := catalogs.DefaultListFilter()
		filter.Limit = 1000 // picker listing, not a paginated grid
		result, err := itemRepo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		return result.Items, nil
	})

	handler := handlers.NewStockHandler(baseHandler, reconciler, itemCache)
	handler.RegisterRoutes(rg.Group("/stock"))
}

// registerFiscalYearRoutes registers financial year endpoints.
func registerFiscalYearRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewFiscalYearHandler(baseHandler, cfg.Gate)
	handler.RegisterRoutes(rg.Group("/financial-years"))
}

// registerAuditRoutes registers audit trail endpoints.
func registerAuditRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewAuditHandler(baseHandler, cfg.AuditRepo)
	handler.RegisterRoutes(rg.Group("/audit"))
}
