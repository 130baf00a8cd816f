package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"github.com/jhoicas/retail-ledger/internal/application/inventory"
	"github.com/jhoicas/retail-ledger/internal/application/transaction"
	"github.com/jhoicas/retail-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Transactions   *transaction.Processor
	Reads          *inventory.ReadService
	ReportRenderer ReportRenderer
	ReportLocation *time.Location
	JWTSecret      string
	RequestTimeout time.Duration
	HTTPMetrics    HTTPObserver  // opcional
	WriteLimiter   *rate.Limiter // opcional; acota POST /api/transactions
	Log            *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", RequestTimeout(deps.RequestTimeout))
	if deps.HTTPMetrics != nil {
		api.Use(ObserveRequests(deps.HTTPMetrics))
	}

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Transacciones
	txHandler := NewTransactionHandler(deps.Transactions, deps.Log)
	txGroup := protected.Group("/transactions")
	txGroup.Post("/", RequireRole(RoleAdmin, RoleCashier, RoleStocker), RateLimit(deps.WriteLimiter), txHandler.Create)
	txGroup.Get("/:id", txHandler.GetByID)

	// Stock y movimientos
	stockHandler := NewStockHandler(deps.Reads)
	stock := protected.Group("/stock")
	stock.Get("/products/:productId/branches/:branchId", stockHandler.GetCurrentStock)
	stock.Get("/movements", stockHandler.ListMovements)
	stock.Get("/movements/products/:productId", stockHandler.ListProductMovements)

	// Reportes (admin y manager)
	reportHandler := NewReportHandler(deps.Reads, deps.ReportRenderer, deps.ReportLocation)
	reports := protected.Group("/reports", RequireRole(RoleAdmin, RoleManager))
	reports.Get("/branches/:branchId", reportHandler.GetBranchReport)
	reports.Get("/branches/:branchId/pdf", reportHandler.GetBranchReportPDF)
}
