package inventory

import (
	"context"

	"github.com/jhoicas/retail-ledger/internal/application/ledger"
	"github.com/jhoicas/retail-ledger/internal/application/readcache"
	"github.com/jhoicas/retail-ledger/internal/application/report"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

// StockLevel stock actual de un producto en una sucursal.
type StockLevel struct {
	ProductID string
	BranchID  string
	Quantity  int64
}

// ReadService consultas de stock, movimientos y reportes servidas primero desde la caché.
type ReadService struct {
	branches repository.BranchRepository
	products repository.ProductRepository
	ledger   *ledger.Ledger
	reports  *report.Aggregator
	cache    *readcache.Cache
}

// NewReadService construye el servicio de lectura.
func NewReadService(
	branches repository.BranchRepository,
	products repository.ProductRepository,
	l *ledger.Ledger,
	reports *report.Aggregator,
	cache *readcache.Cache,
) *ReadService {
	return &ReadService{branches: branches, products: products, ledger: l, reports: reports, cache: cache}
}

// GetCurrentStock stock de (producto, sucursal); cero si nunca hubo movimientos.
func (s *ReadService) GetCurrentStock(ctx context.Context, productID, branchID string) (*StockLevel, error) {
	if productID == "" {
		return nil, domain.Invalid("product_id", "requerido")
	}
	if branchID == "" {
		return nil, domain.Invalid("branch_id", "requerido")
	}
	return readcache.Load(ctx, s.cache, readcache.ClassStock, readcache.StockKey(productID, branchID),
		[]string{readcache.StockGroup(productID)},
		func(ctx context.Context) (*StockLevel, error) {
			if err := s.ensureBranch(ctx, branchID); err != nil {
				return nil, err
			}
			prod, err := s.products.GetByID(ctx, productID)
			if err != nil {
				return nil, domain.Persistence("leer producto", err)
			}
			if prod == nil || !prod.AvailableAt(branchID) {
				return nil, domain.NotFound("product", productID)
			}
			qty, err := s.ledger.CurrentStock(ctx, productID, branchID)
			if err != nil {
				return nil, err
			}
			return &StockLevel{ProductID: productID, BranchID: branchID, Quantity: qty}, nil
		})
}

// GetStockMovements historial reciente, más reciente primero (limit <= 0 = 50).
// branchID vacío = todas las sucursales.
func (s *ReadService) GetStockMovements(ctx context.Context, branchID string, limit int) ([]*entity.StockMovement, error) {
	limit = s.ledger.ResolveLimit(false, limit)
	return readcache.Load(ctx, s.cache, readcache.ClassMovements, readcache.RecentMovementsKey(branchID, limit),
		[]string{readcache.MovementsGroup},
		func(ctx context.Context) ([]*entity.StockMovement, error) {
			return s.ledger.History(ctx, "", branchID, limit)
		})
}

// GetStockMovementsByProduct historial de un producto (limit <= 0 = 10). branchID vacío =
// todas las sucursales.
func (s *ReadService) GetStockMovementsByProduct(ctx context.Context, productID, branchID string, limit int) ([]*entity.StockMovement, error) {
	if productID == "" {
		return nil, domain.Invalid("product_id", "requerido")
	}
	limit = s.ledger.ResolveLimit(true, limit)
	return readcache.Load(ctx, s.cache, readcache.ClassMovements, readcache.ProductMovementsKey(productID, branchID, limit),
		[]string{readcache.MovementsGroup, readcache.StockGroup(productID)},
		func(ctx context.Context) ([]*entity.StockMovement, error) {
			prod, err := s.products.GetByID(ctx, productID)
			if err != nil {
				return nil, domain.Persistence("leer producto", err)
			}
			if prod == nil {
				return nil, domain.NotFound("product", productID)
			}
			return s.ledger.History(ctx, productID, branchID, limit)
		})
}

// GetBranchReport reporte de la sucursal para el período, cacheado por parámetros.
func (s *ReadService) GetBranchReport(ctx context.Context, req report.Request) (*entity.BranchReport, error) {
	if req.BranchID == "" {
		return nil, domain.Invalid("branch_id", "requerido")
	}
	key := readcache.ReportKey(req.BranchID, req.Period.From, req.Period.To, req.OperatingExpenses, req.TargetProfit)
	return readcache.Load(ctx, s.cache, readcache.ClassReport, key,
		[]string{readcache.ReportGroup(req.BranchID)},
		func(ctx context.Context) (*entity.BranchReport, error) {
			return s.reports.Generate(ctx, req)
		})
}

// ResolveLimit límite efectivo de un listado de movimientos.
func (s *ReadService) ResolveLimit(productScoped bool, limit int) int {
	return s.ledger.ResolveLimit(productScoped, limit)
}

func (s *ReadService) ensureBranch(ctx context.Context, branchID string) error {
	b, err := s.branches.GetByID(ctx, branchID)
	if err != nil {
		return domain.Persistence("leer sucursal", err)
	}
	if b == nil {
		return domain.NotFound("branch", branchID)
	}
	return nil
}
