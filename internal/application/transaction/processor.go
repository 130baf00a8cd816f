// Package transaction aplica eventos comerciales (venta, compra, devolución, baja) sobre el
// ledger de stock: valida, bloquea las claves afectadas, escribe transacción + movimientos +
// agregados en una sola unidad de trabajo e invalida la caché de lectura antes de responder.
package transaction

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/retail-ledger/internal/application/ledger"
	"github.com/jhoicas/retail-ledger/internal/application/ports"
	"github.com/jhoicas/retail-ledger/internal/application/readcache"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/pricing"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
	"github.com/jhoicas/retail-ledger/pkg/logger"
)

var tracer = otel.Tracer("transaction-processor")

// Estados del ciclo de vida de una solicitud (solo para logs).
const (
	stateReceived  = "RECEIVED"
	stateValidated = "VALIDATED"
	stateApplied   = "APPLIED"
	stateRejected  = "REJECTED"
)

// CacheInvalidator lo que el procesador necesita de la caché de lectura.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, names ...string) error
	Flush(ctx context.Context) error
}

// ItemInput línea solicitada.
type ItemInput struct {
	ProductID string
	Quantity  int64
}

// ApplyInput solicitud de transacción ya parseada en el borde.
type ApplyInput struct {
	Type      entity.TransactionType
	BranchID  string
	CreatedBy string
	Reference string
	Items     []ItemInput
}

// Processor orquesta la aplicación de transacciones.
type Processor struct {
	branches     repository.BranchRepository
	products     repository.ProductRepository
	transactions repository.TransactionRepository
	ledger       *ledger.Ledger
	txRunner     ports.TxRunner
	cache        CacheInvalidator
	metrics      ports.Metrics
	log          *logger.Logger
	now          func() time.Time
}

// NewProcessor construye el procesador.
func NewProcessor(
	branches repository.BranchRepository,
	products repository.ProductRepository,
	transactions repository.TransactionRepository,
	l *ledger.Ledger,
	txRunner ports.TxRunner,
	cache CacheInvalidator,
	metrics ports.Metrics,
	log *logger.Logger,
) *Processor {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Processor{
		branches:     branches,
		products:     products,
		transactions: transactions,
		ledger:       l,
		txRunner:     txRunner,
		cache:        cache,
		metrics:      metrics,
		log:          log.Named("transaction"),
		now:          time.Now,
	}
}

// Apply valida y aplica la transacción de forma atómica. Ante un error no queda ninguna
// mutación, salvo ErrCacheInvalidation: en ese caso la transacción devuelta ya está
// confirmada y el caller no debe reintentar.
func (p *Processor) Apply(ctx context.Context, in ApplyInput) (*entity.Transaction, error) {
	ctx, span := tracer.Start(ctx, "transaction.Apply", trace.WithAttributes(
		attribute.String("transaction.type", string(in.Type)),
		attribute.String("transaction.branch_id", in.BranchID),
		attribute.Int("transaction.items", len(in.Items)),
	))
	defer span.End()

	start := time.Now()
	log := p.log.WithContext(ctx)
	log.Debug().Str("state", stateReceived).Str("type", string(in.Type)).Str("branch_id", in.BranchID).Int("items", len(in.Items)).Msg("transacción recibida")

	tx, err := p.apply(ctx, in)
	if err != nil && !errors.Is(err, domain.ErrCacheInvalidation) {
		reason := rejectReason(err)
		p.metrics.TransactionRejected(in.Type, reason)
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		ev := log.Warn()
		if reason == "persistence" {
			ev = log.Error()
		}
		ev.Err(err).Str("state", stateRejected).Str("reason", reason).Str("type", string(in.Type)).Str("branch_id", in.BranchID).Msg("transacción rechazada")
		return nil, err
	}

	elapsed := time.Since(start)
	p.metrics.TransactionApplied(in.Type, len(tx.Items), elapsed)
	span.SetAttributes(attribute.String("transaction.id", tx.ID))
	log.Info().Str("state", stateApplied).Str("transaction_id", tx.ID).Str("type", string(tx.Type)).
		Str("branch_id", tx.BranchID).Int("items", len(tx.Items)).Dur("elapsed", elapsed).Msg("transacción aplicada")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "cache_invalidation")
	}
	return tx, err
}

func (p *Processor) apply(ctx context.Context, in ApplyInput) (*entity.Transaction, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	branch, err := p.branches.GetByID(ctx, in.BranchID)
	if err != nil {
		return nil, domain.Persistence("leer sucursal", err)
	}
	if branch == nil {
		return nil, domain.NotFound("branch", in.BranchID)
	}
	products, err := p.resolveProducts(ctx, in)
	if err != nil {
		return nil, err
	}
	p.log.WithContext(ctx).Debug().Str("state", stateValidated).Str("type", string(in.Type)).Msg("transacción validada")

	keys := make([]entity.StockKey, 0, len(products))
	for id := range products {
		keys = append(keys, entity.StockKey{ProductID: id, BranchID: in.BranchID})
	}
	unlock, err := p.ledger.Lock(ctx, keys...)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Con los locks tomados la escritura no se cancela: termina o aborta completa.
	wctx := context.WithoutCancel(ctx)
	now := p.now()
	tx := buildTransaction(in, products, now)

	err = p.txRunner.Run(wctx, func(uow repository.UnitOfWork) error {
		if in.Type.Consumes() {
			if err := checkAvailability(wctx, uow.Movements, in, keys); err != nil {
				return err
			}
		}
		if err := uow.Transactions.Create(wctx, tx); err != nil {
			return domain.Persistence("crear transacción", err)
		}
		for _, it := range tx.Items {
			_, err := p.ledger.Record(wctx, uow.Movements, ledger.MovementInput{
				ProductID:     it.ProductID,
				BranchID:      tx.BranchID,
				TransactionID: tx.ID,
				Type:          tx.Type,
				Delta:         tx.Type.Delta(it.Quantity),
				At:            now,
			})
			if err != nil {
				return err
			}
			if tx.Type == entity.TransactionSale {
				if err := uow.Products.AddSales(wctx, it.ProductID, it.Quantity, it.TotalPrice, now); err != nil {
					return domain.Persistence("actualizar agregados de producto", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, domain.Persistence("aplicar transacción", err)
	}

	if err := p.invalidate(wctx, tx, products); err != nil {
		return tx, err
	}
	return tx, nil
}

// GetTransaction devuelve una transacción confirmada con sus líneas.
func (p *Processor) GetTransaction(ctx context.Context, id string) (*entity.Transaction, error) {
	if id == "" {
		return nil, domain.Invalid("id", "requerido")
	}
	tx, err := p.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("leer transacción", err)
	}
	if tx == nil {
		return nil, domain.NotFound("transaction", id)
	}
	return tx, nil
}

func validate(in ApplyInput) error {
	if !in.Type.Valid() {
		return domain.Invalid("type", fmt.Sprintf("tipo de transacción desconocido %q", in.Type))
	}
	if in.BranchID == "" {
		return domain.Invalid("branch_id", "requerido")
	}
	if len(in.Items) == 0 {
		return domain.Invalid("items", "al menos una línea")
	}
	for i, it := range in.Items {
		if it.ProductID == "" {
			return domain.Invalid(fmt.Sprintf("items[%d].product_id", i), "requerido")
		}
		if it.Quantity <= 0 {
			return domain.Invalid(fmt.Sprintf("items[%d].quantity", i), "debe ser mayor que cero")
		}
	}
	return nil
}

// resolveProducts carga cada producto distinto. Un producto atado a otra sucursal no existe
// para esta.
func (p *Processor) resolveProducts(ctx context.Context, in ApplyInput) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(in.Items))
	for _, it := range in.Items {
		if _, ok := out[it.ProductID]; ok {
			continue
		}
		prod, err := p.products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, domain.Persistence("leer producto", err)
		}
		if prod == nil || !prod.AvailableAt(in.BranchID) {
			return nil, domain.NotFound("product", it.ProductID)
		}
		out[it.ProductID] = prod
	}
	return out, nil
}

// checkAvailability lee los balances en orden canónico (en Postgres eso bloquea las filas en
// el mismo orden que el locker) y compara la demanda agregada en el orden de las líneas.
func checkAvailability(ctx context.Context, movements repository.StockMovementRepository, in ApplyInput, keys []entity.StockKey) error {
	sorted := append([]entity.StockKey(nil), keys...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })
	available := make(map[string]int64, len(sorted))
	for _, k := range sorted {
		qty, err := movements.LatestBalance(ctx, k)
		if err != nil {
			return domain.Persistence("leer stock "+k.String(), err)
		}
		available[k.ProductID] = qty
	}

	demand := make(map[string]int64, len(in.Items))
	for _, it := range in.Items {
		demand[it.ProductID] += it.Quantity
	}
	for _, it := range in.Items {
		if demand[it.ProductID] > available[it.ProductID] {
			return &domain.InsufficientStockError{
				ProductID: it.ProductID,
				Requested: demand[it.ProductID],
				Available: available[it.ProductID],
			}
		}
	}
	return nil
}

func buildTransaction(in ApplyInput, products map[string]*entity.Product, now time.Time) *entity.Transaction {
	tx := &entity.Transaction{
		ID:         uuid.New().String(),
		Type:       in.Type,
		BranchID:   in.BranchID,
		CreatedBy:  in.CreatedBy,
		Reference:  in.Reference,
		TotalCost:  decimal.Zero,
		TotalPrice: decimal.Zero,
		Profit:     decimal.Zero,
		CreatedAt:  now,
		Items:      make([]entity.TransactionItem, 0, len(in.Items)),
	}
	for i, it := range in.Items {
		prod := products[it.ProductID]
		totals := pricing.Totals(prod.CostPerUnit, prod.SellingPrice, it.Quantity)
		profit := decimal.Zero
		if in.Type == entity.TransactionSale {
			profit = totals.Profit
		}
		tx.Items = append(tx.Items, entity.TransactionItem{
			ID:            uuid.New().String(),
			TransactionID: tx.ID,
			Line:          i + 1,
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			UnitCost:      prod.CostPerUnit,
			UnitPrice:     prod.SellingPrice,
			TotalCost:     totals.TotalCost,
			TotalPrice:    totals.TotalPrice,
			Profit:        profit,
		})
		tx.TotalCost = tx.TotalCost.Add(totals.TotalCost)
		tx.TotalPrice = tx.TotalPrice.Add(totals.TotalPrice)
		tx.Profit = tx.Profit.Add(profit)
	}
	return tx
}

// invalidate borra los grupos afectados. Si falla vacía toda la caché; si eso también
// falla devuelve ErrCacheInvalidation.
func (p *Processor) invalidate(ctx context.Context, tx *entity.Transaction, products map[string]*entity.Product) error {
	groups := make([]string, 0, len(products)+2)
	for id := range products {
		groups = append(groups, readcache.StockGroup(id))
	}
	sort.Strings(groups)
	groups = append(groups, readcache.MovementsGroup, readcache.ReportGroup(tx.BranchID))

	err := p.cache.Invalidate(ctx, groups...)
	if err == nil {
		p.metrics.CacheInvalidation(true)
		return nil
	}
	p.metrics.CacheInvalidation(false)
	log := p.log.WithContext(ctx)
	log.Error().Err(err).Str("transaction_id", tx.ID).Strs("groups", groups).Msg("invalidación fallida, vaciando caché")
	if ferr := p.cache.Flush(ctx); ferr != nil {
		log.Error().Err(ferr).Str("transaction_id", tx.ID).Msg("no se pudo vaciar la caché")
		return fmt.Errorf("transacción %s confirmada: %w", tx.ID, domain.ErrCacheInvalidation)
	}
	return nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrInvalidMovement):
		return "invalid_movement"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "persistence"
	}
}
