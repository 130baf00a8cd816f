// Package ledger es la única fuente de verdad del stock: un log append-only de movimientos
// por (producto, sucursal) donde el stock actual es el balance del movimiento más reciente.
package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/retail-ledger/internal/application/ports"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

// Config límites por defecto de los historiales.
type Config struct {
	GlobalHistoryLimit  int // historial global (por defecto 50)
	ProductHistoryLimit int // historial por producto (por defecto 10)
	MaxHistoryLimit     int // tope superior para cualquier límite pedido
}

// DefaultConfig valores observados en producción.
func DefaultConfig() Config {
	return Config{GlobalHistoryLimit: 50, ProductHistoryLimit: 10, MaxHistoryLimit: 500}
}

// MovementInput datos de un movimiento a registrar.
type MovementInput struct {
	ProductID     string
	BranchID      string
	TransactionID string
	Type          entity.TransactionType
	Delta         int64
	At            time.Time
}

// Key devuelve la partición del movimiento.
func (in MovementInput) Key() entity.StockKey {
	return entity.StockKey{ProductID: in.ProductID, BranchID: in.BranchID}
}

// Ledger registra movimientos y responde consultas de stock.
type Ledger struct {
	movements repository.StockMovementRepository
	txRunner  ports.TxRunner
	locks     *KeyedLocker
	cfg       Config
	now       func() time.Time
}

// NewLedger construye el ledger. movements se usa para lecturas fuera de una unidad de trabajo.
func NewLedger(movements repository.StockMovementRepository, txRunner ports.TxRunner, cfg Config) *Ledger {
	def := DefaultConfig()
	if cfg.GlobalHistoryLimit <= 0 {
		cfg.GlobalHistoryLimit = def.GlobalHistoryLimit
	}
	if cfg.ProductHistoryLimit <= 0 {
		cfg.ProductHistoryLimit = def.ProductHistoryLimit
	}
	if cfg.MaxHistoryLimit <= 0 {
		cfg.MaxHistoryLimit = def.MaxHistoryLimit
	}
	return &Ledger{
		movements: movements,
		txRunner:  txRunner,
		locks:     NewKeyedLocker(),
		cfg:       cfg,
		now:       time.Now,
	}
}

// Lock adquiere los locks por clave en orden canónico. Ver KeyedLocker.Lock.
func (l *Ledger) Lock(ctx context.Context, keys ...entity.StockKey) (func(), error) {
	return l.locks.Lock(ctx, keys...)
}

// Record agrega un movimiento usando los repositorios de la unidad de trabajo del caller.
// El caller debe tener el lock de la clave (Lock) durante toda la unidad de trabajo.
// Falla con InvalidMovementError si el balance quedaría negativo para un tipo que no repone
// stock, si el signo del delta no corresponde al tipo o si el delta es cero.
func (l *Ledger) Record(ctx context.Context, movements repository.StockMovementRepository, in MovementInput) (*entity.StockMovement, error) {
	if in.ProductID == "" {
		return nil, domain.Invalid("product_id", "requerido")
	}
	if in.BranchID == "" {
		return nil, domain.Invalid("branch_id", "requerido")
	}
	if in.TransactionID == "" {
		return nil, domain.Invalid("transaction_id", "todo movimiento debe referenciar una transacción")
	}
	if !in.Type.Valid() {
		return nil, domain.Invalid("type", "tipo de transacción desconocido")
	}
	if in.Delta == 0 || (in.Type.Consumes() && in.Delta > 0) || (in.Type.Replenishes() && in.Delta < 0) {
		return nil, &domain.InvalidMovementError{ProductID: in.ProductID, BranchID: in.BranchID, Delta: in.Delta}
	}

	key := in.Key()
	prior, err := movements.LatestBalance(ctx, key)
	if err != nil {
		return nil, domain.Persistence("leer balance "+key.String(), err)
	}
	balance := prior + in.Delta
	if balance < 0 && !in.Type.Replenishes() {
		return nil, &domain.InvalidMovementError{ProductID: in.ProductID, BranchID: in.BranchID, Delta: in.Delta, Balance: balance}
	}

	at := in.At
	if at.IsZero() {
		at = l.now()
	}
	m := &entity.StockMovement{
		ProductID:     in.ProductID,
		BranchID:      in.BranchID,
		TransactionID: in.TransactionID,
		Type:          in.Type,
		Delta:         in.Delta,
		Balance:       balance,
		CreatedAt:     at,
	}
	if err := movements.Append(ctx, m); err != nil {
		return nil, domain.Persistence("agregar movimiento "+key.String(), err)
	}
	return m, nil
}

// RecordMovement registra un único movimiento en su propia unidad de trabajo, tomando el
// lock de la clave.
func (l *Ledger) RecordMovement(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	unlock, err := l.Lock(ctx, in.Key())
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Una vez tomados los locks la escritura no se cancela: termina o aborta completa.
	wctx := context.WithoutCancel(ctx)
	var out *entity.StockMovement
	err = l.txRunner.Run(wctx, func(uow repository.UnitOfWork) error {
		m, err := l.Record(wctx, uow.Movements, in)
		if err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, domain.Persistence("registrar movimiento", err)
	}
	return out, nil
}

// CurrentStock balance del movimiento más reciente de la clave, o cero si no hay.
func (l *Ledger) CurrentStock(ctx context.Context, productID, branchID string) (int64, error) {
	if productID == "" || branchID == "" {
		return 0, domain.Invalid("product_id/branch_id", "requeridos")
	}
	qty, err := l.movements.LatestBalance(ctx, entity.StockKey{ProductID: productID, BranchID: branchID})
	if err != nil {
		return 0, domain.Persistence("stock actual", err)
	}
	return qty, nil
}

// History movimientos más reciente primero. productID vacío = historial global;
// branchID vacío = todas las sucursales.
// limit <= 0 usa el valor por defecto del alcance; se recorta a MaxHistoryLimit.
func (l *Ledger) History(ctx context.Context, productID, branchID string, limit int) ([]*entity.StockMovement, error) {
	limit = l.ResolveLimit(productID != "", limit)
	var (
		list []*entity.StockMovement
		err  error
	)
	if productID == "" {
		list, err = l.movements.ListRecent(ctx, branchID, limit)
	} else {
		list, err = l.movements.ListByProduct(ctx, productID, branchID, limit)
	}
	if err != nil {
		return nil, domain.Persistence("historial de movimientos", err)
	}
	if list == nil {
		list = []*entity.StockMovement{}
	}
	return list, nil
}

// ResolveLimit aplica el límite por defecto y el tope configurado.
func (l *Ledger) ResolveLimit(productScoped bool, limit int) int {
	if limit <= 0 {
		if productScoped {
			return l.cfg.ProductHistoryLimit
		}
		return l.cfg.GlobalHistoryLimit
	}
	if limit > l.cfg.MaxHistoryLimit {
		return l.cfg.MaxHistoryLimit
	}
	return limit
}
