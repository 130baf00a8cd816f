package repository

import (
	"context"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// StockMovementRepository define el puerto del ledger append-only.
type StockMovementRepository interface {
	// LatestBalance devuelve el balance del movimiento más reciente de la clave (0 si no hay).
	// Dentro de una unidad de trabajo bloquea la clave hasta el commit/rollback.
	LatestBalance(ctx context.Context, key entity.StockKey) (int64, error)
	// Append agrega el movimiento y materializa su balance como el actual de la clave.
	Append(ctx context.Context, m *entity.StockMovement) error
	// ListRecent movimientos más reciente primero (branchID vacío = todas las sucursales).
	ListRecent(ctx context.Context, branchID string, limit int) ([]*entity.StockMovement, error)
	// ListByProduct movimientos de un producto (branchID vacío = todas las sucursales).
	ListByProduct(ctx context.Context, productID, branchID string, limit int) ([]*entity.StockMovement, error)
}
