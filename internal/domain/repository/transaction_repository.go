package repository

import (
	"context"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// TransactionRepository define el puerto de persistencia para transacciones y sus líneas.
type TransactionRepository interface {
	// Create persiste cabecera y líneas. Asigna IDs vacíos.
	Create(ctx context.Context, tx *entity.Transaction) error
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	// ListItems devuelve las líneas de la sucursal cuyo CreatedAt cae en el período.
	ListItems(ctx context.Context, branchID string, period entity.Period) ([]entity.ItemRecord, error)
}
