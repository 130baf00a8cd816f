package ports

import (
	"context"

	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción del almacén, pasando repositorios
// atados a esa transacción. Si fn devuelve error se hace Rollback; si no, Commit.
// Garantiza atomicidad para el ledger: transacción + movimientos + agregados, o nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(uow repository.UnitOfWork) error) error
}
