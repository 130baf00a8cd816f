package repository

import (
	"context"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// BranchRepository define el puerto de lectura de sucursales.
type BranchRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Branch, error)
}
