package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// ExpenseRepository puerto de lectura de gastos operativos (OPEX), entrada externa al ledger.
type ExpenseRepository interface {
	// SumByBranch suma los gastos de la sucursal en el período (cero si no hay).
	SumByBranch(ctx context.Context, branchID string, period entity.Period) (decimal.Decimal, error)
}
