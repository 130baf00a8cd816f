package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

var _ repository.ExpenseRepository = (*ExpenseRepo)(nil)

// ExpenseRepo lectura de gastos operativos.
type ExpenseRepo struct {
	q Querier
}

// NewExpenseRepository construye el adaptador.
func NewExpenseRepository(q Querier) *ExpenseRepo {
	return &ExpenseRepo{q: q}
}

// SumByBranch suma los gastos de la sucursal en [From, To).
func (r *ExpenseRepo) SumByBranch(ctx context.Context, branchID string, period entity.Period) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM operating_expenses
		WHERE branch_id = $1 AND spent_at >= $2 AND spent_at < $3`,
		branchID, period.From, period.To,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum expenses: %w", err)
	}
	return sum, nil
}
