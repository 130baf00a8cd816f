package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperatingExpense gasto operativo (OPEX) de una sucursal. Entrada externa al ledger.
type OperatingExpense struct {
	ID          string
	BranchID    string
	Category    string
	Amount      decimal.Decimal
	Date        time.Time
	Description string
}
