package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Period intervalo semiabierto [From, To).
type Period struct {
	From time.Time
	To   time.Time
}

// MonthPeriod devuelve el mes calendario completo en la zona indicada.
func MonthPeriod(year int, month time.Month, loc *time.Location) Period {
	if loc == nil {
		loc = time.UTC
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return Period{From: from, To: from.AddDate(0, 1, 0)}
}

// Contains indica si t cae dentro del período.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.From) && t.Before(p.To)
}

// Validate exige From < To.
func (p Period) Validate() error {
	if p.From.IsZero() || p.To.IsZero() || !p.From.Before(p.To) {
		return fmt.Errorf("período inválido: %s - %s", p.From.Format(time.RFC3339), p.To.Format(time.RFC3339))
	}
	return nil
}

// BranchReport reporte financiero de una sucursal para un período. Derivado y recomputable:
// no guarda marcas de tiempo de generación para que dos cálculos iguales sean idénticos.
type BranchReport struct {
	BranchID                string
	Period                  Period
	Revenue                 decimal.Decimal
	CostOfGoods             decimal.Decimal
	GrossProfit             decimal.Decimal
	OperatingExpenses       decimal.Decimal
	NetProfit               decimal.Decimal
	TargetProfit            *decimal.Decimal
	RemainingRequiredProfit *decimal.Decimal // nil si no hay meta
	SalesCount              int
	UnitsSold               int64
	DamageLoss              decimal.Decimal // costo de lo dado de baja (informativo)
	ReturnsValue            decimal.Decimal // valor de venta devuelto (informativo)
}
