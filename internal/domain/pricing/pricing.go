// Package pricing contiene la aritmética monetaria por línea (servicio de dominio puro).
// Todo el cálculo usa decimal base 10 exacto: sumar en cualquier orden da el mismo resultado.
package pricing

import "github.com/shopspring/decimal"

// MoneyScale decimales permitidos en montos de entrada (unidad mínima de moneda).
const MoneyScale = 2

// ItemTotalCost = CostoUnitario × Cantidad
func ItemTotalCost(costPerUnit decimal.Decimal, quantity int64) decimal.Decimal {
	return costPerUnit.Mul(decimal.NewFromInt(quantity))
}

// ItemTotalPrice = PrecioVenta × Cantidad
func ItemTotalPrice(sellingPrice decimal.Decimal, quantity int64) decimal.Decimal {
	return sellingPrice.Mul(decimal.NewFromInt(quantity))
}

// ProfitAmount = (PrecioVenta − CostoUnitario) × Cantidad. Puede ser negativo (pérdida).
func ProfitAmount(costPerUnit, sellingPrice decimal.Decimal, quantity int64) decimal.Decimal {
	return sellingPrice.Sub(costPerUnit).Mul(decimal.NewFromInt(quantity))
}

// LineTotals montos derivados de una línea.
type LineTotals struct {
	TotalCost  decimal.Decimal
	TotalPrice decimal.Decimal
	Profit     decimal.Decimal
}

// Totals calcula costo, precio y utilidad de una línea en una sola llamada.
func Totals(costPerUnit, sellingPrice decimal.Decimal, quantity int64) LineTotals {
	return LineTotals{
		TotalCost:  ItemTotalCost(costPerUnit, quantity),
		TotalPrice: ItemTotalPrice(sellingPrice, quantity),
		Profit:     ProfitAmount(costPerUnit, sellingPrice, quantity),
	}
}

// ValidMoney exige un monto no negativo con a lo sumo MoneyScale decimales.
func ValidMoney(d decimal.Decimal) bool {
	if d.IsNegative() {
		return false
	}
	return d.Equal(d.Truncate(MoneyScale))
}
