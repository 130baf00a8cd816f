package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnitOfSale forma de venta del producto.
type UnitOfSale string

const (
	UnitPiece  UnitOfSale = "PIECE"  // por unidad
	UnitWeight UnitOfSale = "WEIGHT" // por peso; la cantidad se expresa en gramos
)

// Valid indica si la unidad pertenece al conjunto cerrado.
func (u UnitOfSale) Valid() bool {
	return u == UnitPiece || u == UnitWeight
}

// Product representa un producto del catálogo.
// CostPerUnit y SellingPrice son por unidad base (pieza o gramo).
// StockSold y MonthSales son agregados desnormalizados del ledger: solo el procesador de
// transacciones los modifica, dentro de la misma unidad de trabajo que los movimientos.
type Product struct {
	ID               string
	SKU              string
	Name             string
	CategoryID       string
	BranchID         string // vacío: disponible en todas las sucursales
	UnitOfSale       UnitOfSale
	CostPerUnit      decimal.Decimal
	SellingPrice     decimal.Decimal
	StockSold        int64           // unidades vendidas (histórico)
	MonthSales       decimal.Decimal // ingresos por venta del mes MonthSalesPeriod
	MonthSalesPeriod string          // "2006-01"
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AvailableAt indica si el producto puede moverse en la sucursal indicada.
func (p *Product) AvailableAt(branchID string) bool {
	return p.BranchID == "" || p.BranchID == branchID
}

// SalesPeriod devuelve la clave de mes usada por MonthSales.
func SalesPeriod(t time.Time) string {
	return t.UTC().Format("2006-01")
}
