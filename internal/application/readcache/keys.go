package readcache

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Clases de clave (para TTL y métricas).
const (
	ClassStock     = "stock"
	ClassMovements = "movements"
	ClassReport    = "report"
)

// MovementsGroup agrupa todos los historiales de movimientos.
const MovementsGroup = "movements"

// StockGroup agrupa las entradas de stock de un producto en cualquier sucursal.
func StockGroup(productID string) string { return "stock:" + productID }

// ReportGroup agrupa los reportes de una sucursal para cualquier período.
func ReportGroup(branchID string) string { return "report:" + branchID }

// StockKey clave del stock actual de (producto, sucursal).
func StockKey(productID, branchID string) string {
	return fmt.Sprintf("stock:%s:%s", productID, branchID)
}

// RecentMovementsKey clave del historial reciente (branchID vacío = todas).
func RecentMovementsKey(branchID string, limit int) string {
	return fmt.Sprintf("movements:recent:%s:%d", branchID, limit)
}

// ProductMovementsKey clave del historial de un producto (branchID vacío = todas).
func ProductMovementsKey(productID, branchID string, limit int) string {
	return fmt.Sprintf("movements:product:%s:%s:%d", productID, branchID, limit)
}

// ReportKey clave de un reporte; incluye los parámetros que alteran el resultado.
func ReportKey(branchID string, from, to time.Time, opex, target *decimal.Decimal) string {
	return fmt.Sprintf("report:%s:%d:%d:%s:%s",
		branchID, from.UnixNano(), to.UnixNano(), optional(opex), optional(target))
}

func optional(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.String()
}
