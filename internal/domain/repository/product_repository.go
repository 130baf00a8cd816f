package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// AddSales actualiza los agregados desnormalizados (StockSold, MonthSales) en forma
	// incremental. Si el período cambió, MonthSales se reinicia antes de sumar.
	// Solo debe llamarse dentro de la unidad de trabajo que escribe los movimientos.
	AddSales(ctx context.Context, productID string, units int64, revenue decimal.Decimal, at time.Time) error
}
