package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `
		SELECT id, sku, name, COALESCE(category_id, ''), COALESCE(branch_id, ''), unit_of_sale,
		       cost_per_unit, selling_price, stock_sold, month_sales, month_sales_period,
		       created_at, updated_at
		FROM products WHERE id = $1`
	var (
		p    entity.Product
		unit string
	)
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.SKU, &p.Name, &p.CategoryID, &p.BranchID, &unit,
		&p.CostPerUnit, &p.SellingPrice, &p.StockSold, &p.MonthSales, &p.MonthSalesPeriod,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	p.UnitOfSale = entity.UnitOfSale(unit)
	return &p, nil
}

// AddSales suma unidades e ingresos a los agregados; si cambió el mes reinicia month_sales.
func (r *ProductRepo) AddSales(ctx context.Context, productID string, units int64, revenue decimal.Decimal, at time.Time) error {
	query := `
		UPDATE products SET
			stock_sold = stock_sold + $2,
			month_sales = CASE WHEN month_sales_period = $4 THEN month_sales + $3 ELSE $3 END,
			month_sales_period = $4,
			updated_at = $5
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, productID, units, revenue, entity.SalesPeriod(at), at)
	if err != nil {
		return fmt.Errorf("update product aggregates: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("product", productID)
	}
	return nil
}
