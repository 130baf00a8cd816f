package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo cabeceras y líneas de transacciones.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

func newID() string { return uuid.New().String() }

// Create inserta cabecera y líneas en un solo batch.
func (r *TransactionRepo) Create(ctx context.Context, tx *entity.Transaction) error {
	if tx.ID == "" {
		tx.ID = newID()
	}
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO transactions (id, type, branch_id, created_by, reference, total_cost, total_price, profit, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		tx.ID, string(tx.Type), tx.BranchID, tx.CreatedBy, tx.Reference,
		tx.TotalCost, tx.TotalPrice, tx.Profit, tx.CreatedAt)
	for i := range tx.Items {
		it := &tx.Items[i]
		if it.ID == "" {
			it.ID = newID()
		}
		it.TransactionID = tx.ID
		batch.Queue(`
			INSERT INTO transaction_items (id, transaction_id, line, product_id, quantity, unit_cost, unit_price, total_cost, total_price, profit)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			it.ID, it.TransactionID, it.Line, it.ProductID, it.Quantity,
			it.UnitCost, it.UnitPrice, it.TotalCost, it.TotalPrice, it.Profit)
	}

	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			switch {
			case isUniqueViolation(err):
				return domain.Invalid("id", "transacción duplicada")
			case isForeignKeyViolation(err):
				return domain.Invalid("items", "producto o sucursal inexistente")
			}
			return fmt.Errorf("insert transaction: %w", err)
		}
	}
	return br.Close()
}

// GetByID cabecera con sus líneas en orden.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	var (
		tx  entity.Transaction
		typ string
	)
	err := r.q.QueryRow(ctx, `
		SELECT id, type, branch_id, created_by, reference, total_cost, total_price, profit, created_at
		FROM transactions WHERE id = $1`, id,
	).Scan(&tx.ID, &typ, &tx.BranchID, &tx.CreatedBy, &tx.Reference, &tx.TotalCost, &tx.TotalPrice, &tx.Profit, &tx.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	tx.Type = entity.TransactionType(typ)

	rows, err := r.q.Query(ctx, `
		SELECT id, transaction_id, line, product_id, quantity, unit_cost, unit_price, total_cost, total_price, profit
		FROM transaction_items WHERE transaction_id = $1 ORDER BY line`, id)
	if err != nil {
		return nil, fmt.Errorf("list transaction items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.TransactionItem
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.Line, &it.ProductID, &it.Quantity,
			&it.UnitCost, &it.UnitPrice, &it.TotalCost, &it.TotalPrice, &it.Profit); err != nil {
			return nil, fmt.Errorf("scan transaction item: %w", err)
		}
		tx.Items = append(tx.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction items: %w", err)
	}
	return &tx, nil
}

// ListItems líneas de la sucursal con transacción en [From, To).
func (r *TransactionRepo) ListItems(ctx context.Context, branchID string, period entity.Period) ([]entity.ItemRecord, error) {
	rows, err := r.q.Query(ctx, `
		SELECT t.id, t.type, t.branch_id, t.created_at,
		       i.id, i.line, i.product_id, i.quantity, i.unit_cost, i.unit_price, i.total_cost, i.total_price, i.profit
		FROM transactions t
		JOIN transaction_items i ON i.transaction_id = t.id
		WHERE t.branch_id = $1 AND t.created_at >= $2 AND t.created_at < $3
		ORDER BY t.created_at, t.id, i.line`,
		branchID, period.From, period.To)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var out []entity.ItemRecord
	for rows.Next() {
		var (
			rec entity.ItemRecord
			typ string
		)
		if err := rows.Scan(&rec.TransactionID, &typ, &rec.BranchID, &rec.CreatedAt,
			&rec.Item.ID, &rec.Item.Line, &rec.Item.ProductID, &rec.Item.Quantity,
			&rec.Item.UnitCost, &rec.Item.UnitPrice, &rec.Item.TotalCost, &rec.Item.TotalPrice, &rec.Item.Profit); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		rec.Type = entity.TransactionType(typ)
		rec.Item.TransactionID = rec.TransactionID
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return out, nil
}
