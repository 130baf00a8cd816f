package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo ledger append-only. stock_balances materializa el balance vigente de
// cada clave; es la fila que se bloquea (SELECT FOR UPDATE) dentro de una transacción.
type StockMovementRepo struct {
	q       Querier
	locking bool
}

// NewStockMovementRepository adaptador para lecturas fuera de transacción.
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

func newLockingStockMovementRepository(tx pgx.Tx) *StockMovementRepo {
	return &StockMovementRepo{q: tx, locking: true}
}

// LatestBalance balance vigente de la clave. Dentro de una tx crea la fila si no existe y la
// bloquea hasta el commit.
func (r *StockMovementRepo) LatestBalance(ctx context.Context, key entity.StockKey) (int64, error) {
	query := `SELECT quantity FROM stock_balances WHERE product_id = $1 AND branch_id = $2`
	if r.locking {
		_, err := r.q.Exec(ctx, `
			INSERT INTO stock_balances (product_id, branch_id, quantity, last_seq, updated_at)
			VALUES ($1, $2, 0, 0, now())
			ON CONFLICT (product_id, branch_id) DO NOTHING`,
			key.ProductID, key.BranchID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return 0, domain.NotFound("product/branch", key.String())
			}
			return 0, fmt.Errorf("ensure stock balance: %w", err)
		}
		query += ` FOR UPDATE`
	}
	var qty int64
	err := r.q.QueryRow(ctx, query, key.ProductID, key.BranchID).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get stock balance: %w", err)
	}
	return qty, nil
}

// Append inserta el movimiento (seq asignado por la secuencia) y actualiza el balance vigente.
func (r *StockMovementRepo) Append(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = newID()
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO stock_movements (id, product_id, branch_id, transaction_id, type, delta, balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq`,
		m.ID, m.ProductID, m.BranchID, m.TransactionID, string(m.Type), m.Delta, m.Balance, m.CreatedAt,
	).Scan(&m.Seq)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Invalid("transaction_id", "la transacción referenciada no existe")
		}
		return fmt.Errorf("insert stock movement: %w", err)
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO stock_balances (product_id, branch_id, quantity, last_seq, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (product_id, branch_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, last_seq = EXCLUDED.last_seq, updated_at = EXCLUDED.updated_at`,
		m.ProductID, m.BranchID, m.Balance, m.Seq, m.CreatedAt)
	if err != nil {
		if isCheckViolation(err) {
			return &domain.InvalidMovementError{ProductID: m.ProductID, BranchID: m.BranchID, Delta: m.Delta, Balance: m.Balance}
		}
		return fmt.Errorf("upsert stock balance: %w", err)
	}
	return nil
}

const movementColumns = `id, seq, product_id, branch_id, transaction_id, type, delta, balance, created_at`

// ListRecent últimos movimientos; branchID vacío = todas las sucursales.
func (r *StockMovementRepo) ListRecent(ctx context.Context, branchID string, limit int) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+movementColumns+`
		FROM stock_movements
		WHERE ($1 = '' OR branch_id = $1)
		ORDER BY seq DESC LIMIT $2`,
		branchID, limit)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	return scanMovements(rows)
}

// ListByProduct últimos movimientos de un producto; branchID vacío = todas las sucursales.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID, branchID string, limit int) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+movementColumns+`
		FROM stock_movements
		WHERE product_id = $1 AND ($2 = '' OR branch_id = $2)
		ORDER BY seq DESC LIMIT $3`,
		productID, branchID, limit)
	if err != nil {
		return nil, fmt.Errorf("list product movements: %w", err)
	}
	return scanMovements(rows)
}

func scanMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	defer rows.Close()
	out := make([]*entity.StockMovement, 0)
	for rows.Next() {
		var (
			m   entity.StockMovement
			typ string
		)
		if err := rows.Scan(&m.ID, &m.Seq, &m.ProductID, &m.BranchID, &m.TransactionID, &typ, &m.Delta, &m.Balance, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		m.Type = entity.TransactionType(typ)
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock movements: %w", err)
	}
	return out, nil
}
