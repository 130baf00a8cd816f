// Package memory implementa los puertos de persistencia en memoria (modo demo y tests).
// Las escrituras dentro de Run se acumulan en un buffer y se aplican de una sola vez al
// confirmar, así un error descarta todo sin efectos parciales.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/application/ports"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

var (
	_ ports.TxRunner                     = (*Store)(nil)
	_ repository.BranchRepository        = (*branchRepo)(nil)
	_ repository.ProductRepository       = (*productRepo)(nil)
	_ repository.TransactionRepository   = (*transactionRepo)(nil)
	_ repository.StockMovementRepository = (*movementRepo)(nil)
	_ repository.ExpenseRepository       = (*expenseRepo)(nil)
)

// Store almacén en memoria seguro para uso concurrente.
type Store struct {
	mu           sync.RWMutex
	branches     map[string]entity.Branch
	products     map[string]entity.Product
	transactions map[string]*entity.Transaction
	txOrder      []string
	movements    []*entity.StockMovement
	balances     map[entity.StockKey]int64
	expenses     []entity.OperatingExpense
	seq          int64
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		branches:     make(map[string]entity.Branch),
		products:     make(map[string]entity.Product),
		transactions: make(map[string]*entity.Transaction),
		balances:     make(map[entity.StockKey]int64),
	}
}

// AddBranch registra una sucursal (administración, fuera del ledger).
func (s *Store) AddBranch(b entity.Branch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.branches[b.ID] = b
}

// AddProduct registra o reemplaza un producto (administración, fuera del ledger).
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// AddExpense registra un gasto operativo (entrada externa).
func (s *Store) AddExpense(e entity.OperatingExpense) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	s.expenses = append(s.expenses, e)
}

// Branches repositorio de sucursales.
func (s *Store) Branches() repository.BranchRepository { return &branchRepo{s: s} }

// Products repositorio de productos en modo autocommit.
func (s *Store) Products() repository.ProductRepository { return &productRepo{s: s} }

// Transactions repositorio de transacciones en modo autocommit.
func (s *Store) Transactions() repository.TransactionRepository { return &transactionRepo{s: s} }

// Movements repositorio del ledger en modo autocommit.
func (s *Store) Movements() repository.StockMovementRepository { return &movementRepo{s: s} }

// Expenses repositorio de OPEX.
func (s *Store) Expenses() repository.ExpenseRepository { return &expenseRepo{s: s} }

// TransactionCount transacciones confirmadas.
func (s *Store) TransactionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txOrder)
}

// MovementCount movimientos confirmados.
func (s *Store) MovementCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.movements)
}

// Run ejecuta fn con repositorios atados a una unidad de trabajo y aplica el buffer solo si
// fn no devuelve error.
func (s *Store) Run(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	u := &unit{s: s, balances: make(map[entity.StockKey]int64)}
	err := fn(repository.UnitOfWork{
		Transactions: &transactionRepo{s: s, u: u},
		Movements:    &movementRepo{s: s, u: u},
		Products:     &productRepo{s: s, u: u},
	})
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.commit(u)
	return nil
}

// unit buffer de escrituras de una unidad de trabajo.
type unit struct {
	s        *Store
	txs      []*entity.Transaction
	movs     []*entity.StockMovement
	balances map[entity.StockKey]int64
	sales    []saleDelta
}

type saleDelta struct {
	productID string
	units     int64
	revenue   decimal.Decimal
	at        time.Time
}

func (s *Store) commit(u *unit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range u.txs {
		s.insertTransaction(tx)
	}
	for _, m := range u.movs {
		s.appendMovement(m)
	}
	for _, d := range u.sales {
		s.addSales(d)
	}
}

func (s *Store) insertTransaction(tx *entity.Transaction) {
	s.transactions[tx.ID] = cloneTransaction(tx)
	s.txOrder = append(s.txOrder, tx.ID)
}

func (s *Store) appendMovement(m *entity.StockMovement) {
	s.seq++
	m.Seq = s.seq
	cp := *m
	s.movements = append(s.movements, &cp)
	s.balances[entity.StockKey{ProductID: m.ProductID, BranchID: m.BranchID}] = m.Balance
}

func (s *Store) addSales(d saleDelta) {
	p, ok := s.products[d.productID]
	if !ok {
		return
	}
	period := entity.SalesPeriod(d.at)
	if p.MonthSalesPeriod != period {
		p.MonthSales = decimal.Zero
		p.MonthSalesPeriod = period
	}
	p.StockSold += d.units
	p.MonthSales = p.MonthSales.Add(d.revenue)
	p.UpdatedAt = d.at
	s.products[d.productID] = p
}

// ── Sucursales ────────────────────────────────────────────────────────────────

type branchRepo struct{ s *Store }

func (r *branchRepo) GetByID(_ context.Context, id string) (*entity.Branch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.branches[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

// ── Productos ─────────────────────────────────────────────────────────────────

type productRepo struct {
	s *Store
	u *unit
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *productRepo) AddSales(_ context.Context, productID string, units int64, revenue decimal.Decimal, at time.Time) error {
	d := saleDelta{productID: productID, units: units, revenue: revenue, at: at}
	if r.u != nil {
		r.u.sales = append(r.u.sales, d)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.addSales(d)
	return nil
}

// ── Transacciones ─────────────────────────────────────────────────────────────

type transactionRepo struct {
	s *Store
	u *unit
}

func (r *transactionRepo) Create(_ context.Context, tx *entity.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	for i := range tx.Items {
		if tx.Items[i].ID == "" {
			tx.Items[i].ID = uuid.New().String()
		}
		tx.Items[i].TransactionID = tx.ID
	}
	if r.u != nil {
		r.u.txs = append(r.u.txs, cloneTransaction(tx))
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.insertTransaction(tx)
	return nil
}

func (r *transactionRepo) GetByID(_ context.Context, id string) (*entity.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	tx, ok := r.s.transactions[id]
	if !ok {
		return nil, nil
	}
	return cloneTransaction(tx), nil
}

func (r *transactionRepo) ListItems(_ context.Context, branchID string, period entity.Period) ([]entity.ItemRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []entity.ItemRecord
	for _, id := range r.s.txOrder {
		tx := r.s.transactions[id]
		if tx.BranchID != branchID || !period.Contains(tx.CreatedAt) {
			continue
		}
		for _, it := range tx.Items {
			out = append(out, entity.ItemRecord{
				TransactionID: tx.ID,
				Type:          tx.Type,
				BranchID:      tx.BranchID,
				CreatedAt:     tx.CreatedAt,
				Item:          it,
			})
		}
	}
	return out, nil
}

func cloneTransaction(tx *entity.Transaction) *entity.Transaction {
	cp := *tx
	cp.Items = append([]entity.TransactionItem(nil), tx.Items...)
	return &cp
}

// ── Movimientos ───────────────────────────────────────────────────────────────

type movementRepo struct {
	s *Store
	u *unit
}

func (r *movementRepo) LatestBalance(_ context.Context, key entity.StockKey) (int64, error) {
	if r.u != nil {
		if b, ok := r.u.balances[key]; ok {
			return b, nil
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.balances[key], nil
}

func (r *movementRepo) Append(_ context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if r.u != nil {
		r.u.movs = append(r.u.movs, m)
		r.u.balances[entity.StockKey{ProductID: m.ProductID, BranchID: m.BranchID}] = m.Balance
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.appendMovement(m)
	return nil
}

func (r *movementRepo) ListRecent(_ context.Context, branchID string, limit int) ([]*entity.StockMovement, error) {
	return r.scan(limit, func(m *entity.StockMovement) bool {
		return branchID == "" || m.BranchID == branchID
	}), nil
}

func (r *movementRepo) ListByProduct(_ context.Context, productID, branchID string, limit int) ([]*entity.StockMovement, error) {
	return r.scan(limit, func(m *entity.StockMovement) bool {
		return m.ProductID == productID && (branchID == "" || m.BranchID == branchID)
	}), nil
}

func (r *movementRepo) scan(limit int, match func(*entity.StockMovement) bool) []*entity.StockMovement {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.StockMovement, 0, limit)
	for i := len(r.s.movements) - 1; i >= 0 && len(out) < limit; i-- {
		if m := r.s.movements[i]; match(m) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out
}

// ── Gastos operativos ─────────────────────────────────────────────────────────

type expenseRepo struct{ s *Store }

func (r *expenseRepo) SumByBranch(_ context.Context, branchID string, period entity.Period) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sum := decimal.Zero
	for _, e := range r.s.expenses {
		if e.BranchID == branchID && period.Contains(e.Date) {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}
