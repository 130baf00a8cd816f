package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger/internal/application/inventory"
	"github.com/jhoicas/retail-ledger/internal/application/ledger"
	"github.com/jhoicas/retail-ledger/internal/application/ports"
	"github.com/jhoicas/retail-ledger/internal/application/readcache"
	"github.com/jhoicas/retail-ledger/internal/application/report"
	"github.com/jhoicas/retail-ledger/internal/application/transaction"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/memory"
)

type lookups struct {
	ports.NopMetrics
	hits map[string]int
}

func (l *lookups) CacheLookup(class string, hit bool) {
	if hit {
		l.hits[class]++
	}
}

type env struct {
	reads   *inventory.ReadService
	proc    *transaction.Processor
	lookups *lookups
}

func newEnv(t *testing.T) *env {
	t.Helper()
	s := memory.NewStore()
	s.AddBranch(entity.Branch{ID: "b1", Name: "Centro"})
	s.AddProduct(entity.Product{ID: "p1", Name: "Arroz", UnitOfSale: entity.UnitPiece,
		CostPerUnit: decimal.NewFromInt(10), SellingPrice: decimal.NewFromInt(15)})

	lk := &lookups{hits: map[string]int{}}
	c := readcache.New(cache.NewMemoryStore(), readcache.DefaultTTL(), lk, nil)
	l := ledger.NewLedger(s.Movements(), s, ledger.DefaultConfig())
	agg := report.NewAggregator(s.Branches(), s.Transactions(), s.Expenses())
	return &env{
		reads:   inventory.NewReadService(s.Branches(), s.Products(), l, agg, c),
		proc:    transaction.NewProcessor(s.Branches(), s.Products(), s.Transactions(), l, s, c, nil, nil),
		lookups: lk,
	}
}

func (e *env) apply(t *testing.T, typ entity.TransactionType, qty int64) {
	t.Helper()
	_, err := e.proc.Apply(context.Background(), transaction.ApplyInput{
		Type: typ, BranchID: "b1", Items: []transaction.ItemInput{{ProductID: "p1", Quantity: qty}},
	})
	require.NoError(t, err)
}

func TestGetCurrentStock_CacheSeInvalidaConCadaTransaccion(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	lvl, err := e.reads.GetCurrentStock(ctx, "p1", "b1")
	require.NoError(t, err)
	assert.Zero(t, lvl.Quantity)

	e.apply(t, entity.TransactionPurchase, 20)
	lvl, err = e.reads.GetCurrentStock(ctx, "p1", "b1")
	require.NoError(t, err)
	assert.Equal(t, int64(20), lvl.Quantity)

	lvl, err = e.reads.GetCurrentStock(ctx, "p1", "b1")
	require.NoError(t, err)
	assert.Equal(t, int64(20), lvl.Quantity)
	assert.Equal(t, 1, e.lookups.hits[readcache.ClassStock])

	e.apply(t, entity.TransactionSale, 5)
	lvl, err = e.reads.GetCurrentStock(ctx, "p1", "b1")
	require.NoError(t, err)
	assert.Equal(t, int64(15), lvl.Quantity)
}

func TestGetCurrentStock_Desconocidos(t *testing.T) {
	e := newEnv(t)
	_, err := e.reads.GetCurrentStock(context.Background(), "p9", "b1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = e.reads.GetCurrentStock(context.Background(), "p1", "b9")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = e.reads.GetCurrentStock(context.Background(), "", "b1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetStockMovements_ReflejaMutaciones(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.apply(t, entity.TransactionPurchase, 20)

	list, err := e.reads.GetStockMovements(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)

	e.apply(t, entity.TransactionSale, 5)
	list, err = e.reads.GetStockMovements(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(-5), list[0].Delta)
	assert.Equal(t, int64(15), list[0].Balance)

	byProduct, err := e.reads.GetStockMovementsByProduct(ctx, "p1", "", 1)
	require.NoError(t, err)
	require.Len(t, byProduct, 1)
	assert.Equal(t, int64(15), byProduct[0].Balance)

	_, err = e.reads.GetStockMovementsByProduct(ctx, "p9", "", 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetBranchReport_CacheadoEInvalidado(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.apply(t, entity.TransactionPurchase, 20)
	e.apply(t, entity.TransactionSale, 5)

	now := time.Now().UTC()
	req := report.Request{BranchID: "b1", Period: entity.MonthPeriod(now.Year(), now.Month(), time.UTC)}
	rep, err := e.reads.GetBranchReport(ctx, req)
	require.NoError(t, err)
	assert.True(t, rep.Revenue.Equal(decimal.NewFromInt(75)))

	cached, err := e.reads.GetBranchReport(ctx, req)
	require.NoError(t, err)
	assert.True(t, cached.GrossProfit.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, 1, e.lookups.hits[readcache.ClassReport])

	e.apply(t, entity.TransactionSale, 1)
	rep, err = e.reads.GetBranchReport(ctx, req)
	require.NoError(t, err)
	assert.True(t, rep.Revenue.Equal(decimal.NewFromInt(90)))
}
