package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger/internal/application/report"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/memory"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func rec(txID string, typ entity.TransactionType, qty int64, cost, price string) entity.ItemRecord {
	return entity.ItemRecord{
		TransactionID: txID,
		Type:          typ,
		Item: entity.TransactionItem{
			Quantity:   qty,
			TotalCost:  dec(cost),
			TotalPrice: dec(price),
		},
	}
}

func TestAggregate(t *testing.T) {
	items := []entity.ItemRecord{
		rec("t1", entity.TransactionSale, 3, "30", "45"),
		rec("t1", entity.TransactionSale, 1, "5.50", "9.99"),
		rec("t2", entity.TransactionSale, 2, "20", "30"),
		rec("t3", entity.TransactionPurchase, 100, "1000", "1500"),
		rec("t4", entity.TransactionDamage, 1, "10", "15"),
		rec("t5", entity.TransactionReturn, 1, "10", "15"),
	}
	target := dec("100")

	rep := report.Aggregate(items, dec("20"), &target)

	assert.True(t, rep.Revenue.Equal(dec("84.99")), rep.Revenue.String())
	assert.True(t, rep.CostOfGoods.Equal(dec("55.50")))
	assert.True(t, rep.GrossProfit.Equal(dec("29.49")))
	assert.True(t, rep.NetProfit.Equal(dec("9.49")))
	require.NotNil(t, rep.RemainingRequiredProfit)
	assert.True(t, rep.RemainingRequiredProfit.Equal(dec("90.51")))
	assert.Equal(t, 2, rep.SalesCount)
	assert.Equal(t, int64(6), rep.UnitsSold)
	assert.True(t, rep.DamageLoss.Equal(dec("10")))
	assert.True(t, rep.ReturnsValue.Equal(dec("15")))
}

func TestAggregate_SinMetaNoHayRestante(t *testing.T) {
	rep := report.Aggregate(nil, decimal.Zero, nil)
	assert.Nil(t, rep.TargetProfit)
	assert.Nil(t, rep.RemainingRequiredProfit)
	assert.True(t, rep.NetProfit.IsZero())
}

func TestAggregate_PerdidaNeta(t *testing.T) {
	rep := report.Aggregate([]entity.ItemRecord{rec("t1", entity.TransactionSale, 1, "10", "12")}, dec("50"), nil)
	assert.True(t, rep.NetProfit.Equal(dec("-48")))
}

func seeded(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.NewStore()
	s.AddBranch(entity.Branch{ID: "b1", Name: "Centro"})
	s.AddBranch(entity.Branch{ID: "b2", Name: "Norte"})
	ctx := context.Background()
	march := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	april := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	for _, tx := range []*entity.Transaction{
		{ID: "t1", Type: entity.TransactionSale, BranchID: "b1", CreatedAt: march, Items: []entity.TransactionItem{
			{ProductID: "p1", Quantity: 2, TotalCost: dec("20"), TotalPrice: dec("30")},
		}},
		{ID: "t2", Type: entity.TransactionSale, BranchID: "b2", CreatedAt: march, Items: []entity.TransactionItem{
			{ProductID: "p1", Quantity: 9, TotalCost: dec("90"), TotalPrice: dec("135")},
		}},
		{ID: "t3", Type: entity.TransactionSale, BranchID: "b1", CreatedAt: april, Items: []entity.TransactionItem{
			{ProductID: "p1", Quantity: 1, TotalCost: dec("10"), TotalPrice: dec("15")},
		}},
	} {
		require.NoError(t, s.Transactions().Create(ctx, tx))
	}
	s.AddExpense(entity.OperatingExpense{BranchID: "b1", Category: "arriendo", Amount: dec("4"), Date: march})
	s.AddExpense(entity.OperatingExpense{BranchID: "b1", Category: "luz", Amount: dec("1"), Date: april})
	return s
}

func TestGenerate_FiltraSucursalYPeriodo(t *testing.T) {
	s := seeded(t)
	agg := report.NewAggregator(s.Branches(), s.Transactions(), s.Expenses())
	period := entity.MonthPeriod(2024, time.March, time.UTC)

	rep, err := agg.Generate(context.Background(), report.Request{BranchID: "b1", Period: period})
	require.NoError(t, err)
	assert.Equal(t, "b1", rep.BranchID)
	assert.True(t, rep.Revenue.Equal(dec("30")))
	assert.True(t, rep.OperatingExpenses.Equal(dec("4")), "OPEX registrados del período")
	assert.True(t, rep.NetProfit.Equal(dec("6")))
	assert.Equal(t, int64(2), rep.UnitsSold)
}

func TestGenerate_OpexExplicitoYMeta(t *testing.T) {
	s := seeded(t)
	agg := report.NewAggregator(s.Branches(), s.Transactions(), s.Expenses())
	opex, target := dec("2.5"), dec("10")

	rep, err := agg.Generate(context.Background(), report.Request{
		BranchID:          "b1",
		Period:            entity.MonthPeriod(2024, time.March, time.UTC),
		OperatingExpenses: &opex,
		TargetProfit:      &target,
	})
	require.NoError(t, err)
	assert.True(t, rep.NetProfit.Equal(dec("7.5")))
	assert.True(t, rep.RemainingRequiredProfit.Equal(dec("2.5")))
}

func TestGenerate_Idempotente(t *testing.T) {
	s := seeded(t)
	agg := report.NewAggregator(s.Branches(), s.Transactions(), s.Expenses())
	req := report.Request{BranchID: "b1", Period: entity.MonthPeriod(2024, time.March, time.UTC)}

	a, err := agg.Generate(context.Background(), req)
	require.NoError(t, err)
	b, err := agg.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerate_Errores(t *testing.T) {
	s := seeded(t)
	agg := report.NewAggregator(s.Branches(), s.Transactions(), s.Expenses())
	march := entity.MonthPeriod(2024, time.March, time.UTC)
	neg := dec("-1")

	_, err := agg.Generate(context.Background(), report.Request{BranchID: "b9", Period: march})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = agg.Generate(context.Background(), report.Request{BranchID: "b1", Period: entity.Period{From: march.To, To: march.From}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = agg.Generate(context.Background(), report.Request{BranchID: "b1", Period: march, OperatingExpenses: &neg})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
