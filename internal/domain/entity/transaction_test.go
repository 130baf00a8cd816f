package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

func TestParseTransactionType(t *testing.T) {
	for _, raw := range []string{"SALE", "sale", " Purchase ", "RETURN", "damage"} {
		tt, err := entity.ParseTransactionType(raw)
		require.NoError(t, err, raw)
		assert.True(t, tt.Valid())
	}
	_, err := entity.ParseTransactionType("TRANSFER")
	assert.Error(t, err)
	_, err = entity.ParseTransactionType("")
	assert.Error(t, err)
}

func TestTransactionType_Delta(t *testing.T) {
	assert.Equal(t, int64(-5), entity.TransactionSale.Delta(5))
	assert.Equal(t, int64(-2), entity.TransactionDamage.Delta(2))
	assert.Equal(t, int64(20), entity.TransactionPurchase.Delta(20))
	assert.Equal(t, int64(1), entity.TransactionReturn.Delta(1), "la devolución de cliente suma stock")
}

func TestStockKey_OrdenCanonico(t *testing.T) {
	a := entity.StockKey{ProductID: "p1", BranchID: "b2"}
	b := entity.StockKey{ProductID: "p1", BranchID: "b3"}
	c := entity.StockKey{ProductID: "p2", BranchID: "b1"}
	assert.True(t, a.Less(b))
	assert.True(t, b.Less(c))
	assert.False(t, c.Less(a))
}

func TestMonthPeriod(t *testing.T) {
	p := entity.MonthPeriod(2026, time.December, time.UTC)
	require.NoError(t, p.Validate())
	assert.Equal(t, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC), p.To)
	assert.True(t, p.Contains(time.Date(2026, time.December, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, p.Contains(p.To), "el período es semiabierto")

	assert.Error(t, entity.Period{From: p.To, To: p.From}.Validate())
}
