package main

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/catalog"
)

func TestWriteSQL(t *testing.T) {
	cat := &catalog.Catalog{
		Branches: []entity.Branch{{ID: "b1", Name: "O'Higgins", Location: "Centro"}},
		Products: []entity.Product{
			{ID: "p1", SKU: "A", Name: "Arroz", UnitOfSale: entity.UnitPiece,
				CostPerUnit: decimal.NewFromInt(10), SellingPrice: decimal.RequireFromString("15.5")},
			{ID: "p2", SKU: "B", Name: "Pan", BranchID: "b1", UnitOfSale: entity.UnitPiece,
				CostPerUnit: decimal.NewFromInt(1), SellingPrice: decimal.NewFromInt(2)},
		},
	}
	var buf bytes.Buffer
	writeSQL(&buf, cat)
	sql := buf.String()

	assert.Contains(t, sql, "('b1', 'O''Higgins', 'Centro')\nON CONFLICT (id)")
	assert.Contains(t, sql, "('p1', 'A', 'Arroz', NULL, NULL, 'PIECE', 10.00, 15.50),")
	assert.Contains(t, sql, "('p2', 'B', 'Pan', NULL, 'b1', 'PIECE', 1.00, 2.00)\n")
}
