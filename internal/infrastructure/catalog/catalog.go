// Package catalog lee catálogos de sucursales y productos en CSV (exportaciones de POS,
// a menudo en ISO-8859-1) para sembrar el almacén.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/pricing"
)

// Encabezados esperados (en este orden).
var (
	BranchHeader  = []string{"id", "name", "location"}
	ProductHeader = []string{"id", "sku", "name", "category_id", "branch_id", "unit_of_sale", "cost_per_unit", "selling_price"}
)

// Decode envuelve r para leer en UTF-8. charset vacío o "utf-8" no transforma.
func Decode(r io.Reader, charset string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "iso-8859-1", "iso8859-1", "latin1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	}
	return nil, fmt.Errorf("charset no soportado %q", charset)
}

// ParseBranches lee sucursales.
func ParseBranches(r io.Reader) ([]entity.Branch, error) {
	rows, err := readRows(r, BranchHeader)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Branch, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for i, row := range rows {
		line := i + 2
		if row[0] == "" || row[1] == "" {
			return nil, fmt.Errorf("línea %d: id y name son obligatorios", line)
		}
		if seen[row[0]] {
			return nil, fmt.Errorf("línea %d: sucursal duplicada %q", line, row[0])
		}
		seen[row[0]] = true
		out = append(out, entity.Branch{ID: row[0], Name: row[1], Location: row[2]})
	}
	return out, nil
}

// ParseProducts lee productos. Los importes aceptan punto o coma decimal.
func ParseProducts(r io.Reader) ([]entity.Product, error) {
	rows, err := readRows(r, ProductHeader)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Product, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for i, row := range rows {
		line := i + 2
		if row[0] == "" || row[1] == "" || row[2] == "" {
			return nil, fmt.Errorf("línea %d: id, sku y name son obligatorios", line)
		}
		if seen[row[0]] {
			return nil, fmt.Errorf("línea %d: producto duplicado %q", line, row[0])
		}
		seen[row[0]] = true

		unit := entity.UnitOfSale(strings.ToUpper(row[5]))
		if unit == "" {
			unit = entity.UnitPiece
		}
		if !unit.Valid() {
			return nil, fmt.Errorf("línea %d: unidad de venta %q inválida", line, row[5])
		}
		cost, err := parseMoney(row[6])
		if err != nil {
			return nil, fmt.Errorf("línea %d: cost_per_unit: %w", line, err)
		}
		price, err := parseMoney(row[7])
		if err != nil {
			return nil, fmt.Errorf("línea %d: selling_price: %w", line, err)
		}
		out = append(out, entity.Product{
			ID:           row[0],
			SKU:          row[1],
			Name:         row[2],
			CategoryID:   row[3],
			BranchID:     row[4],
			UnitOfSale:   unit,
			CostPerUnit:  cost,
			SellingPrice: price,
		})
	}
	return out, nil
}

func readRows(r io.Reader, header []string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = len(header)

	first, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catálogo vacío")
		}
		return nil, fmt.Errorf("leer encabezado: %w", err)
	}
	for i, h := range header {
		if !strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(first[i], "\ufeff")), h) {
			return nil, fmt.Errorf("encabezado inesperado en columna %d: %q (se esperaba %q)", i+1, first[i], h)
		}
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("leer catálogo: %w", err)
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func parseMoney(s string) (decimal.Decimal, error) {
	if !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("importe %q inválido", s)
	}
	if !pricing.ValidMoney(d) {
		return decimal.Zero, fmt.Errorf("importe %q negativo o con más de 2 decimales", s)
	}
	return d, nil
}
