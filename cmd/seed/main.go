// seed genera un script SQL idempotente con sucursales y productos a partir de catálogos CSV.
//
// Uso: go run ./cmd/seed -branches sucursales.csv -products productos.csv [-charset ISO-8859-1] [-out migrations/0002_seed_catalog.sql]
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jhoicas/retail-ledger/internal/infrastructure/catalog"
)

func main() {
	branchesPath := flag.String("branches", "branches.csv", "CSV de sucursales")
	productsPath := flag.String("products", "products.csv", "CSV de productos")
	charset := flag.String("charset", "", "codificación de los CSV (utf-8, ISO-8859-1, windows-1252)")
	outPath := flag.String("out", "", "archivo de salida (vacío = stdout)")
	flag.Parse()

	cat, err := catalog.LoadFiles(*branchesPath, *productsPath, *charset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
		os.Exit(1)
	}

	var out io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	w := bufio.NewWriter(out)
	writeSQL(w, cat)
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Generado: %d sucursales, %d productos\n", len(cat.Branches), len(cat.Products))
}

func writeSQL(w io.Writer, cat *catalog.Catalog) {
	fmt.Fprintln(w, "-- Catálogo de sucursales y productos (generado por cmd/seed)")
	fmt.Fprintln(w)
	if len(cat.Branches) > 0 {
		fmt.Fprintln(w, "INSERT INTO branches (id, name, location) VALUES")
		for i, b := range cat.Branches {
			fmt.Fprintf(w, "  ('%s', '%s', '%s')%s\n", escapeSQL(b.ID), escapeSQL(b.Name), escapeSQL(b.Location), sep(i, len(cat.Branches)))
		}
		fmt.Fprintln(w, "ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, location = EXCLUDED.location;")
		fmt.Fprintln(w)
	}
	if len(cat.Products) > 0 {
		fmt.Fprintln(w, "INSERT INTO products (id, sku, name, category_id, branch_id, unit_of_sale, cost_per_unit, selling_price) VALUES")
		for i, p := range cat.Products {
			fmt.Fprintf(w, "  ('%s', '%s', '%s', %s, %s, '%s', %s, %s)%s\n",
				escapeSQL(p.ID), escapeSQL(p.SKU), escapeSQL(p.Name), nullable(p.CategoryID), nullable(p.BranchID),
				p.UnitOfSale, p.CostPerUnit.StringFixed(2), p.SellingPrice.StringFixed(2), sep(i, len(cat.Products)))
		}
		fmt.Fprintln(w, "ON CONFLICT (id) DO UPDATE SET")
		fmt.Fprintln(w, "  sku = EXCLUDED.sku, name = EXCLUDED.name, category_id = EXCLUDED.category_id,")
		fmt.Fprintln(w, "  branch_id = EXCLUDED.branch_id, unit_of_sale = EXCLUDED.unit_of_sale,")
		fmt.Fprintln(w, "  cost_per_unit = EXCLUDED.cost_per_unit, selling_price = EXCLUDED.selling_price, updated_at = now();")
	}
}

func sep(i, n int) string {
	if i < n-1 {
		return ","
	}
	return ""
}

func nullable(s string) string {
	if s == "" {
		return "NULL"
	}
	return "'" + escapeSQL(s) + "'"
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
