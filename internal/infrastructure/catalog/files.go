package catalog

import (
	"fmt"
	"io"
	"os"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// Catalog sucursales y productos leídos de archivos.
type Catalog struct {
	Branches []entity.Branch
	Products []entity.Product
}

// LoadFiles lee ambos CSV con el charset indicado y verifica que cada producto con sucursal
// propia apunte a una sucursal del catálogo.
func LoadFiles(branchesPath, productsPath, charset string) (*Catalog, error) {
	branches, err := parseFile(branchesPath, charset, ParseBranches)
	if err != nil {
		return nil, err
	}
	products, err := parseFile(productsPath, charset, ParseProducts)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(branches))
	for _, b := range branches {
		known[b.ID] = true
	}
	for _, p := range products {
		if p.BranchID != "" && !known[p.BranchID] {
			return nil, fmt.Errorf("producto %q: sucursal %q no existe en el catálogo", p.ID, p.BranchID)
		}
	}
	return &Catalog{Branches: branches, Products: products}, nil
}

func parseFile[T any](path, charset string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("abrir %s: %w", path, err)
	}
	defer f.Close()
	r, err := Decode(f, charset)
	if err != nil {
		return nil, err
	}
	out, err := parse(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}
