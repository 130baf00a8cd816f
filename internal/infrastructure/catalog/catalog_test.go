package catalog

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

func TestLoadFiles(t *testing.T) {
	cat, err := LoadFiles(filepath.Join("testdata", "branches.csv"), filepath.Join("testdata", "products.csv"), "")
	require.NoError(t, err)

	require.Len(t, cat.Branches, 2)
	assert.Equal(t, "Norte", cat.Branches[1].Name)

	require.Len(t, cat.Products, 3)
	p2 := cat.Products[1]
	assert.Equal(t, entity.UnitWeight, p2.UnitOfSale)
	assert.True(t, decimal.RequireFromString("0.02").Equal(p2.CostPerUnit))
	assert.True(t, decimal.RequireFromString("0.05").Equal(p2.SellingPrice))
	assert.Equal(t, "b2", cat.Products[2].BranchID)
}

func TestParseProducts_Errores(t *testing.T) {
	header := strings.Join(ProductHeader, ",") + "\n"
	cases := map[string]string{
		"encabezado":   "id,name\n",
		"sin sku":      header + "p1,,Arroz,,,PIECE,1,2\n",
		"unidad":       header + "p1,A,Arroz,,,LITRO,1,2\n",
		"negativo":     header + "p1,A,Arroz,,,PIECE,-1,2\n",
		"tres decimal": header + "p1,A,Arroz,,,PIECE,1.001,2\n",
		"duplicado":    header + "p1,A,Arroz,,,PIECE,1,2\np1,B,Otro,,,PIECE,1,2\n",
		"columnas":     header + "p1,A,Arroz\n",
		"vacio":        "",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseProducts(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestParseProducts_UnidadPorDefecto(t *testing.T) {
	in := strings.Join(ProductHeader, ",") + "\np1,A,Arroz,,,,1,2\n"
	list, err := ParseProducts(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, entity.UnitPiece, list[0].UnitOfSale)
}

func TestDecode_Latin1(t *testing.T) {
	utf8 := "id,name,location\nb1,Panadería Ñuñoa,Peñalolén\n"
	encoded, err := charmap.ISO8859_1.NewEncoder().String(utf8)
	require.NoError(t, err)

	r, err := Decode(bytes.NewReader([]byte(encoded)), "ISO-8859-1")
	require.NoError(t, err)
	branches, err := ParseBranches(r)
	require.NoError(t, err)
	assert.Equal(t, "Panadería Ñuñoa", branches[0].Name)
	assert.Equal(t, "Peñalolén", branches[0].Location)

	_, err = Decode(io.MultiReader(), "ebcdic")
	assert.Error(t, err)
}

func TestLoadFiles_SucursalInexistente(t *testing.T) {
	dir := t.TempDir()
	b := writeFile(t, dir, "b.csv", "id,name,location\nb1,Centro,\n")
	p := writeFile(t, dir, "p.csv", strings.Join(ProductHeader, ",")+"\np1,A,Arroz,,b9,PIECE,1,2\n")
	_, err := LoadFiles(b, p, "utf-8")
	assert.ErrorContains(t, err, "b9")
}
