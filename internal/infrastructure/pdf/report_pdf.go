// Package pdf genera la versión imprimible del reporte financiero de sucursal.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Sucursal             │  Período [desde, hasta)      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESULTADOS: Ingresos / Costo / Bruta / OPEX / Neta          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  META: Meta de utilidad / Faltante                           │
//	│  INFORMATIVO: Ventas / Unidades / Bajas / Devoluciones       │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorLoss    = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReportRenderer genera el PDF del reporte de sucursal con Maroto v2.
type MarotoReportRenderer struct {
	storeName string
}

// NewMarotoReportRenderer construye el generador; storeName aparece como autor del documento.
func NewMarotoReportRenderer(storeName string) *MarotoReportRenderer {
	return &MarotoReportRenderer{storeName: storeName}
}

// RenderBranchReport genera el PDF y devuelve sus bytes.
func (g *MarotoReportRenderer) RenderBranchReport(_ context.Context, rep *entity.BranchReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de sucursal "+rep.BranchID, true).
		WithAuthor(g.storeName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(rep))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(sectionTitle("RESULTADOS DEL PERÍODO"))
	m.AddRows(amountRow("Ingresos por ventas", rep.Revenue, false))
	m.AddRows(amountRow("Costo de lo vendido", rep.CostOfGoods, false))
	m.AddRows(amountRow("Utilidad bruta", rep.GrossProfit, true))
	m.AddRows(amountRow("Gastos operativos", rep.OperatingExpenses, false))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.2}))
	m.AddRows(amountRow("UTILIDAD NETA", rep.NetProfit, true))

	if rep.TargetProfit != nil {
		m.AddRows(line.NewRow(3))
		m.AddRows(sectionTitle("META"))
		m.AddRows(amountRow("Meta de utilidad", *rep.TargetProfit, false))
		m.AddRows(amountRow("Utilidad faltante", *rep.RemainingRequiredProfit, true))
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(sectionTitle("INFORMATIVO"))
	m.AddRows(plainRow("Ventas registradas", fmt.Sprintf("%d", rep.SalesCount)))
	m.AddRows(plainRow("Unidades vendidas", fmt.Sprintf("%d", rep.UnitsSold)))
	m.AddRows(amountRow("Pérdida por bajas (costo)", rep.DamageLoss, false))
	m.AddRows(amountRow("Devoluciones (valor de venta)", rep.ReturnsValue, false))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(rep *entity.BranchReport) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("REPORTE FINANCIERO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Sucursal: "+rep.BranchID, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("PERÍODO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(rep.Period.From.Format("02/01/2006")+" - "+rep.Period.To.Format("02/01/2006"), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 7,
			}),
			text.New("hasta excluido", props.Text{
				Size: 7, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

func sectionTitle(title string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
	))
}

func amountRow(label string, amount decimal.Decimal, emphasis bool) core.Row {
	style := fontstyle.Normal
	if emphasis {
		style = fontstyle.Bold
	}
	valueProps := props.Text{Style: style, Size: 9, Align: align.Right, Top: 1, Right: 1}
	if amount.IsNegative() {
		valueProps.Color = colorLoss
	}
	return row.New(6).Add(
		col.New(8).Add(text.New(label, props.Text{Style: style, Size: 9, Top: 1, Left: 2})),
		col.New(4).Add(text.New(formatMoney(amount), valueProps)),
	)
}

func plainRow(label, value string) core.Row {
	return row.New(6).Add(
		col.New(8).Add(text.New(label, props.Text{Size: 9, Top: 1, Left: 2})),
		col.New(4).Add(text.New(value, props.Text{Size: 9, Align: align.Right, Top: 1, Right: 1})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatMoney inserta puntos de miles y coma decimal.
// Ej: 25000 → "$25.000,00", -1234.5 → "-$1.234,50"
func formatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	intPart, frac, _ := strings.Cut(d.StringFixed(2), ".")
	return sign + "$" + groupThousands(intPart) + "," + frac
}

func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
