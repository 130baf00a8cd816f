// Package report calcula el reporte financiero de una sucursal para un período a partir de
// las líneas de transacción confirmadas y los gastos operativos.
package report

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

var tracer = otel.Tracer("report-aggregator")

// Request parámetros del reporte. OperatingExpenses nil = suma de gastos registrados.
type Request struct {
	BranchID          string
	Period            entity.Period
	OperatingExpenses *decimal.Decimal
	TargetProfit      *decimal.Decimal
}

// Aggregator genera reportes por sucursal.
type Aggregator struct {
	branches     repository.BranchRepository
	transactions repository.TransactionRepository
	expenses     repository.ExpenseRepository
}

// NewAggregator construye el agregador.
func NewAggregator(
	branches repository.BranchRepository,
	transactions repository.TransactionRepository,
	expenses repository.ExpenseRepository,
) *Aggregator {
	return &Aggregator{branches: branches, transactions: transactions, expenses: expenses}
}

// Generate carga líneas y OPEX en paralelo y agrega. Mismos datos, mismo reporte.
func (a *Aggregator) Generate(ctx context.Context, req Request) (*entity.BranchReport, error) {
	ctx, span := tracer.Start(ctx, "report.Generate", trace.WithAttributes(
		attribute.String("report.branch_id", req.BranchID),
		attribute.String("report.from", req.Period.From.String()),
		attribute.String("report.to", req.Period.To.String()),
	))
	defer span.End()

	rep, err := a.generate(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("report.sales_count", rep.SalesCount))
	return rep, nil
}

func (a *Aggregator) generate(ctx context.Context, req Request) (*entity.BranchReport, error) {
	if req.BranchID == "" {
		return nil, domain.Invalid("branch_id", "requerido")
	}
	if err := req.Period.Validate(); err != nil {
		return nil, domain.Invalid("period", err.Error())
	}
	if req.OperatingExpenses != nil && req.OperatingExpenses.IsNegative() {
		return nil, domain.Invalid("opex", "no puede ser negativo")
	}
	branch, err := a.branches.GetByID(ctx, req.BranchID)
	if err != nil {
		return nil, domain.Persistence("leer sucursal", err)
	}
	if branch == nil {
		return nil, domain.NotFound("branch", req.BranchID)
	}

	var (
		items []entity.ItemRecord
		opex  decimal.Decimal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := a.transactions.ListItems(gctx, req.BranchID, req.Period)
		if err != nil {
			return domain.Persistence("listar líneas del período", err)
		}
		items = list
		return nil
	})
	if req.OperatingExpenses != nil {
		opex = *req.OperatingExpenses
	} else {
		g.Go(func() error {
			sum, err := a.expenses.SumByBranch(gctx, req.BranchID, req.Period)
			if err != nil {
				return domain.Persistence("sumar gastos operativos", err)
			}
			opex = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep := Aggregate(items, opex, req.TargetProfit)
	rep.BranchID = req.BranchID
	rep.Period = req.Period
	return &rep, nil
}

// Aggregate función pura sobre las líneas ya filtradas por sucursal y período.
//
//	Revenue     = Σ totalPrice (SALE)
//	CostOfGoods = Σ totalCost  (SALE)
//	GrossProfit = Revenue − CostOfGoods
//	NetProfit   = GrossProfit − OPEX
//	Remaining   = Target − NetProfit (nil sin meta)
func Aggregate(items []entity.ItemRecord, opex decimal.Decimal, target *decimal.Decimal) entity.BranchReport {
	rep := entity.BranchReport{
		Revenue:      decimal.Zero,
		CostOfGoods:  decimal.Zero,
		DamageLoss:   decimal.Zero,
		ReturnsValue: decimal.Zero,
	}
	sales := make(map[string]struct{})
	for _, rec := range items {
		switch rec.Type {
		case entity.TransactionSale:
			rep.Revenue = rep.Revenue.Add(rec.Item.TotalPrice)
			rep.CostOfGoods = rep.CostOfGoods.Add(rec.Item.TotalCost)
			rep.UnitsSold += rec.Item.Quantity
			sales[rec.TransactionID] = struct{}{}
		case entity.TransactionDamage:
			rep.DamageLoss = rep.DamageLoss.Add(rec.Item.TotalCost)
		case entity.TransactionReturn:
			rep.ReturnsValue = rep.ReturnsValue.Add(rec.Item.TotalPrice)
		}
	}
	rep.SalesCount = len(sales)
	rep.GrossProfit = rep.Revenue.Sub(rep.CostOfGoods)
	rep.OperatingExpenses = opex
	rep.NetProfit = rep.GrossProfit.Sub(opex)
	if target != nil {
		t := *target
		remaining := t.Sub(rep.NetProfit)
		rep.TargetProfit = &t
		rep.RemainingRequiredProfit = &remaining
	}
	return rep
}
