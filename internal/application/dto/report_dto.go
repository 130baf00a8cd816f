package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// BranchReportResponse salida de GET /api/reports/branches/:branchId.
// El período es semiabierto: [from, to).
type BranchReportResponse struct {
	BranchID                string           `json:"branch_id"`
	From                    time.Time        `json:"from"`
	To                      time.Time        `json:"to"`
	Revenue                 decimal.Decimal  `json:"revenue"`
	CostOfGoods             decimal.Decimal  `json:"cost_of_goods"`
	GrossProfit             decimal.Decimal  `json:"gross_profit"`
	OperatingExpenses       decimal.Decimal  `json:"operating_expenses"`
	NetProfit               decimal.Decimal  `json:"net_profit"`
	TargetProfit            *decimal.Decimal `json:"target_profit"`
	RemainingRequiredProfit *decimal.Decimal `json:"remaining_required_profit"`
	SalesCount              int              `json:"sales_count"`
	UnitsSold               int64            `json:"units_sold"`
	DamageLoss              decimal.Decimal  `json:"damage_loss"`
	ReturnsValue            decimal.Decimal  `json:"returns_value"`
}

// NewBranchReportResponse mapea el reporte a la salida HTTP.
func NewBranchReportResponse(r *entity.BranchReport) BranchReportResponse {
	return BranchReportResponse{
		BranchID:                r.BranchID,
		From:                    r.Period.From,
		To:                      r.Period.To,
		Revenue:                 r.Revenue,
		CostOfGoods:             r.CostOfGoods,
		GrossProfit:             r.GrossProfit,
		OperatingExpenses:       r.OperatingExpenses,
		NetProfit:               r.NetProfit,
		TargetProfit:            r.TargetProfit,
		RemainingRequiredProfit: r.RemainingRequiredProfit,
		SalesCount:              r.SalesCount,
		UnitsSold:               r.UnitsSold,
		DamageLoss:              r.DamageLoss,
		ReturnsValue:            r.ReturnsValue,
	}
}
