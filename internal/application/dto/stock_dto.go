package dto

import (
	"time"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// StockResponse salida de GET /api/stock/products/:productId/branches/:branchId.
type StockResponse struct {
	ProductID string `json:"product_id"`
	BranchID  string `json:"branch_id"`
	Quantity  int64  `json:"quantity"`
}

// StockMovementResponse movimiento del ledger.
type StockMovementResponse struct {
	ID            string    `json:"id"`
	Seq           int64     `json:"seq"`
	ProductID     string    `json:"product_id"`
	BranchID      string    `json:"branch_id"`
	TransactionID string    `json:"transaction_id"`
	Type          string    `json:"type"`
	Delta         int64     `json:"delta"`
	Balance       int64     `json:"balance"`
	CreatedAt     time.Time `json:"created_at"`
}

// StockMovementListResponse lista más reciente primero.
type StockMovementListResponse struct {
	Items []StockMovementResponse `json:"items"`
	Limit int                     `json:"limit"`
}

// NewStockMovementList mapea movimientos a la salida HTTP.
func NewStockMovementList(list []*entity.StockMovement, limit int) StockMovementListResponse {
	out := StockMovementListResponse{Items: make([]StockMovementResponse, 0, len(list)), Limit: limit}
	for _, m := range list {
		out.Items = append(out.Items, StockMovementResponse{
			ID:            m.ID,
			Seq:           m.Seq,
			ProductID:     m.ProductID,
			BranchID:      m.BranchID,
			TransactionID: m.TransactionID,
			Type:          string(m.Type),
			Delta:         m.Delta,
			Balance:       m.Balance,
			CreatedAt:     m.CreatedAt,
		})
	}
	return out
}
