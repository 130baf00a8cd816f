package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// TransactionItemRequest línea del body de POST /api/transactions.
type TransactionItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"` // piezas o gramos según la unidad del producto
}

// CreateTransactionRequest body para POST /api/transactions.
// Type: SALE, PURCHASE, RETURN, DAMAGE.
type CreateTransactionRequest struct {
	Type      string                   `json:"type"`
	BranchID  string                   `json:"branch_id"`
	Reference string                   `json:"reference,omitempty"`
	Items     []TransactionItemRequest `json:"items"`
}

// TransactionItemResponse línea con montos instantáneos.
type TransactionItemResponse struct {
	ID         string          `json:"id"`
	Line       int             `json:"line"`
	ProductID  string          `json:"product_id"`
	Quantity   int64           `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Profit     decimal.Decimal `json:"profit"`
}

// TransactionResponse transacción confirmada.
type TransactionResponse struct {
	ID         string                    `json:"id"`
	Type       string                    `json:"type"`
	BranchID   string                    `json:"branch_id"`
	CreatedBy  string                    `json:"created_by,omitempty"`
	Reference  string                    `json:"reference,omitempty"`
	TotalCost  decimal.Decimal           `json:"total_cost"`
	TotalPrice decimal.Decimal           `json:"total_price"`
	Profit     decimal.Decimal           `json:"profit"`
	CreatedAt  time.Time                 `json:"created_at"`
	Items      []TransactionItemResponse `json:"items"`
}

// NewTransactionResponse mapea la entidad a la salida HTTP.
func NewTransactionResponse(tx *entity.Transaction) TransactionResponse {
	out := TransactionResponse{
		ID:         tx.ID,
		Type:       string(tx.Type),
		BranchID:   tx.BranchID,
		CreatedBy:  tx.CreatedBy,
		Reference:  tx.Reference,
		TotalCost:  tx.TotalCost,
		TotalPrice: tx.TotalPrice,
		Profit:     tx.Profit,
		CreatedAt:  tx.CreatedAt,
		Items:      make([]TransactionItemResponse, 0, len(tx.Items)),
	}
	for _, it := range tx.Items {
		out.Items = append(out.Items, TransactionItemResponse{
			ID:         it.ID,
			Line:       it.Line,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitCost:   it.UnitCost,
			UnitPrice:  it.UnitPrice,
			TotalCost:  it.TotalCost,
			TotalPrice: it.TotalPrice,
			Profit:     it.Profit,
		})
	}
	return out
}
