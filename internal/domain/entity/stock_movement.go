package entity

import "time"

// StockMovement cambio firmado de cantidad de un producto en una sucursal, con el balance
// resultante. Append-only; siempre atribuible a una transacción.
type StockMovement struct {
	ID            string
	Seq           int64 // secuencia monotónica del almacén; ordena "más reciente primero"
	ProductID     string
	BranchID      string
	TransactionID string
	Type          TransactionType
	Delta         int64
	Balance       int64
	CreatedAt     time.Time
}

// StockKey identifica la partición (producto, sucursal) del ledger.
type StockKey struct {
	ProductID string
	BranchID  string
}

func (k StockKey) String() string {
	return k.ProductID + "@" + k.BranchID
}

// Less orden canónico de adquisición de locks.
func (k StockKey) Less(o StockKey) bool {
	if k.ProductID != o.ProductID {
		return k.ProductID < o.ProductID
	}
	return k.BranchID < o.BranchID
}
