package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType conjunto cerrado de eventos comerciales.
type TransactionType string

const (
	TransactionSale     TransactionType = "SALE"
	TransactionPurchase TransactionType = "PURCHASE"
	TransactionReturn   TransactionType = "RETURN" // devolución de cliente: el stock vuelve a la sucursal
	TransactionDamage   TransactionType = "DAMAGE"
)

// TransactionTypes lista los tipos válidos en orden estable.
var TransactionTypes = []TransactionType{
	TransactionSale, TransactionPurchase, TransactionReturn, TransactionDamage,
}

// ParseTransactionType valida el tipo en el borde (sin distinguir mayúsculas).
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("tipo de transacción desconocido %q", s)
	}
	return t, nil
}

// Valid indica si el tipo pertenece al conjunto cerrado.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionSale, TransactionPurchase, TransactionReturn, TransactionDamage:
		return true
	}
	return false
}

// Consumes indica si el tipo resta stock (SALE, DAMAGE).
func (t TransactionType) Consumes() bool {
	return t == TransactionSale || t == TransactionDamage
}

// Replenishes indica si el tipo suma stock (PURCHASE, RETURN).
func (t TransactionType) Replenishes() bool {
	return t == TransactionPurchase || t == TransactionReturn
}

// Delta convierte una cantidad positiva en el delta firmado del movimiento.
func (t TransactionType) Delta(quantity int64) int64 {
	if t.Consumes() {
		return -quantity
	}
	return quantity
}

// Transaction evento comercial confirmado. Inmutable una vez persistido.
type Transaction struct {
	ID         string
	Type       TransactionType
	BranchID   string
	CreatedBy  string
	Reference  string // ticket, orden de compra, nota
	TotalCost  decimal.Decimal
	TotalPrice decimal.Decimal
	Profit     decimal.Decimal
	CreatedAt  time.Time
	Items      []TransactionItem
}

// TransactionItem línea de la transacción. Los montos son instantáneas al momento de la
// transacción: cambios posteriores de precio no alteran el histórico.
type TransactionItem struct {
	ID            string
	TransactionID string
	Line          int
	ProductID     string
	Quantity      int64
	UnitCost      decimal.Decimal
	UnitPrice     decimal.Decimal
	TotalCost     decimal.Decimal
	TotalPrice    decimal.Decimal
	Profit        decimal.Decimal // solo SALE; cero en los demás tipos
}

// ItemRecord línea de transacción con los datos de cabecera necesarios para reportes.
type ItemRecord struct {
	TransactionID string
	Type          TransactionType
	BranchID      string
	CreatedAt     time.Time
	Item          TransactionItem
}
