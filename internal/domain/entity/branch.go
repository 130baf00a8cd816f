package entity

import "time"

// Branch representa una sucursal: particiona el stock y los reportes. Inmutable para el ledger.
type Branch struct {
	ID        string
	Name      string
	Location  string
	CreatedAt time.Time
}
