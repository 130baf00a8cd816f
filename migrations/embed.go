// Package migrations contiene el esquema PostgreSQL del ledger (formato golang-migrate).
package migrations

import "embed"

// FS scripts up/down embebidos en el binario.
//
//go:embed *.sql
var FS embed.FS
