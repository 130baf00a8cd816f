// Package readcache es la caché del lado de lectura (stock, movimientos, reportes).
// Las entradas pertenecen a grupos lógicos y se invalidan por grupo: cada grupo lleva un
// número de versión que se incrementa en cada invalidación, de modo que un lector que cargó
// datos antes de una mutación no puede volver a poblar la caché con ellos después.
package readcache

import (
	"context"
	"time"
)

// EpochGroup versión global; Flush la incrementa y vuelve obsoletas todas las estampas.
const EpochGroup = "*"

// Stamp versiones de los grupos observadas antes de cargar un valor.
type Stamp map[string]int64

// Store puerto de almacenamiento de la caché (memoria o Redis).
// Cada operación es atómica por clave.
type Store interface {
	// Get devuelve el valor y si existía (las entradas vencidas cuentan como ausentes).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set guarda el valor y lo registra en cada grupo.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, groups []string) error
	// Stamp captura la versión actual de los grupos más la época global.
	Stamp(ctx context.Context, groups []string) (Stamp, error)
	// SetIfFresh guarda solo si ninguna versión de stamp cambió. Devuelve si guardó.
	SetIfFresh(ctx context.Context, key string, value []byte, ttl time.Duration, groups []string, stamp Stamp) (bool, error)
	// Invalidate incrementa la versión de cada nombre, borra las entradas de ese grupo y
	// la entrada con esa misma clave si existe.
	Invalidate(ctx context.Context, names ...string) error
	// Flush vacía la caché completa.
	Flush(ctx context.Context) error
}
