package ports

import (
	"time"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// Metrics puerto de salida para métricas del ledger y la caché de lectura.
type Metrics interface {
	TransactionApplied(t entity.TransactionType, items int, elapsed time.Duration)
	TransactionRejected(t entity.TransactionType, reason string)
	CacheLookup(class string, hit bool)
	CacheInvalidation(ok bool)
}

// NopMetrics descarta todas las métricas (tests, herramientas).
type NopMetrics struct{}

func (NopMetrics) TransactionApplied(entity.TransactionType, int, time.Duration) {}
func (NopMetrics) TransactionRejected(entity.TransactionType, string)            {}
func (NopMetrics) CacheLookup(string, bool)                                      {}
func (NopMetrics) CacheInvalidation(bool)                                        {}
