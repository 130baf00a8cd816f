package readcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/retail-ledger/internal/application/ports"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/pkg/logger"
)

// TTLPolicy tiempo de vida por clase de clave.
type TTLPolicy struct {
	Default time.Duration
	ByClass map[string]time.Duration
}

// DefaultTTL 60 segundos para todo.
func DefaultTTL() TTLPolicy {
	return TTLPolicy{Default: 60 * time.Second}
}

// For devuelve el TTL de la clase.
func (p TTLPolicy) For(class string) time.Duration {
	if ttl, ok := p.ByClass[class]; ok && ttl > 0 {
		return ttl
	}
	if p.Default > 0 {
		return p.Default
	}
	return 60 * time.Second
}

// Cache fachada de la caché de lectura. Se construye explícitamente al arranque y se
// vacía explícitamente al apagar; no hay instancia global.
type Cache struct {
	store   Store
	ttl     TTLPolicy
	metrics ports.Metrics
	log     *logger.Logger
}

// New construye la caché sobre store.
func New(store Store, ttl TTLPolicy, metrics ports.Metrics, log *logger.Logger) *Cache {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Cache{store: store, ttl: ttl, metrics: metrics, log: log.Named("readcache")}
}

// TTL devuelve el TTL configurado para la clase.
func (c *Cache) TTL(class string) time.Duration { return c.ttl.For(class) }

// Get decodifica la entrada en dst. Devuelve false si no existe.
func (c *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decodificar %s: %w", key, err)
	}
	return true, nil
}

// Set guarda value con el TTL indicado (cero = TTL por defecto) dentro de los grupos.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration, groups ...string) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("codificar %s: %w", key, err)
	}
	if ttl <= 0 {
		ttl = c.ttl.Default
	}
	return c.store.Set(ctx, key, raw, ttl, groups)
}

// Invalidate borra grupos o claves. Un error deja la caché en estado desconocido: el caller
// debe recurrir a Flush.
func (c *Cache) Invalidate(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	if err := c.store.Invalidate(ctx, names...); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheInvalidation, err)
	}
	return nil
}

// Flush vacía la caché completa.
func (c *Cache) Flush(ctx context.Context) error {
	if err := c.store.Flush(ctx); err != nil {
		return fmt.Errorf("%w: flush: %v", domain.ErrCacheInvalidation, err)
	}
	return nil
}

// Load lee key de la caché o la calcula con loader y la guarda. La versión de los grupos se
// captura antes de cargar y el valor solo se guarda si ningún grupo se invalidó entretanto.
// Las fallas de la caché se registran y no afectan la lectura.
func Load[T any](ctx context.Context, c *Cache, class, key string, groups []string, loader func(ctx context.Context) (T, error)) (T, error) {
	var cached T
	hit, err := c.Get(ctx, key, &cached)
	if err != nil {
		c.log.WithContext(ctx).Warn().Err(err).Str("key", key).Msg("lectura de caché fallida")
	}
	c.metrics.CacheLookup(class, hit)
	if hit {
		return cached, nil
	}

	stamp, stampErr := c.store.Stamp(ctx, groups)
	if stampErr != nil {
		c.log.WithContext(ctx).Warn().Err(stampErr).Str("key", key).Msg("no se pudo estampar la versión de grupos")
	}

	value, err := loader(ctx)
	if err != nil {
		return value, err
	}
	if stampErr != nil {
		return value, nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		c.log.WithContext(ctx).Warn().Err(err).Str("key", key).Msg("no se pudo codificar el valor")
		return value, nil
	}
	stored, err := c.store.SetIfFresh(ctx, key, raw, c.ttl.For(class), groups, stamp)
	switch {
	case err != nil:
		c.log.WithContext(ctx).Warn().Err(err).Str("key", key).Msg("escritura de caché fallida")
	case !stored:
		c.log.WithContext(ctx).Debug().Str("key", key).Msg("valor obsoleto descartado: grupo invalidado durante la carga")
	}
	return value, nil
}
