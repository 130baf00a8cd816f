package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// KeyedLocker serializa escrituras por clave (producto, sucursal). Claves distintas nunca
// compiten entre sí. Cada lock es un canal de capacidad 1 para poder abandonar la espera
// cuando el contexto del caller expira.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[entity.StockKey]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

// NewKeyedLocker construye el locker vacío.
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[entity.StockKey]*keyLock)}
}

// Lock adquiere todas las claves en orden canónico (producto, sucursal) para evitar deadlocks
// entre transacciones multi-ítem concurrentes. Claves repetidas se toman una sola vez.
// Si ctx expira durante la espera se liberan las ya tomadas y se devuelve el error.
func (l *KeyedLocker) Lock(ctx context.Context, keys ...entity.StockKey) (unlock func(), err error) {
	ordered := canonical(keys)
	acquired := make([]entity.StockKey, 0, len(ordered))
	for _, k := range ordered {
		kl := l.ref(k)
		select {
		case kl.ch <- struct{}{}:
			acquired = append(acquired, k)
		case <-ctx.Done():
			l.unref(k)
			l.release(acquired)
			return nil, fmt.Errorf("esperando lock %s: %w", k, ctx.Err())
		}
	}
	var once sync.Once
	return func() { once.Do(func() { l.release(acquired) }) }, nil
}

func (l *KeyedLocker) ref(k entity.StockKey) *keyLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl, ok := l.locks[k]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[k] = kl
	}
	kl.refs++
	return kl
}

func (l *KeyedLocker) unref(k entity.StockKey) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl := l.locks[k]
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, k)
	}
}

func (l *KeyedLocker) release(keys []entity.StockKey) {
	for i := len(keys) - 1; i >= 0; i-- {
		l.mu.Lock()
		kl := l.locks[keys[i]]
		l.mu.Unlock()
		<-kl.ch
		l.unref(keys[i])
	}
}

// size número de claves con lock vivo o en espera (tests).
func (l *KeyedLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func canonical(keys []entity.StockKey) []entity.StockKey {
	seen := make(map[entity.StockKey]struct{}, len(keys))
	out := make([]entity.StockKey, 0, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
