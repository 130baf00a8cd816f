// Package cache implementa readcache.Store en memoria y sobre Redis.
package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/jhoicas/retail-ledger/internal/application/readcache"
)

var _ readcache.Store = (*MemoryStore)(nil)

// MemoryStore caché de proceso sobre go-cache. go-cache vence y purga las entradas; los
// índices de grupo y los sellos de versión se actualizan bajo mu junto con las entradas.
type MemoryStore struct {
	mu       sync.Mutex
	entries  *gocache.Cache
	members  map[string]map[string]struct{}
	versions map[string]int64
}

// NewMemoryStore crea la caché vacía. cleanup es el intervalo de purga de vencidas
// (0 = un minuto).
func NewMemoryStore(cleanup ...time.Duration) *MemoryStore {
	interval := time.Minute
	if len(cleanup) > 0 && cleanup[0] > 0 {
		interval = cleanup[0]
	}
	return &MemoryStore{
		entries:  gocache.New(gocache.NoExpiration, interval),
		members:  make(map[string]map[string]struct{}),
		versions: make(map[string]int64),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	return v.([]byte), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration, groups []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(key, value, ttl, groups)
	return nil
}

func (s *MemoryStore) Stamp(_ context.Context, groups []string) (readcache.Stamp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp := readcache.Stamp{readcache.EpochGroup: s.versions[readcache.EpochGroup]}
	for _, g := range groups {
		stamp[g] = s.versions[g]
	}
	return stamp, nil
}

func (s *MemoryStore) SetIfFresh(_ context.Context, key string, value []byte, ttl time.Duration, groups []string, stamp readcache.Stamp) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for g, v := range stamp {
		if s.versions[g] != v {
			return false, nil
		}
	}
	s.put(key, value, ttl, groups)
	return true, nil
}

func (s *MemoryStore) Invalidate(_ context.Context, names ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		s.versions[name]++
		for key := range s.members[name] {
			s.entries.Delete(key)
		}
		delete(s.members, name)
		s.entries.Delete(name)
	}
	return nil
}

func (s *MemoryStore) Flush(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions[readcache.EpochGroup]++
	s.entries.Flush()
	s.members = make(map[string]map[string]struct{})
	return nil
}

// Len entradas guardadas, vencidas aún no purgadas incluidas.
func (s *MemoryStore) Len() int {
	return s.entries.ItemCount()
}

// Purge elimina ya las entradas vencidas y los índices de grupo que quedaron vacíos.
func (s *MemoryStore) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries.DeleteExpired()
	for g, set := range s.members {
		for key := range set {
			if _, ok := s.entries.Get(key); !ok {
				delete(set, key)
			}
		}
		if len(set) == 0 {
			delete(s.members, g)
		}
	}
}

func (s *MemoryStore) put(key string, value []byte, ttl time.Duration, groups []string) {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	s.entries.Set(key, value, ttl)
	for _, g := range groups {
		set, ok := s.members[g]
		if !ok {
			set = make(map[string]struct{})
			s.members[g] = set
		}
		set[key] = struct{}{}
	}
}
