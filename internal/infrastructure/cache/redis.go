package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/retail-ledger/internal/application/readcache"
)

var _ readcache.Store = (*RedisStore)(nil)

// RedisStore caché compartida entre instancias. Las versiones de grupo son contadores INCR,
// los miembros de cada grupo un SET y la escritura condicional usa WATCH/MULTI.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore usa prefix como espacio de nombres de todas las claves.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ledger"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Ping verifica la conexión (arranque).
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) entryKey(key string) string   { return s.prefix + ":key:" + key }
func (s *RedisStore) groupKey(group string) string { return s.prefix + ":grp:" + group }
func (s *RedisStore) versionKey(name string) string {
	return s.prefix + ":ver:" + name
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := s.client.Get(ctx, s.entryKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration, groups []string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		s.queueSet(ctx, pipe, key, value, ttl, groups)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Stamp(ctx context.Context, groups []string) (readcache.Stamp, error) {
	names := append([]string{readcache.EpochGroup}, groups...)
	return s.readVersions(ctx, s.client, names)
}

func (s *RedisStore) SetIfFresh(ctx context.Context, key string, value []byte, ttl time.Duration, groups []string, stamp readcache.Stamp) (bool, error) {
	names := make([]string, 0, len(stamp))
	watched := make([]string, 0, len(stamp))
	for name := range stamp {
		names = append(names, name)
		watched = append(watched, s.versionKey(name))
	}

	stored := false
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := s.readVersions(ctx, tx, names)
		if err != nil {
			return err
		}
		for name, v := range stamp {
			if current[name] != v {
				return nil
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			s.queueSet(ctx, pipe, key, value, ttl, groups)
			return nil
		})
		if err != nil {
			return err
		}
		stored = true
		return nil
	}, watched...)
	if errors.Is(err, redis.TxFailedErr) {
		// una invalidación tocó un grupo observado entre WATCH y EXEC
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis set-if-fresh %s: %w", key, err)
	}
	return stored, nil
}

func (s *RedisStore) Invalidate(ctx context.Context, names ...string) error {
	for _, name := range names {
		// la versión sube antes de leer los miembros: un lector concurrente que ya
		// estampó la versión anterior no podrá escribir después
		if err := s.client.Incr(ctx, s.versionKey(name)).Err(); err != nil {
			return fmt.Errorf("redis incr %s: %w", name, err)
		}
		members, err := s.client.SMembers(ctx, s.groupKey(name)).Result()
		if err != nil {
			return fmt.Errorf("redis smembers %s: %w", name, err)
		}
		keys := make([]string, 0, len(members)+2)
		for _, m := range members {
			keys = append(keys, s.entryKey(m))
		}
		keys = append(keys, s.groupKey(name), s.entryKey(name))
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("redis del %s: %w", name, err)
		}
	}
	return nil
}

func (s *RedisStore) Flush(ctx context.Context) error {
	if err := s.client.Incr(ctx, s.versionKey(readcache.EpochGroup)).Err(); err != nil {
		return fmt.Errorf("redis incr epoch: %w", err)
	}
	for _, pattern := range []string{s.prefix + ":key:*", s.prefix + ":grp:*"} {
		iter := s.client.Scan(ctx, 0, pattern, 200).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("redis scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
		}
	}
	return nil
}

// groupAddScript agrega el miembro al grupo y alarga el TTL del SET hasta cubrir la nueva
// entrada; nunca lo acorta, así ningún miembro vivo queda fuera de su grupo. ARGV[2] <= 0
// vuelve el SET permanente.
const groupAddScript = `
local existed = redis.call('EXISTS', KEYS[1])
redis.call('SADD', KEYS[1], ARGV[1])
local ms = tonumber(ARGV[2])
if ms <= 0 then
	redis.call('PERSIST', KEYS[1])
	return 0
end
local cur = redis.call('PTTL', KEYS[1])
if existed == 0 or (cur >= 0 and cur < ms) then
	redis.call('PEXPIRE', KEYS[1], ms)
end
return 0
`

func (s *RedisStore) queueSet(ctx context.Context, pipe redis.Pipeliner, key string, value []byte, ttl time.Duration, groups []string) {
	pipe.Set(ctx, s.entryKey(key), value, ttl)
	for _, g := range groups {
		pipe.Eval(ctx, groupAddScript, []string{s.groupKey(g)}, key, ttl.Milliseconds())
	}
}

type versionReader interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

func (s *RedisStore) readVersions(ctx context.Context, c versionReader, names []string) (readcache.Stamp, error) {
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = s.versionKey(n)
	}
	vals, err := c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget versiones: %w", err)
	}
	stamp := make(readcache.Stamp, len(names))
	for i, n := range names {
		stamp[n] = 0
		str, ok := vals[i].(string)
		if !ok {
			continue
		}
		v, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("versión corrupta %s: %w", n, err)
		}
		stamp[n] = v
	}
	return stamp, nil
}
