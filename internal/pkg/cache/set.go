package cache

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Set is a redis-backed, msgpack-encoded cache of T values under a common key prefix.
type Set[T any] struct {
	// m serializes slow paths of MutexGetSet
	m sync.Mutex

	client *redis.Client
	prefix string
}

func NewSet[T any](client *redis.Client, prefix string) *Set[T] {
	return &Set[T]{
		client: client,
		prefix: prefix + ":",
	}
}

func (c *Set[T]) key(key string) string {
	return c.prefix + key
}

func (c *Set[T]) Get(ctx context.Context, key string, dest *T) error {
	key = c.key(key)
	resp, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		log.Error().Err(err).Str("evt.name", "cache.get.failed").Str("key", key).Msg("failed to get value from redis")
		return err
	}
	if err := msgpack.Unmarshal(resp, dest); err != nil {
		log.Error().Err(err).Str("evt.name", "cache.decode.failed").Str("key", key).Msg("failed to unmarshal msgpack value from redis")
		return err
	}
	return nil
}

func (c *Set[T]) Set(ctx context.Context, key string, value T, expire time.Duration) error {
	key = c.key(key)
	b, err := msgpack.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "cache: msgpack marshal")
	}
	if err := c.client.Set(ctx, key, b, expire).Err(); err != nil {
		log.Error().Err(err).Str("evt.name", "cache.set.failed").Str("key", key).Msg("failed to set value to redis")
		return err
	}
	return nil
}

// MutexGetSet reads key into dest. On a miss, valueFunc is called under the set's
// mutex (after a second lookup) and its result is stored and copied into dest.
// A redis failure on the read path falls through to valueFunc so that the cache
// never becomes a hard dependency of the caller.
func (c *Set[T]) MutexGetSet(ctx context.Context, key string, dest *T, valueFunc func() (T, error), expire time.Duration) error {
	if err := c.Get(ctx, key, dest); err == nil {
		return nil
	}

	c.m.Lock()
	defer c.m.Unlock()

	if err := c.Get(ctx, key, dest); err == nil {
		return nil
	}

	value, err := valueFunc()
	if err != nil {
		return err
	}
	*dest = value

	if err := c.Set(ctx, key, value, expire); err != nil {
		log.Warn().Err(err).Str("evt.name", "cache.fill.failed").Str("key", c.key(key)).Msg("serving uncached value")
	}
	return nil
}

func (c *Set[T]) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}

// Flush removes every key under the prefix.
func (c *Set[T]) Flush() error {
	ctx := context.Background()
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 500).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 500 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		log.Error().Err(err).Str("evt.name", "cache.flush.failed").Str("prefix", c.prefix).Msg("failed to scan cache keys")
		return err
	}
	if len(keys) > 0 {
		return c.client.Del(ctx, keys...).Err()
	}
	return nil
}
