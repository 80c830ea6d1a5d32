package cache

import (
	"context"
	"errors"
	"time"

	pkgredis "github.com/angelmondragon/packfinderz-metrics/pkg/redis"
)

const deleteBatchSize = 500

type redisBackend interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	DeleteKeys(ctx context.Context, keys ...string) (int64, error)
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
	UsedMemory(ctx context.Context) (int64, error)
}

// RedisStore keeps entries in Redis; patterns are listed with SCAN.
type RedisStore struct {
	client redisBackend
}

// NewRedisStore wraps a connected client.
func NewRedisStore(client *pkgredis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := s.client.GetBytes(ctx, key)
	if errors.Is(err, pkgredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl)
}

func (s *RedisStore) Has(ctx context.Context, key string) (bool, error) {
	return s.client.Exists(ctx, key)
}

// Forget deletes in batches so a large invalidation does not become one huge DEL.
func (s *RedisStore) Forget(ctx context.Context, keys ...string) (int, error) {
	removed := 0
	for start := 0; start < len(keys); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(keys))
		n, err := s.client.DeleteKeys(ctx, keys[start:end]...)
		removed += int(n)
		if err != nil {
			return removed, err
		}
	}
	return removed, nil
}

func (s *RedisStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	return s.client.ScanKeys(ctx, pattern)
}

func (s *RedisStore) MemoryUsage(ctx context.Context) (int64, error) {
	return s.client.UsedMemory(ctx)
}
