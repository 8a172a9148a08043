package cache

import (
	"context"
	"errors"
	"fmt"
	"spacetime-service/internal/ports"
	"strings"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "spacetime:cache:"

// RedisStore keeps entries as plain string values under a key prefix.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewRedisStore(rdb redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

// OpenRedis connects to addr and verifies the connection.
func OpenRedis(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("open redis %q: %w", addr, err)
	}
	return rdb, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis store: get %q: %w", key, err)
	}
	return b, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis store: set %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis store: del %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Scan(ctx context.Context, fn func(key string, size int64) error) error {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis store: scan: %w", err)
	}

	for _, k := range keys {
		size, err := s.rdb.StrLen(ctx, k).Result()
		if err != nil {
			return fmt.Errorf("redis store: strlen %q: %w", k, err)
		}
		// STRLEN reports 0 for keys deleted since the scan.
		if size == 0 {
			continue
		}
		if err := fn(strings.TrimPrefix(k, s.prefix), size); err != nil {
			return err
		}
	}
	return nil
}

func (s *RedisStore) Describe() string { return "redis" }
