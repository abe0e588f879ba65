package storage

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKV backs the cache store with Redis, for deployments that already
// run one next to the bot. Entries carry no Redis-side TTL: freshness is
// decided by the fetcher from the stored timestamp entry, so both backends
// behave identically.
type RedisKV struct {
	rdb *redis.Client
}

func NewRedisKV(addr string) (*RedisKV, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisKV{rdb: rdb}, nil
}

func (s *RedisKV) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	v, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache: redis get %s: %v", key, err)
		}
		return "", false
	}
	return v, true
}

func (s *RedisKV) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return s.rdb.Set(ctx, key, value, 0).Err()
}

func (s *RedisKV) Close() error { return s.rdb.Close() }
